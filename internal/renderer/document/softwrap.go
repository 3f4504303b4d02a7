package document

import (
	"sort"
	"sync"
)

// SoftWrap is a visual-only break inserted before the character at Offset.
// Chars is what the host draws there, typically "\n" plus indentation.
type SoftWrap struct {
	Offset int
	Chars  string
}

// SoftWrapSource exposes the host's soft wraps.
type SoftWrapSource interface {
	// SoftWrapEnabled reports whether soft wrapping is on.
	SoftWrapEnabled() bool

	// SoftWraps returns all wraps ordered by offset.
	SoftWraps() []SoftWrap
}

// SoftWrapModel is an in-memory SoftWrapSource.
type SoftWrapModel struct {
	mu      sync.RWMutex
	enabled bool
	wraps   []SoftWrap
}

// NewSoftWrapModel creates a disabled soft wrap model.
func NewSoftWrapModel() *SoftWrapModel {
	return &SoftWrapModel{}
}

// SoftWrapEnabled reports whether soft wrapping is on.
func (m *SoftWrapModel) SoftWrapEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// SoftWraps returns a copy of the wraps.
func (m *SoftWrapModel) SoftWraps() []SoftWrap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SoftWrap, len(m.wraps))
	copy(out, m.wraps)
	return out
}

// Set enables soft wrapping with the given wraps.
func (m *SoftWrapModel) Set(wraps []SoftWrap) {
	sorted := make([]SoftWrap, len(wraps))
	copy(sorted, wraps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
	m.wraps = sorted
}

// Disable turns soft wrapping off and drops all wraps.
func (m *SoftWrapModel) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
	m.wraps = nil
}

// WrapAtColumn computes wraps for text so no visual line is longer than
// limit columns. Tabs count as 4 columns. A limit below 1 yields no wraps.
func WrapAtColumn(text []rune, limit int) []SoftWrap {
	if limit < 1 {
		return nil
	}
	var wraps []SoftWrap
	col := 0
	for i, r := range text {
		switch r {
		case '\n', '\r':
			col = 0
			continue
		}
		w := 1
		if r == '\t' {
			w = 4
		}
		if col > 0 && col+w > limit {
			wraps = append(wraps, SoftWrap{Offset: i, Chars: "\n"})
			col = 0
		}
		col += w
	}
	return wraps
}

// SoftWrapLookup is an immutable offset index over a set of wraps.
type SoftWrapLookup map[int]SoftWrap

// NewSoftWrapLookup indexes wraps by offset. It returns nil when src is nil
// or soft wrapping is disabled.
func NewSoftWrapLookup(src SoftWrapSource) SoftWrapLookup {
	if src == nil || !src.SoftWrapEnabled() {
		return nil
	}
	wraps := src.SoftWraps()
	lookup := make(SoftWrapLookup, len(wraps))
	for _, w := range wraps {
		lookup[w.Offset] = w
	}
	return lookup
}

// At returns the wrap starting at offset.
func (l SoftWrapLookup) At(offset int) (SoftWrap, bool) {
	w, ok := l[offset]
	return w, ok
}
