package markup

import (
	"sort"
	"sync"

	"github.com/dshills/glance/internal/renderer/core"
)

// Set is an immutable collection of markups ordered by range.
// Its color lookup table is built on first use and may be dropped with
// ClearCache; both are safe for concurrent use.
type Set struct {
	items []Markup

	// maxEnd[i] is the largest End among items[:i+1].
	maxEnd []int

	mu       sync.Mutex
	segments []segment
	built    bool
}

// segment is a run of offsets [start, end) resolved to a single color.
type segment struct {
	start, end int
	color      core.Color
}

// NewSet copies and orders items.
func NewSet(items []Markup) *Set {
	s := &Set{items: make([]Markup, len(items))}
	copy(s.items, items)
	sortMarkups(s.items)

	s.maxEnd = make([]int, len(s.items))
	for i, m := range s.items {
		s.maxEnd[i] = m.End
		if i > 0 && s.maxEnd[i-1] > m.End {
			s.maxEnd[i] = s.maxEnd[i-1]
		}
	}
	return s
}

// Len returns the number of markups.
func (s *Set) Len() int {
	return len(s.items)
}

// All returns the markups ordered by range. The slice must not be modified.
func (s *Set) All() []Markup {
	return s.items
}

// Overlapping returns the markups sharing at least one offset with
// [start, end). Empty markups count when they sit inside the range.
func (s *Set) Overlapping(start, end int) []Markup {
	hi := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].Start >= end
	})
	var out []Markup
	for i := hi - 1; i >= 0 && s.maxEnd[i] >= start; i-- {
		m := s.items[i]
		if m.End > start || (m.Start == m.End && m.Start >= start) {
			out = append(out, m)
		}
	}
	// Restore range order after the backward scan.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Diagnostics returns the markups with a severity of at least minSeverity that
// have a stripe color.
func (s *Set) Diagnostics(minSeverity core.Severity) []Markup {
	var out []Markup
	for _, m := range s.items {
		if m.IsDiagnostic() && m.Severity >= minSeverity && !m.StripeColor.IsDefault() {
			out = append(out, m)
		}
	}
	return out
}

// Highlights returns the non-diagnostic markups that have a stripe color.
func (s *Set) Highlights() []Markup {
	var out []Markup
	for _, m := range s.items {
		if !m.IsDiagnostic() && !m.StripeColor.IsDefault() {
			out = append(out, m)
		}
	}
	return out
}

// ForegroundAt returns the foreground of the winning markup covering
// offset, or ColorDefault when none does. It never fails.
func (s *Set) ForegroundAt(offset int) (core.Color, error) {
	s.mu.Lock()
	if !s.built {
		s.segments = s.buildSegments()
		s.built = true
	}
	segments := s.segments
	s.mu.Unlock()

	i := sort.Search(len(segments), func(i int) bool {
		return segments[i].end > offset
	})
	if i < len(segments) && segments[i].start <= offset {
		return segments[i].color, nil
	}
	return core.ColorDefault, nil
}

// ClearCache drops the color lookup table.
func (s *Set) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = nil
	s.built = false
}

// buildSegments splits the colored markups at every boundary and resolves
// each piece once.
func (s *Set) buildSegments() []segment {
	var colored []Markup
	var bounds []int
	for _, m := range s.items {
		if m.Foreground.IsDefault() || m.End <= m.Start {
			continue
		}
		colored = append(colored, m)
		bounds = append(bounds, m.Start, m.End)
	}
	if len(colored) == 0 {
		return nil
	}
	sort.Ints(bounds)

	var out []segment
	active := make([]Markup, 0, 8)
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		if lo == hi {
			continue
		}
		active = active[:0]
		for _, m := range colored {
			if m.Start <= lo && m.End >= hi {
				active = append(active, m)
			}
		}
		best, ok := Resolve(active)
		if !ok {
			continue
		}
		if n := len(out); n > 0 && out[n-1].end == lo && out[n-1].color == best.Foreground {
			out[n-1].end = hi
			continue
		}
		out = append(out, segment{start: lo, end: hi, color: best.Foreground})
	}
	return out
}
