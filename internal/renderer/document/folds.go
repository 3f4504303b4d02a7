package document

import (
	"sort"
	"sync"
)

// FoldRegion is a document range the host can collapse to a placeholder.
type FoldRegion struct {
	// Start is the first hidden offset.
	Start int

	// End is the offset just past the hidden range.
	End int

	// Collapsed is true when the region is folded.
	Collapsed bool

	// Placeholder is the text shown in place of the hidden range.
	Placeholder string

	// Custom marks inline-widget folds. They do not hide line-based text
	// and are ignored by the minimap.
	Custom bool
}

// Active reports whether the region currently hides its range.
func (f FoldRegion) Active() bool {
	return f.Collapsed && !f.Custom && f.Start >= 0 && f.End >= 0
}

// FoldSource enumerates the host's fold regions.
type FoldSource interface {
	// FoldRegions returns all known regions, collapsed or not.
	FoldRegions() []FoldRegion
}

// FoldModel is an in-memory FoldSource.
type FoldModel struct {
	mu        sync.RWMutex
	regions   []FoldRegion
	listeners []func()
}

// NewFoldModel creates an empty fold model.
func NewFoldModel() *FoldModel {
	return &FoldModel{}
}

// FoldRegions returns a copy of the regions ordered by start offset.
func (m *FoldModel) FoldRegions() []FoldRegion {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FoldRegion, len(m.regions))
	copy(out, m.regions)
	return out
}

// Add registers a region and returns its index.
func (m *FoldModel) Add(region FoldRegion) int {
	m.mu.Lock()
	m.regions = append(m.regions, region)
	sort.SliceStable(m.regions, func(i, j int) bool {
		return m.regions[i].Start < m.regions[j].Start
	})
	idx := 0
	for i, r := range m.regions {
		if r == region {
			idx = i
			break
		}
	}
	listeners := m.listeners
	m.mu.Unlock()

	notify(listeners)
	return idx
}

// SetCollapsed collapses or expands every region starting at start.
// It returns false when no region starts there.
func (m *FoldModel) SetCollapsed(start int, collapsed bool) bool {
	m.mu.Lock()
	found := false
	for i := range m.regions {
		if m.regions[i].Start == start {
			m.regions[i].Collapsed = collapsed
			found = true
		}
	}
	listeners := m.listeners
	m.mu.Unlock()

	if found {
		notify(listeners)
	}
	return found
}

// Clear removes all regions.
func (m *FoldModel) Clear() {
	m.mu.Lock()
	m.regions = nil
	listeners := m.listeners
	m.mu.Unlock()

	notify(listeners)
}

// OnChange registers a listener called after any fold state change.
func (m *FoldModel) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}
