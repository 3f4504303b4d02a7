// Package fold builds the per-pass lookup of character offsets hidden by
// collapsed fold regions.
//
// An Index is built once at the start of a rasterization pass and never
// mutated afterwards, so it can be handed to a pass running on another
// goroutine.
package fold

import (
	"sort"

	"github.com/dshills/glance/internal/renderer/document"
)

// interval is a merged hidden range [start, end).
type interval struct {
	start, end int
}

// Index answers "is this offset hidden" for a fixed set of folds.
type Index struct {
	// hidden holds the union of active fold ranges, sorted and disjoint.
	hidden []interval

	// regions holds the active folds sorted by start, then by widest first.
	regions []document.FoldRegion
}

// NewIndex builds an index from all host fold regions. Only active regions
// (collapsed, non-negative bounds, not custom) contribute. Overlapping
// regions are tolerated.
func NewIndex(all []document.FoldRegion) *Index {
	idx := &Index{}
	for _, r := range all {
		if !r.Active() || r.End <= r.Start {
			continue
		}
		idx.regions = append(idx.regions, r)
	}
	sort.SliceStable(idx.regions, func(i, j int) bool {
		a, b := idx.regions[i], idx.regions[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End > b.End
	})

	for _, r := range idx.regions {
		n := len(idx.hidden)
		if n > 0 && r.Start <= idx.hidden[n-1].end {
			if r.End > idx.hidden[n-1].end {
				idx.hidden[n-1].end = r.End
			}
			continue
		}
		idx.hidden = append(idx.hidden, interval{start: r.Start, end: r.End})
	}
	return idx
}

// Empty returns true when nothing is hidden.
func (idx *Index) Empty() bool {
	return idx == nil || len(idx.hidden) == 0
}

// IsHidden reports whether offset lies inside an active fold.
func (idx *Index) IsHidden(offset int) bool {
	if idx.Empty() {
		return false
	}
	i := idx.search(offset)
	return i < len(idx.hidden) && idx.hidden[i].start <= offset
}

// search returns the first interval whose end is past offset.
func (idx *Index) search(offset int) int {
	return sort.Search(len(idx.hidden), func(i int) bool {
		return idx.hidden[i].end > offset
	})
}

// CollapsedAt returns the outermost active fold containing offset.
func (idx *Index) CollapsedAt(offset int) (document.FoldRegion, bool) {
	if !idx.IsHidden(offset) {
		return document.FoldRegion{}, false
	}
	i := sort.Search(len(idx.regions), func(i int) bool {
		return idx.regions[i].Start > offset
	})
	var best document.FoldRegion
	found := false
	for j := i - 1; j >= 0; j-- {
		if r := idx.regions[j]; r.End > offset {
			best, found = r, true
		}
	}
	return best, found
}

// Regions returns the active folds in start order.
func (idx *Index) Regions() []document.FoldRegion {
	if idx == nil {
		return nil
	}
	return idx.regions
}

// Cursor answers IsHidden for non-decreasing offsets in amortised O(1).
type Cursor struct {
	idx *Index
	pos int
}

// Cursor returns a forward-only cursor over the index.
func (idx *Index) Cursor() *Cursor {
	return &Cursor{idx: idx}
}

// IsHidden reports whether offset is hidden. Offsets passed to a cursor
// must not decrease; a smaller offset restarts the scan with a binary search.
func (c *Cursor) IsHidden(offset int) bool {
	if c.idx.Empty() {
		return false
	}
	hidden := c.idx.hidden
	if c.pos > 0 && c.pos <= len(hidden) && hidden[c.pos-1].end > offset {
		c.pos = c.idx.search(offset)
	}
	for c.pos < len(hidden) && hidden[c.pos].end <= offset {
		c.pos++
	}
	return c.pos < len(hidden) && hidden[c.pos].start <= offset
}
