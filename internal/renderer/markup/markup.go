// Package markup holds highlight and diagnostic ranges drawn over the
// minimap, and resolves which of several overlapping ranges supplies the
// color at an offset.
package markup

import (
	"sort"
	"sync"

	"github.com/dshills/glance/internal/renderer/core"
)

// ID identifies a markup within its Model. IDs increase with insertion
// order and are never reused.
type ID uint64

// Markup is a highlighted document range.
type Markup struct {
	// Start and End delimit the range [Start, End).
	Start int
	End   int

	// Foreground overrides the syntax color of the covered text.
	// ColorDefault leaves it alone.
	Foreground core.Color

	// StripeColor is the color of the bar painted over the minimap.
	// ColorDefault means the markup has no bar.
	StripeColor core.Color

	// Layer orders overlapping markups; higher layers win.
	Layer int

	// Severity is set for diagnostics. SeverityNone marks an ordinary
	// highlight such as a usage or search match.
	Severity core.Severity

	id ID
}

// ID returns the markup's insertion identifier. Zero for markups that
// were never added to a Model.
func (m Markup) ID() ID {
	return m.id
}

// IsDiagnostic reports whether the markup carries a severity.
func (m Markup) IsDiagnostic() bool {
	return m.Severity > core.SeverityNone
}

// Range returns the markup's offsets.
func (m Markup) Range() core.Range {
	return core.Range{Start: m.Start, End: m.End}
}

// wins reports whether m takes precedence over other: the higher layer
// wins, and between equal layers the earlier insertion does.
func (m Markup) wins(other Markup) bool {
	if m.Layer != other.Layer {
		return m.Layer > other.Layer
	}
	return m.id < other.id
}

// Resolve returns the markup that takes precedence among ms.
func Resolve(ms []Markup) (Markup, bool) {
	if len(ms) == 0 {
		return Markup{}, false
	}
	best := ms[0]
	for _, m := range ms[1:] {
		if m.wins(best) {
			best = m
		}
	}
	return best, true
}

// TopByRange groups markups sharing the same range and keeps only the
// winner of each group, ordered by range.
func TopByRange(ms []Markup) []Markup {
	groups := make(map[core.Range]Markup, len(ms))
	for _, m := range ms {
		if cur, ok := groups[m.Range()]; !ok || m.wins(cur) {
			groups[m.Range()] = m
		}
	}
	out := make([]Markup, 0, len(groups))
	for _, m := range groups {
		out = append(out, m)
	}
	sortMarkups(out)
	return out
}

func sortMarkups(ms []Markup) {
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.id < b.id
	})
}

// Model is the host's mutable markup store.
type Model struct {
	mu        sync.RWMutex
	items     []Markup
	nextID    ID
	set       *Set
	listeners []func()
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{}
}

// Add stores m and returns its ID.
func (mo *Model) Add(m Markup) ID {
	mo.mu.Lock()
	mo.nextID++
	m.id = mo.nextID
	mo.items = append(mo.items, m)
	mo.set = nil
	listeners := mo.listeners
	mo.mu.Unlock()

	notify(listeners)
	return m.id
}

// Remove deletes the markup with id. It returns false if there is none.
func (mo *Model) Remove(id ID) bool {
	mo.mu.Lock()
	idx := -1
	for i, m := range mo.items {
		if m.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		mo.mu.Unlock()
		return false
	}
	mo.items = append(mo.items[:idx:idx], mo.items[idx+1:]...)
	mo.set = nil
	listeners := mo.listeners
	mo.mu.Unlock()

	notify(listeners)
	return true
}

// Clear removes every markup.
func (mo *Model) Clear() {
	mo.mu.Lock()
	mo.items = nil
	mo.set = nil
	listeners := mo.listeners
	mo.mu.Unlock()

	notify(listeners)
}

// Len returns the number of markups.
func (mo *Model) Len() int {
	mo.mu.RLock()
	defer mo.mu.RUnlock()
	return len(mo.items)
}

// Snapshot returns an immutable view of the current markups. The same Set
// is returned until the model changes.
func (mo *Model) Snapshot() *Set {
	mo.mu.RLock()
	set := mo.set
	mo.mu.RUnlock()
	if set != nil {
		return set
	}

	mo.mu.Lock()
	defer mo.mu.Unlock()
	if mo.set == nil {
		mo.set = NewSet(mo.items)
	}
	return mo.set
}

// ForegroundAt resolves the highlight color at offset against the current
// snapshot.
func (mo *Model) ForegroundAt(offset int) (core.Color, error) {
	return mo.Snapshot().ForegroundAt(offset)
}

// ClearCache drops the color lookup cache of the current snapshot.
func (mo *Model) ClearCache() {
	mo.mu.RLock()
	set := mo.set
	mo.mu.RUnlock()
	if set != nil {
		set.ClearCache()
	}
}

// OnChange registers a listener called after every change.
func (mo *Model) OnChange(fn func()) {
	mo.mu.Lock()
	defer mo.mu.Unlock()
	mo.listeners = append(mo.listeners, fn)
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
