// Package overlay draws the per-frame layers over the minimap: VCS change
// bars, the selection, caret rows, highlight markup and diagnostic stripes.
// Nothing drawn here is cached; every frame repaints from the host state.
package overlay

import (
	"github.com/dshills/glance/internal/renderer/core"
	"github.com/dshills/glance/internal/renderer/document"
	"github.com/dshills/glance/internal/renderer/linemap"
	"github.com/dshills/glance/internal/renderer/scroll"
)

// Layer identifies one overlay category.
type Layer uint8

// Layers in paint order.
const (
	LayerVCS Layer = iota
	LayerSelection
	LayerCarets
	LayerHighlights
	LayerDiagnostics
)

// String returns the string representation of the layer.
func (l Layer) String() string {
	switch l {
	case LayerVCS:
		return "vcs"
	case LayerSelection:
		return "selection"
	case LayerCarets:
		return "carets"
	case LayerHighlights:
		return "highlights"
	case LayerDiagnostics:
		return "diagnostics"
	default:
		return "unknown"
	}
}

// Composite opacities.
const (
	alphaOpaque    = 1.0
	alphaVCSFaint  = 0.4
	alphaMarkup    = 0.8
	defaultMinGap  = 15
	defaultPxWidth = 110
)

// Theme holds the overlay colors.
type Theme struct {
	// Selection fills the selected range.
	Selection core.Color

	// Caret fills caret rows.
	Caret core.Color

	// Changes colors VCS bars by change type.
	Changes map[document.ChangeType]core.Color
}

// DefaultTheme returns colors close to a dark editor scheme.
func DefaultTheme() Theme {
	return Theme{
		Selection: core.ColorFromRGB(0x26, 0x4F, 0x78),
		Caret:     core.ColorFromRGB(0x26, 0x4F, 0x78),
		Changes: map[document.ChangeType]core.Color{
			document.ChangeModified: core.ColorFromRGB(0x37, 0x4E, 0x8C),
			document.ChangeInserted: core.ColorFromRGB(0x38, 0x79, 0x41),
			document.ChangeDeleted:  core.ColorFromRGB(0x65, 0x65, 0x65),
		},
	}
}

// CaretRow is a caret row drawn by PaintCarets, in panel pixels.
type CaretRow struct {
	Y      int
	Column int
}

// Frame is what a paint call needs to place rows: the current scroll
// state and the visual line mapping of the document.
type Frame struct {
	Scroll scroll.State
	Lines  *linemap.Visual
}

// onRow reports whether any caret sits on panel row y.
func onRow(carets []CaretRow, y int) bool {
	for _, c := range carets {
		if c.Y == y {
			return true
		}
	}
	return false
}

// onRows reports whether any caret sits on a panel row in [lo, hi].
func onRows(carets []CaretRow, lo, hi int) bool {
	for _, c := range carets {
		if c.Y >= lo && c.Y <= hi {
			return true
		}
	}
	return false
}
