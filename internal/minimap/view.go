package minimap

import (
	"github.com/google/uuid"

	"github.com/dshills/glance/internal/renderer/document"
	"github.com/dshills/glance/internal/renderer/highlight"
	"github.com/dshills/glance/internal/renderer/linemap"
	"github.com/dshills/glance/internal/renderer/markup"
)

// ViewID identifies an open view.
type ViewID uuid.UUID

// NewViewID returns a random ViewID.
func NewViewID() ViewID {
	return ViewID(uuid.New())
}

// ParseViewID parses the string form of a ViewID.
func ParseViewID(s string) (ViewID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ViewID{}, err
	}
	return ViewID(id), nil
}

// String returns the canonical UUID form.
func (id ViewID) String() string {
	return uuid.UUID(id).String()
}

// MarkupSource supplies the view's markup.
type MarkupSource interface {
	// Snapshot returns an immutable view of the current markup.
	Snapshot() *markup.Set

	// ClearCache drops cached color lookups.
	ClearCache()
}

// View is the set of host models an Engine draws from. Only Document is
// required.
type View struct {
	Document document.Document

	// Style supplies syntax colors. Nil draws everything in the theme's
	// foreground.
	Style document.StyleSource

	// Folds supplies fold regions. May be nil.
	Folds document.FoldSource

	// SoftWraps supplies soft wraps. May be nil.
	SoftWraps document.SoftWrapSource

	// Markup supplies highlights and diagnostics. May be nil.
	Markup MarkupSource

	// Visual is the host's visual line model. When nil a layout computed
	// from the document, folds and soft wraps is used.
	Visual linemap.VisualModel

	// Theme supplies base colors. Nil uses highlight.DefaultTheme.
	Theme *highlight.Theme
}

func (v View) markupSet() *markup.Set {
	if v.Markup == nil {
		return emptySet
	}
	if set := v.Markup.Snapshot(); set != nil {
		return set
	}
	return emptySet
}

var emptySet = markup.NewSet(nil)
