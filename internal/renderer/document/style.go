package document

import (
	"github.com/dshills/glance/internal/renderer/core"
)

// StyleSpan is a run of characters sharing a syntax foreground color.
type StyleSpan struct {
	Start      int
	End        int
	Foreground core.Color
}

// StyleSource produces the document's style spans in offset order.
// Spans may leave gaps; uncovered characters are not rasterized.
type StyleSource interface {
	StyleSpans(text []rune) ([]StyleSpan, error)
}

// ColorResolver returns a highlight color overriding the syntax color at an
// offset. It returns core.ColorDefault when nothing overrides. Implementations
// backed by live data may return ErrConcurrentModification.
type ColorResolver interface {
	ForegroundAt(offset int) (core.Color, error)
}

// PlainStyle is a StyleSource covering the whole text with one span in the
// default color.
type PlainStyle struct{}

// StyleSpans returns a single span over text.
func (PlainStyle) StyleSpans(text []rune) ([]StyleSpan, error) {
	if len(text) == 0 {
		return nil, nil
	}
	return []StyleSpan{{Start: 0, End: len(text)}}, nil
}
