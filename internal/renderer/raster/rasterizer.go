package raster

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/glance/internal/renderer/core"
	"github.com/dshills/glance/internal/renderer/document"
	"github.com/dshills/glance/internal/renderer/fold"
	"github.com/dshills/glance/internal/renderer/linemap"
)

// Errors returned by rasterizers.
var (
	// ErrSpanOutOfBounds indicates a style span reaching past the end of
	// the text. The pass is abandoned and its buffer must not be published.
	ErrSpanOutOfBounds = errors.New("style span past end of text")

	// ErrUnknownEngine indicates an unsupported rasterizer name.
	ErrUnknownEngine = errors.New("unknown rasterizer engine")
)

// Engine names accepted by New.
const (
	EngineCurrent = "current"
	EngineLegacy  = "legacy"
)

// cancelCheckInterval is how many characters are walked between context
// checks.
const cancelCheckInterval = 4096

// Rasterizer paints a full minimap of a snapshot.
type Rasterizer interface {
	// Height returns the number of pixel rows needed to draw snap.
	Height(snap *Snapshot) int

	// Paint clears buf and draws snap into it. It returns the context
	// error when cancelled and ErrSpanOutOfBounds on malformed spans;
	// in both cases buf holds partial output.
	Paint(ctx context.Context, snap *Snapshot, buf *Buffer) error
}

// New returns the rasterizer registered under name.
func New(name string) (Rasterizer, error) {
	switch name {
	case "", EngineCurrent:
		return NewCurrent(), nil
	case EngineLegacy:
		return NewLegacy(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Snapshot is an immutable copy of everything a pass reads from the host.
// It is taken on the caller's goroutine and handed to the worker, so the
// pass never touches live host models.
type Snapshot struct {
	// Text is the document content.
	Text []rune

	// Lines indexes Text. Built from Text when nil.
	Lines *document.LineIndex

	// Spans are the style spans in offset order.
	Spans []document.StyleSpan

	// Folds holds the active folds. May be nil.
	Folds *fold.Index

	// Wraps holds soft wraps by offset. Nil when soft wrapping is off.
	Wraps document.SoftWrapLookup

	// Resolver supplies highlight colors that override span colors.
	// May be nil.
	Resolver document.ColorResolver

	// DefaultForeground colors characters with no span or highlight color.
	DefaultForeground core.Color

	// PlaceholderForeground colors fold placeholders. Falls back to
	// DefaultForeground when unset.
	PlaceholderForeground core.Color

	// PixelsPerLine is the number of pixel rows per text line, 1 to 4.
	PixelsPerLine int

	// Clean selects flat density weights over per-glyph shapes.
	Clean bool

	layout *linemap.Layout
}

// LineIndex returns the snapshot's line index, building it on first use.
func (s *Snapshot) LineIndex() *document.LineIndex {
	if s.Lines == nil {
		s.Lines = document.NewLineIndex(s.Text)
	}
	return s.Lines
}

// Layout returns the visual layout of the snapshot, building it on first
// use. A snapshot belongs to one goroutine, so no locking is done.
func (s *Snapshot) Layout() *linemap.Layout {
	if s.layout == nil {
		s.layout = linemap.NewLayout(s.Text, s.LineIndex(), s.Folds, s.Wraps)
	}
	return s.layout
}

// foreground resolves the color of the character at offset. A highlight
// color wins over the span color, which wins over the default. Resolver
// failures fall back to the default for that character only.
func (s *Snapshot) foreground(offset int, span core.Color) core.Color {
	if s.Resolver != nil {
		c, err := s.Resolver.ForegroundAt(offset)
		if err != nil {
			return s.DefaultForeground
		}
		if !c.IsDefault() {
			return c
		}
	}
	return span.Or(s.DefaultForeground)
}

func (s *Snapshot) pixelsPerLine() int {
	return max(1, min(4, s.PixelsPerLine))
}

// checkSpan validates a span against the text length.
func checkSpan(span document.StyleSpan, length int) error {
	if span.Start < 0 || span.End > length {
		return fmt.Errorf("%w: [%d, %d) in text of length %d", ErrSpanOutOfBounds, span.Start, span.End, length)
	}
	return nil
}
