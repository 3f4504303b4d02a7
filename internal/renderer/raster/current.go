package raster

import (
	"context"
)

// Current rasterizes along the editor's visual lines: collapsed folds are
// drawn as their placeholder text and soft wraps move the cursor the same
// way they move it on screen.
type Current struct{}

// NewCurrent creates the visual-line rasterizer.
func NewCurrent() *Current {
	return &Current{}
}

// Height returns the rows for every visual line plus one spare line.
func (r *Current) Height(snap *Snapshot) int {
	return (snap.Layout().VisualLineCount() + 1) * snap.pixelsPerLine()
}

// Paint implements Rasterizer.
func (r *Current) Paint(ctx context.Context, snap *Snapshot, buf *Buffer) error {
	buf.Clear()

	ppl := snap.pixelsPerLine()
	text := snap.Text
	layout := snap.Layout()
	placeholder := snap.PlaceholderForeground.Or(snap.DefaultForeground)

	var x, y int
	next := -1 // offset the cursor currently sits at
	walked := 0

	for _, span := range snap.Spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := checkSpan(span, len(text)); err != nil {
			return err
		}

		off := max(span.Start, next)
		if off >= span.End {
			continue
		}

		// Layout positions already account for a wrap at off.
		wrapped := false
		if off != next {
			pos := layout.OffsetToVisual(off)
			x, y = pos.Column, pos.Line*ppl
			wrapped = true
		}

		for off < span.End {
			if f, ok := snap.Folds.CollapsedAt(off); ok {
				for _, ch := range f.Placeholder {
					if ch == '\n' {
						ch = ' '
					}
					plot(buf, x, y, ch, placeholder, ppl, snap.Clean)
					x = advance(x, ch)
				}
				off = f.End
				wrapped = false
				continue
			}

			if !wrapped {
				if w, ok := snap.Wraps.At(off); ok {
					for _, ch := range w.Chars {
						if ch == '\n' {
							x = 0
							y += ppl
							continue
						}
						x = advance(x, ch)
					}
				}
			}
			wrapped = false

			ch := text[off]
			if ch > 32 {
				plot(buf, x, y, ch, snap.foreground(off, span.Foreground), ppl, snap.Clean)
			}
			if isTerminator(text, off) {
				x = 0
				y += ppl
			} else {
				x = advance(x, ch)
			}
			off++

			walked++
			if walked%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
		}
		next = off
	}
	return nil
}

// isTerminator reports whether text[i] ends a line: '\n', or '\r' not
// followed by '\n'.
func isTerminator(text []rune, i int) bool {
	switch text[i] {
	case '\n':
		return true
	case '\r':
		return i+1 >= len(text) || text[i+1] != '\n'
	}
	return false
}
