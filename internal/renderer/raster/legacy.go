package raster

import (
	"context"
	"sync"

	"github.com/dshills/glance/internal/renderer/linemap"
)

// Legacy rasterizes by logical lines found in a single scan of the text.
// Folded characters are skipped outright; no placeholder is drawn and soft
// wraps are ignored.
type Legacy struct {
	mu      sync.Mutex
	lines   *linemap.Precomputed
	scanned *Snapshot
}

// NewLegacy creates the line-scan rasterizer.
func NewLegacy() *Legacy {
	return &Legacy{lines: linemap.NewPrecomputed()}
}

// scan records the line endings of snap once per snapshot.
func (r *Legacy) scan(snap *Snapshot) {
	if r.scanned == snap {
		return
	}
	r.lines.Scan(snap.Text, snap.Folds)
	r.scanned = snap
}

// Height returns the rows for every unfolded line plus one spare line.
func (r *Legacy) Height(snap *Snapshot) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scan(snap)
	return r.lines.Height(snap.pixelsPerLine())
}

// LongestLine returns the widest unfolded line of the last scan, in columns.
func (r *Legacy) LongestLine() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines.LongestLine()
}

// Paint implements Rasterizer.
func (r *Legacy) Paint(ctx context.Context, snap *Snapshot, buf *Buffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf.Clear()
	r.scan(snap)

	ppl := snap.pixelsPerLine()
	text := snap.Text
	hidden := snap.Folds.Cursor()
	walked := 0

	for _, span := range snap.Spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := checkSpan(span, len(text)); err != nil {
			return err
		}

		line := r.lines.Line(span.Start)
		y := (line.Number - 1) * ppl

		// Columns between the line start and the span.
		x := 0
		for i := line.Begin; i < span.Start && x <= buf.Width(); i++ {
			if !snap.Folds.IsHidden(i) {
				x = advance(x, text[i])
			}
		}

		for i := span.Start; i < span.End; i++ {
			if hidden.IsHidden(i) {
				continue
			}
			ch := text[i]
			if ch > 32 {
				plot(buf, x, y, ch, snap.foreground(i, span.Foreground), ppl, snap.Clean)
			}
			if isTerminator(text, i) {
				x = 0
				y += ppl
			} else {
				x = advance(x, ch)
			}

			walked++
			if walked%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
