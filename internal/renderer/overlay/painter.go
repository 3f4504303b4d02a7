package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/dshills/glance/internal/renderer/core"
	"github.com/dshills/glance/internal/renderer/document"
	"github.com/dshills/glance/internal/renderer/markup"
)

// Painter draws overlay layers onto a panel-sized image.
type Painter struct {
	// PixelsPerLine is the minimap rows per visual line.
	PixelsPerLine int

	// Width is the panel width in pixels.
	Width int

	// MinGap is the minimum bar width for severe diagnostics, and the
	// margin kept free at the right edge for markup starts.
	MinGap int

	// MinSeverity separates severe diagnostics, which get MinGap-wide
	// bars, from the rest.
	MinSeverity core.Severity

	// HideOriginalScrollBar draws VCS bars opaque, since the editor's own
	// scrollbar markers are hidden.
	HideOriginalScrollBar bool

	Theme Theme
}

// NewPainter creates a painter with the default theme.
func NewPainter(pixelsPerLine, width int) *Painter {
	if width <= 0 {
		width = defaultPxWidth
	}
	return &Painter{
		PixelsPerLine: max(1, min(4, pixelsPerLine)),
		Width:         width,
		MinGap:        defaultMinGap,
		MinSeverity:   core.SeverityWarning,
		Theme:         DefaultTheme(),
	}
}

// Paint draws every layer in order and returns the caret rows.
func (p *Painter) Paint(dst draw.Image, fr Frame, state document.EditorState, set *markup.Set) []CaretRow {
	p.PaintVCS(dst, fr, state)
	if state.Selection != nil {
		p.PaintSelection(dst, fr, *state.Selection)
	}
	carets := p.PaintCarets(dst, fr, state.Carets)
	if set != nil {
		p.PaintOtherHighlights(dst, fr, set, carets)
		p.PaintErrorStripes(dst, fr, set, carets)
	}
	return carets
}

// PaintVCS draws change bars for ranges in the active changelist. Ranges
// without a changelist are always drawn.
func (p *Painter) PaintVCS(dst draw.Image, fr Frame, state document.EditorState) {
	alpha := alphaVCSFaint
	if p.HideOriginalScrollBar {
		alpha = alphaOpaque
	}
	ppl := p.PixelsPerLine

	for _, ch := range state.Changes {
		if ch.Changelist != "" && ch.Changelist != state.ActiveChangelist {
			continue
		}
		c := state.ChangeColors[ch.Type]
		if c.IsDefault() {
			c = p.Theme.Changes[ch.Type]
		}

		v1, v2 := fr.Lines.RangeLines(ch.Line1, ch.Line2)
		start := fr.Scroll.ToPanel(v1 * ppl)
		end := fr.Scroll.ToPanel(v2 * ppl)
		if start > 0 || end-start-ppl > 0 {
			fill(dst, image.Rect(0, start, p.Width, start+ppl), c, alpha)
			fill(dst, image.Rect(0, start+ppl, p.Width, end), c, alpha)
		}
	}
}

// PaintSelection draws the selected range.
func (p *Painter) PaintSelection(dst draw.Image, fr Frame, sel document.Selection) {
	start := fr.Lines.Offset(sel.Start)
	end := fr.Lines.Offset(sel.End)
	ppl := p.PixelsPerLine

	sX := start.Column
	sY := fr.Scroll.ToPanel(start.Line * ppl)
	eX := end.Column + 1
	eY := fr.Scroll.ToPanel(end.Line * ppl)
	if sY <= 0 && eY <= 0 {
		return
	}

	c := p.Theme.Selection
	if start.Line == end.Line {
		fill(dst, image.Rect(sX, sY, eX, sY+ppl), c, alphaOpaque)
		return
	}
	fill(dst, image.Rect(sX, sY, p.Width, sY+ppl), c, alphaOpaque)
	fill(dst, image.Rect(0, sY+ppl, p.Width, eY), c, alphaOpaque)
	fill(dst, image.Rect(0, eY, eX, eY+ppl), c, alphaOpaque)
}

// PaintCarets fills the row of every caret below the top edge and returns
// the rows drawn.
func (p *Painter) PaintCarets(dst draw.Image, fr Frame, carets []document.Caret) []CaretRow {
	var rows []CaretRow
	for _, caret := range carets {
		pos := fr.Lines.Offset(caret.Offset)
		y := fr.Scroll.ToPanel(pos.Line * p.PixelsPerLine)
		if y <= 0 {
			continue
		}
		fill(dst, image.Rect(0, y, p.Width, y+p.PixelsPerLine), p.Theme.Caret, alphaOpaque)
		rows = append(rows, CaretRow{Y: y, Column: pos.Column})
	}
	return rows
}

// PaintOtherHighlights draws non-diagnostic markup. Of several markups on
// the same range only the highest layer is drawn.
func (p *Painter) PaintOtherHighlights(dst draw.Image, fr Frame, set *markup.Set, carets []CaretRow) {
	for _, m := range markup.TopByRange(set.Highlights()) {
		p.drawMarkup(dst, fr, m, false, carets)
	}
}

// PaintErrorStripes draws diagnostics. Diagnostics more severe than
// MinSeverity are widened to at least MinGap pixels.
func (p *Painter) PaintErrorStripes(dst draw.Image, fr Frame, set *markup.Set, carets []CaretRow) {
	for _, m := range set.Diagnostics(core.SeverityNone) {
		p.drawMarkup(dst, fr, m, m.Severity > p.MinSeverity, carets)
	}
}

// drawMarkup draws one markup bar. A markup hidden by a fold becomes a
// half-width bar; one that touches a caret row is drawn opaque and
// brightened.
func (p *Painter) drawMarkup(dst draw.Image, fr Frame, m markup.Markup, widen bool, carets []CaretRow) {
	ppl := p.PixelsPerLine
	gap := p.MinGap
	start := fr.Lines.Offset(m.Start)
	end := fr.Lines.Offset(m.End)

	sX := min(start.Column, p.Width-gap)
	sY := fr.Scroll.ToPanel(start.Line * ppl)
	eX := p.Width
	if start.Column < p.Width-gap {
		eX = end.Column + 1
	}
	eY := fr.Scroll.ToPanel(end.Line * ppl)
	if sY <= 0 && eY <= 0 {
		return
	}

	c := m.StripeColor
	alpha := alphaMarkup
	brighten := func() {
		if alpha < alphaOpaque {
			alpha = alphaOpaque
			c = c.Brighter()
		}
	}
	if onRow(carets, sY) {
		brighten()
	}

	collapsed := fr.Lines.IsCollapsed(m.Start)
	switch {
	case sY == eY && !collapsed:
		if widen && eX-sX < gap {
			eX += gap - (eX - sX)
			if eX > p.Width {
				sX -= eX - p.Width
			}
		}
		fill(dst, image.Rect(sX, sY, eX, sY+ppl), c, alpha)

	case collapsed:
		fill(dst, image.Rect(0, sY, p.Width/2, sY+ppl), c, alpha)

	default:
		if onRow(carets, eY) || onRows(carets, sY+ppl, eY) {
			brighten()
		}
		fill(dst, image.Rect(sX, sY, p.Width, sY+ppl), c, alpha)
		fill(dst, image.Rect(0, sY+ppl, p.Width, eY), c, alpha)
		fill(dst, image.Rect(0, eY, eX, eY+ppl), c, alpha)
	}
}

// fill composites c over r at the given opacity. Empty or off-image
// rectangles draw nothing.
func fill(dst draw.Image, r image.Rectangle, c core.Color, alpha float64) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	mask := &image.Uniform{C: color.Alpha{A: uint8(math.Round(math.Max(0, math.Min(1, alpha)) * 255))}}
	draw.DrawMask(dst, r, &image.Uniform{C: c.NRGBA()}, image.Point{}, mask, image.Point{}, draw.Over)
}
