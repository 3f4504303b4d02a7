package linemap

import (
	"sort"
	"strings"

	"github.com/dshills/glance/internal/renderer/document"
	"github.com/dshills/glance/internal/renderer/fold"
)

// Layout is an in-memory VisualModel computed from a text snapshot, its
// active folds and soft wraps. It is immutable once built.
type Layout struct {
	text  []rune
	lines *document.LineIndex
	folds *fold.Index
	wraps document.SoftWrapLookup

	// lineVisual holds the visual line each logical line starts on.
	lineVisual []int
}

// NewLayout builds the visual layout. folds and wraps may be nil.
func NewLayout(text []rune, lines *document.LineIndex, folds *fold.Index, wraps document.SoftWrapLookup) *Layout {
	if lines == nil {
		lines = document.NewLineIndex(text)
	}
	l := &Layout{
		text:       text,
		lines:      lines,
		folds:      folds,
		wraps:      wraps,
		lineVisual: make([]int, lines.LineCount()),
	}

	hidden := folds.Cursor()
	visual := 0
	for off, ch := range text {
		isHidden := hidden.IsHidden(off)
		if !isHidden {
			if w, ok := wraps.At(off); ok {
				visual += strings.Count(w.Chars, "\n")
			}
		}
		if ch == '\n' || (ch == '\r' && (off+1 >= len(text) || text[off+1] != '\n')) {
			if !isHidden {
				visual++
			}
			next := lines.LineNumber(off + 1)
			if next < len(l.lineVisual) {
				l.lineVisual[next] = visual
			}
		}
	}
	return l
}

// VisualLineCount returns the number of visual lines.
func (l *Layout) VisualLineCount() int {
	if len(l.lineVisual) == 0 {
		return 1
	}
	last := len(l.lineVisual) - 1
	end := len(l.text)
	pos := l.OffsetToVisual(end)
	return max(l.lineVisual[last], pos.Line) + 1
}

// LineNumber returns the logical line containing offset.
func (l *Layout) LineNumber(offset int) int {
	return l.lines.LineNumber(offset)
}

// LogicalToVisualLine maps a logical line to its first visual line.
func (l *Layout) LogicalToVisualLine(line int) int {
	if line <= 0 || len(l.lineVisual) == 0 {
		return 0
	}
	if line >= len(l.lineVisual) {
		line = len(l.lineVisual) - 1
	}
	return l.lineVisual[line]
}

// VisualToLogicalLine maps a visual line to the logical line at its start.
func (l *Layout) VisualToLogicalLine(visual int) int {
	i := sort.Search(len(l.lineVisual), func(i int) bool {
		return l.lineVisual[i] > visual
	})
	line := max(i-1, 0)
	for line > 0 && l.lineVisual[line-1] == l.lineVisual[line] {
		line--
	}
	return line
}

// OffsetToVisual maps an offset to its visual position. Hidden offsets map
// to the start of their fold. Tabs advance to the next 4-column stop and a
// fold placeholder occupies its own length.
func (l *Layout) OffsetToVisual(offset int) VisualPosition {
	offset = max(0, min(offset, len(l.text)))
	if f, ok := l.folds.CollapsedAt(offset); ok {
		offset = f.Start
	}

	// Find where the visual line holding offset really begins: a line whose
	// start is hidden continues the line the fold started on.
	start := l.lines.LineStart(l.lines.LineNumber(offset))
	for start > 0 && l.folds.IsHidden(start-1) {
		f, _ := l.folds.CollapsedAt(start - 1)
		start = l.lines.LineStart(l.lines.LineNumber(f.Start))
	}

	pos := VisualPosition{Line: l.LogicalToVisualLine(l.lines.LineNumber(start))}
	for off := start; off < offset; {
		if f, ok := l.folds.CollapsedAt(off); ok {
			for _, ch := range f.Placeholder {
				pos.Column = advance(pos.Column, ch)
			}
			off = f.End
			continue
		}
		pos = l.applyWrap(pos, off)
		pos.Column = advance(pos.Column, l.text[off])
		off++
	}
	if offset < len(l.text) {
		pos = l.applyWrap(pos, offset)
	}
	return pos
}

// applyWrap moves pos past a soft wrap starting at offset, if any.
func (l *Layout) applyWrap(pos VisualPosition, offset int) VisualPosition {
	w, ok := l.wraps.At(offset)
	if !ok {
		return pos
	}
	for _, ch := range w.Chars {
		if ch == '\n' {
			pos.Line++
			pos.Column = 0
			continue
		}
		pos.Column = advance(pos.Column, ch)
	}
	return pos
}

// advance moves a column past ch. Tabs jump to the next tab stop.
func advance(col int, ch rune) int {
	if ch == '\t' {
		return (col/tabWidth + 1) * tabWidth
	}
	return col + 1
}
