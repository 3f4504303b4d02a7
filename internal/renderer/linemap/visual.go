package linemap

import (
	"github.com/dshills/glance/internal/renderer/fold"
)

// VisualPosition is a position in the editor's visual (folded, wrapped) space.
type VisualPosition struct {
	Line   int
	Column int
}

// VisualModel is the host's visual-line API.
type VisualModel interface {
	// LineNumber returns the logical line containing offset.
	LineNumber(offset int) int

	// LogicalToVisualLine maps a logical line to the visual line it starts on.
	LogicalToVisualLine(line int) int

	// VisualToLogicalLine maps a visual line to the logical line shown at
	// its first column.
	VisualToLogicalLine(visual int) int

	// OffsetToVisual maps an offset to its visual position.
	OffsetToVisual(offset int) VisualPosition
}

// Visual maps logical lines and offsets to visual lines, compensating for
// folds that swallow whole highlighted ranges.
type Visual struct {
	model VisualModel
	folds *fold.Index
}

// NewVisual creates a mapper over model. folds supplies the active folds
// used for range compensation and may be nil.
func NewVisual(model VisualModel, folds *fold.Index) *Visual {
	return &Visual{model: model, folds: folds}
}

// Line returns the visual line of a logical line.
func (v *Visual) Line(line int) int {
	return v.model.LogicalToVisualLine(line)
}

// Offset returns the visual position of an offset.
func (v *Visual) Offset(offset int) VisualPosition {
	return v.model.OffsetToVisual(offset)
}

// LogicalLine returns the logical line containing offset.
func (v *Visual) LogicalLine(offset int) int {
	return v.model.LineNumber(offset)
}

// IsCollapsed reports whether offset is hidden by a fold.
func (v *Visual) IsCollapsed(offset int) bool {
	return v.folds.IsHidden(offset)
}

// RangeLines returns the visual lines to draw a logical line range
// [line1, line2] at.
//
// A range entirely inside one collapsed fold is drawn one line tall. A range
// spanning several logical lines that still lands on a single visual line
// is shifted by the fold's logical/visual delta so it keeps its height.
func (v *Visual) RangeLines(line1, line2 int) (int, int) {
	v1 := v.model.LogicalToVisualLine(line1)
	v2 := v.model.LogicalToVisualLine(line2)

	for _, f := range v.folds.Regions() {
		if v.model.LineNumber(f.Start) <= line1 && line2 <= v.model.LineNumber(f.End) {
			v2 = v1 + 1
		}
	}

	if line1 != line2 && v1 == v2 {
		real := v.model.VisualToLogicalLine(v1)
		v1 += line1 - real
		v2 += line2 - real
	}
	return v1, v2
}
