// Package scroll maps between the editor's pixel space, the full minimap
// bitmap and the slice of it the panel shows.
package scroll

import (
	"errors"
	"math"
)

// ErrDegenerateGeometry is returned for a non-positive line height.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Geometry is the host editor's layout, in editor pixels.
type Geometry struct {
	// LineHeight is the height of one text line.
	LineHeight int

	// ContentHeight is the height of the whole (folded, wrapped) content.
	ContentHeight int

	// ViewportY is the top of the visible area within the content.
	ViewportY int

	// ViewportHeight is the height of the visible area. The minimap panel
	// is as tall as the editor's visible area.
	ViewportHeight int
}

// State is derived scroll state. All heights are minimap pixels except
// VisibleHeight, which is the panel height.
type State struct {
	// Scale converts editor pixels to minimap pixels.
	Scale float64

	// DocumentHeight is the minimap height of the whole content.
	DocumentHeight int

	// VisibleStart and VisibleEnd delimit the bitmap rows shown in the
	// panel.
	VisibleStart int
	VisibleEnd   int

	// VisibleHeight is the panel height.
	VisibleHeight int

	// DrawHeight is the number of bitmap rows actually drawn.
	DrawHeight int

	// ViewportStart and ViewportHeight locate the editor viewport in the
	// bitmap.
	ViewportStart  int
	ViewportHeight int
}

// Compute derives the scroll state for pixelsPerLine minimap rows per line.
func Compute(g Geometry, pixelsPerLine int) (State, error) {
	var s State
	if err := s.ComputeDimensions(g, pixelsPerLine); err != nil {
		return State{}, err
	}
	s.RecomputeVisible(g.ViewportY, g.ViewportHeight)
	return s, nil
}

// ComputeDimensions sets Scale and DocumentHeight. The state is left
// unchanged when the line height is not positive.
func (s *State) ComputeDimensions(g Geometry, pixelsPerLine int) error {
	if g.LineHeight <= 0 {
		return ErrDegenerateGeometry
	}
	s.Scale = float64(pixelsPerLine) / float64(g.LineHeight)
	s.DocumentHeight = int(float64(max(g.ContentHeight, 0)) * s.Scale)
	return nil
}

// RecomputeVisible places the viewport and the visible window.
//
// The viewport's position relative to the scrollable range is mapped
// linearly onto the bitmap's scrollable range, so the window reaches the
// end of the bitmap exactly when the editor is scrolled to the bottom.
func (s *State) RecomputeVisible(viewportY, viewportHeight int) {
	s.VisibleHeight = max(viewportHeight, 0)
	s.DrawHeight = min(s.VisibleHeight, s.DocumentHeight)

	s.ViewportStart = int(float64(viewportY) * s.Scale)
	s.ViewportHeight = int(float64(viewportHeight) * s.Scale)

	den := max(s.DocumentHeight-s.ViewportHeight+1, 1)
	start := float64(s.ViewportStart) / float64(den) * float64(s.DocumentHeight-s.VisibleHeight+1)
	s.VisibleStart = max(int(start), 0)
	s.VisibleEnd = s.VisibleStart + s.DrawHeight
}

// ToPanel converts a bitmap row to a panel row.
func (s State) ToPanel(rasterY int) int {
	return rasterY - s.VisibleStart
}

// ToRaster converts a panel row to a bitmap row.
func (s State) ToRaster(panelY int) int {
	return panelY + s.VisibleStart
}

// EditorOffsetY converts a panel row to an editor y coordinate, as used
// when the user clicks the minimap.
func (s State) EditorOffsetY(panelY int) int {
	if s.Scale == 0 {
		return 0
	}
	return int(math.Round(float64(s.ToRaster(panelY)) / s.Scale))
}

// Thumb returns the viewport box in panel rows.
func (s State) Thumb() (y, height int) {
	return s.ToPanel(s.ViewportStart), s.ViewportHeight
}

// RowVisible reports whether a bitmap row falls in the visible window.
func (s State) RowVisible(rasterY int) bool {
	return rasterY >= s.VisibleStart && rasterY < s.VisibleEnd
}
