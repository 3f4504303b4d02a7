// Package raster paints the minimap bitmap.
//
// A pass walks a Snapshot of the document (text, style spans, folds and
// soft wraps taken under the host's read lock) and converts every visible
// character into a short vertical run of alpha-weighted pixels. Two
// rasterizers share the weighting tables: Current, which follows the
// editor's visual lines and draws fold placeholders, and Legacy, which
// walks precomputed line endings and simply skips folded text.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/dshills/glance/internal/renderer/core"
)

// Buffer is a width x height grid of straight-alpha RGBA pixels.
// Width is fixed for the life of the buffer; a buffer that is too short is
// replaced, never resized in place.
type Buffer struct {
	img *image.NRGBA
}

// NewBuffer allocates a transparent buffer. Non-positive sizes are raised
// to one pixel.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{img: image.NewNRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int {
	return b.img.Rect.Dx()
}

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int {
	return b.img.Rect.Dy()
}

// Clear makes every pixel fully transparent.
func (b *Buffer) Clear() {
	clear(b.img.Pix)
}

// SetPixel writes c at (x, y) with alpha weight*255. The weight is clamped
// to [0, 1]. Writes outside the buffer are dropped.
func (b *Buffer) SetPixel(x, y int, c core.Color, weight float64) {
	if x < 0 || y < 0 || x >= b.Width() || y >= b.Height() {
		return
	}
	weight = math.Max(0, math.Min(1, weight))
	b.img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(weight * 255))})
}

// At returns the pixel at (x, y).
func (b *Buffer) At(x, y int) color.NRGBA {
	return b.img.NRGBAAt(x, y)
}

// Image returns the underlying image. Callers must not write to it once the
// buffer has been published.
func (b *Buffer) Image() *image.NRGBA {
	return b.img
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	img := image.NewNRGBA(b.img.Rect)
	copy(img.Pix, b.img.Pix)
	return &Buffer{img: img}
}

// Equal reports whether two buffers hold identical pixels.
func (b *Buffer) Equal(other *Buffer) bool {
	if other == nil || b.img.Rect != other.img.Rect {
		return false
	}
	for i := range b.img.Pix {
		if b.img.Pix[i] != other.img.Pix[i] {
			return false
		}
	}
	return true
}
