package backend

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/dshills/glance/internal/renderer/core"
)

// ErrEmptyImage is returned when there is nothing to write.
var ErrEmptyImage = errors.New("empty image")

// Flatten composites img over an opaque background.
func Flatten(img image.Image, background core.Color) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx(), b.Dy(), background.NRGBA())
	return imaging.Overlay(dst, img, image.Point{}, 1.0)
}

// Scale resizes img by a device scale factor. Minimap pixels stay crisp.
func Scale(img image.Image, scale float64) image.Image {
	if scale <= 0 || scale == 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	return imaging.Resize(img, w, h, imaging.NearestNeighbor)
}

// FitWidth shrinks img to at most width pixels, keeping its aspect ratio.
func FitWidth(img image.Image, width int) image.Image {
	if width <= 0 || img.Bounds().Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Box)
}

// WritePNG flattens img over background, scales it and saves it to path.
// The format follows the file extension.
func WritePNG(path string, img image.Image, background core.Color, scale float64) error {
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}
	out := Scale(Flatten(img, background), scale)
	if err := imaging.Save(out, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
