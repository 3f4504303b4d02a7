package raster

import (
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/dshills/glance/internal/renderer/core"
)

// shape is an estimate of how much ink a glyph puts in the top and bottom
// halves of its line.
type shape struct {
	top, bottom float64
}

// asciiShapes holds the shape of every printable ASCII character.
var asciiShapes [127]shape

func init() {
	for ch := '!'; ch <= '~'; ch++ {
		asciiShapes[ch] = classify(ch)
	}
}

func classify(ch rune) shape {
	switch {
	case ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return shape{0.8, 0.8}
	case ch >= 'a' && ch <= 'z':
		switch ch {
		case 'b', 'd', 'f', 'h', 'k', 'l', 't', 'i':
			return shape{0.7, 0.8}
		case 'g', 'j', 'p', 'q', 'y':
			return shape{0.4, 0.9}
		}
		return shape{0.3, 0.8}
	}
	switch ch {
	case '.', ',', ':', ';':
		return shape{0.1, 0.4}
	case '\'', '"', '`', '^', '*':
		return shape{0.5, 0}
	case '_':
		return shape{0, 0.5}
	case '-', '=', '+', '~', '<', '>':
		return shape{0.2, 0.3}
	case '(', ')', '[', ']', '{', '}', '|', '/', '\\':
		return shape{0.6, 0.6}
	case '#', '@', '%', '&', '$':
		return shape{0.7, 0.7}
	}
	return shape{0.5, 0.5}
}

// shapeOf returns the top/bottom ink estimate for ch. Whitespace and control
// characters carry no ink.
func shapeOf(ch rune) shape {
	if ch <= 32 {
		return shape{}
	}
	if ch < rune(len(asciiShapes)) {
		return asciiShapes[ch]
	}
	switch {
	case uniseg.StringWidth(string(ch)) > 1:
		return shape{0.7, 0.7}
	case unicode.IsSpace(ch):
		return shape{}
	case unicode.IsLetter(ch):
		return shape{0.5, 0.6}
	}
	return shape{0.4, 0.4}
}

// density returns the flat weight used in clean mode.
func density(ch rune) float64 {
	switch {
	case ch <= 32:
		return 0
	case ch <= 126:
		return 0.8
	}
	return 0.4
}

// plot draws ch with its top-left corner at (x, y), spreading its weight
// across pixelsPerLine rows.
func plot(buf *Buffer, x, y int, ch rune, c core.Color, pixelsPerLine int, clean bool) {
	if ch <= 32 {
		return
	}
	if clean {
		w := density(ch)
		switch pixelsPerLine {
		case 1:
			buf.SetPixel(x, y+1, c, w*0.6)
		case 2:
			buf.SetPixel(x, y, c, w*0.3)
			buf.SetPixel(x, y+1, c, w*0.6)
		case 3:
			buf.SetPixel(x, y, c, w*0.1)
			buf.SetPixel(x, y+1, c, w*0.6)
			buf.SetPixel(x, y+2, c, w*0.6)
		case 4:
			buf.SetPixel(x, y+1, c, w*0.6)
			buf.SetPixel(x, y+2, c, w*0.6)
			buf.SetPixel(x, y+3, c, w*0.6)
		}
		return
	}

	s := shapeOf(ch)
	if s.top == 0 && s.bottom == 0 {
		return
	}
	mid := (s.top + s.bottom) / 2
	switch pixelsPerLine {
	case 1:
		buf.SetPixel(x, y+1, c, mid)
	case 2:
		buf.SetPixel(x, y, c, s.top*0.5)
		buf.SetPixel(x, y+1, c, s.bottom)
	case 3:
		buf.SetPixel(x, y, c, s.top*0.3)
		buf.SetPixel(x, y+1, c, mid)
		buf.SetPixel(x, y+2, c, s.bottom*0.7)
	case 4:
		buf.SetPixel(x, y+1, c, s.top)
		buf.SetPixel(x, y+2, c, mid)
		buf.SetPixel(x, y+3, c, s.bottom)
	}
}

// advance moves the horizontal cursor past ch. Tabs jump to the next
// 4-column stop.
func advance(x int, ch rune) int {
	if ch == '\t' {
		return (x/tabWidth + 1) * tabWidth
	}
	return x + 1
}

const tabWidth = 4
