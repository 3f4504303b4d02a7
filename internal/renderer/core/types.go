// Package core provides shared value types for the minimap renderer.
// This package breaks import cycles between the rasterizer, the painters
// and the host models.
package core

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a straight (non-premultiplied) RGBA color.
//
// The zero value is ColorDefault and means "no color"; resolvers return it
// when they have nothing to contribute and callers fall back to the next
// source in their precedence chain.
type Color struct {
	R, G, B, A uint8
}

// ColorDefault represents an unset color.
var ColorDefault = Color{}

// Common colors.
var (
	ColorBlack = Color{R: 0, G: 0, B: 0, A: 255}
	ColorWhite = Color{R: 255, G: 255, B: 255, A: 255}
	ColorRed   = Color{R: 255, G: 0, B: 0, A: 255}
	ColorGreen = Color{R: 0, G: 255, B: 0, A: 255}
	ColorBlue  = Color{R: 0, G: 0, B: 255, A: 255}
	ColorGray  = Color{R: 128, G: 128, B: 128, A: 255}
)

// ColorFromRGB creates an opaque color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// ColorFromHex creates an opaque color from a hex string.
// Supports formats: "#RGB", "#RRGGBB", "RGB", "RRGGBB".
func ColorFromHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex color length: %s", hex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %s", hex)
	}
	return ColorFromRGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// IsDefault returns true if this is the unset color.
func (c Color) IsDefault() bool {
	return c == ColorDefault
}

// Or returns c, or fallback when c is unset.
func (c Color) Or(fallback Color) Color {
	if c.IsDefault() {
		return fallback
	}
	return c
}

// String returns a string representation of the color.
func (c Color) String() string {
	if c.IsDefault() {
		return "default"
	}
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// NRGBA converts the color to the image/color representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// WithAlpha returns the color with its alpha channel replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

// Brighter returns a lighter version of the color, roughly the way AWT's
// Color.brighter scales each channel by 1/0.7. Lightness is raised in
// CIE-L*a*b* space so hues stay stable.
func (c Color) Brighter() Color {
	if c.IsDefault() {
		return c
	}
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	l, a, b := cf.Lab()
	l = min(1, l/0.7)
	if l < 0.3 {
		l = 0.3
	}
	r, g, bl := colorful.Lab(l, a, b).Clamped().RGB255()
	return Color{R: r, G: g, B: bl, A: c.A}
}

// Blend blends two colors in linear RGB. Amount 0.0 = c, 1.0 = other.
func (c Color) Blend(other Color, amount float64) Color {
	ca := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	cb := colorful.Color{R: float64(other.R) / 255, G: float64(other.G) / 255, B: float64(other.B) / 255}
	r, g, b := ca.BlendLinearRgb(cb, amount).Clamped().RGB255()
	alpha := float64(c.A)*(1-amount) + float64(other.A)*amount
	return Color{R: r, G: g, B: b, A: uint8(alpha + 0.5)}
}

// Severity orders diagnostic markup. Higher values are more severe.
type Severity int

// Severity levels.
const (
	SeverityNone Severity = iota
	SeverityInformation
	SeverityWeakWarning
	SeverityWarning
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityInformation:
		return "information"
	case SeverityWeakWarning:
		return "weak_warning"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity parses a severity name. Unknown names return an error.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SeverityNone, nil
	case "info", "information":
		return SeverityInformation, nil
	case "weak_warning", "weak-warning", "weakwarning":
		return SeverityWeakWarning, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityNone, fmt.Errorf("unknown severity %q", s)
	}
}

// Range is a half-open character offset range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the length of the range.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains returns true if offset is within the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps returns true if two ranges share at least one offset.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}
