package highlight

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/dshills/glance/internal/renderer/core"
)

// ErrUnknownTheme is returned by LookupTheme for names that are neither
// built in nor chroma styles.
var ErrUnknownTheme = errors.New("unknown theme")

// Theme colors tokens and supplies the minimap's base colors.
type Theme struct {
	// Name is the lookup name of the theme.
	Name string

	// Background fills the panel behind the minimap.
	Background core.Color

	// Foreground colors text no token color applies to.
	Foreground core.Color

	// Selection and Caret are the overlay colors.
	Selection core.Color
	Caret     core.Color

	// Tokens maps token classes to colors.
	Tokens map[TokenType]core.Color

	// style, when set, colors tokens directly from a chroma style.
	style *chroma.Style
}

// ColorFor returns the foreground of a chroma token type.
func (t *Theme) ColorFor(tt chroma.TokenType) core.Color {
	if t.style != nil {
		if e := t.style.Get(tt); e.Colour.IsSet() {
			return fromChroma(e.Colour)
		}
		return t.Foreground
	}
	if c, ok := t.Tokens[FromChroma(tt)]; ok {
		return c
	}
	return t.Foreground
}

// ThemeFromStyle builds a theme that colors tokens with a chroma style.
func ThemeFromStyle(style *chroma.Style) *Theme {
	bg := style.Get(chroma.Background)
	t := &Theme{
		Name:       style.Name,
		Background: core.ColorFromRGB(30, 30, 30),
		Foreground: core.ColorFromRGB(212, 212, 212),
		Tokens:     map[TokenType]core.Color{},
		style:      style,
	}
	if bg.Background.IsSet() {
		t.Background = fromChroma(bg.Background)
	}
	if bg.Colour.IsSet() {
		t.Foreground = fromChroma(bg.Colour)
	}
	t.Selection = t.Background.Blend(t.Foreground, 0.3)
	t.Caret = t.Selection
	return t
}

func fromChroma(c chroma.Colour) core.Color {
	return core.ColorFromRGB(c.Red(), c.Green(), c.Blue())
}

// DefaultTheme returns the built-in dark theme.
func DefaultTheme() *Theme {
	comment := core.ColorFromRGB(106, 153, 85)
	keyword := core.ColorFromRGB(86, 156, 214)
	str := core.ColorFromRGB(206, 145, 120)
	typ := core.ColorFromRGB(78, 201, 176)
	operator := core.ColorFromRGB(212, 212, 212)

	return &Theme{
		Name:       "dark",
		Background: core.ColorFromRGB(30, 30, 30),
		Foreground: core.ColorFromRGB(212, 212, 212),
		Selection:  core.ColorFromRGB(38, 79, 120),
		Caret:      core.ColorFromRGB(38, 79, 120),
		Tokens: map[TokenType]core.Color{
			TokenComment:       comment,
			TokenString:        str,
			TokenNumber:        core.ColorFromRGB(181, 206, 168),
			TokenKeyword:       keyword,
			TokenOperator:      operator,
			TokenPunctuation:   operator,
			TokenIdentifier:    core.ColorFromRGB(156, 220, 254),
			TokenConstant:      core.ColorFromRGB(79, 193, 255),
			TokenFunction:      core.ColorFromRGB(220, 220, 170),
			TokenTypeName:      typ,
			TokenNamespace:     typ,
			TokenTag:           keyword,
			TokenAttribute:     core.ColorFromRGB(156, 220, 254),
			TokenMeta:          core.ColorFromRGB(197, 134, 192),
			TokenMarkupHeading: keyword,
			TokenMarkup:        str,
			TokenInvalid:       core.ColorFromRGB(244, 71, 71),
		},
	}
}

// MonokaiTheme returns a Monokai-inspired theme.
func MonokaiTheme() *Theme {
	pink := core.ColorFromRGB(249, 38, 114)
	green := core.ColorFromRGB(166, 226, 46)
	orange := core.ColorFromRGB(253, 151, 31)
	yellow := core.ColorFromRGB(230, 219, 116)
	blue := core.ColorFromRGB(102, 217, 239)
	purple := core.ColorFromRGB(174, 129, 255)
	white := core.ColorFromRGB(248, 248, 242)

	return &Theme{
		Name:       "monokai",
		Background: core.ColorFromRGB(39, 40, 34),
		Foreground: white,
		Selection:  core.ColorFromRGB(73, 72, 62),
		Caret:      core.ColorFromRGB(73, 72, 62),
		Tokens: map[TokenType]core.Color{
			TokenComment:       core.ColorFromRGB(117, 113, 94),
			TokenString:        yellow,
			TokenNumber:        purple,
			TokenKeyword:       pink,
			TokenOperator:      pink,
			TokenPunctuation:   white,
			TokenIdentifier:    white,
			TokenConstant:      purple,
			TokenFunction:      green,
			TokenTypeName:      blue,
			TokenNamespace:     white,
			TokenTag:           pink,
			TokenAttribute:     green,
			TokenMeta:          orange,
			TokenMarkupHeading: green,
			TokenMarkup:        yellow,
			TokenInvalid:       core.ColorFromRGB(248, 248, 240),
		},
	}
}

// DraculaTheme returns a Dracula-inspired theme.
func DraculaTheme() *Theme {
	purple := core.ColorFromRGB(189, 147, 249)
	pink := core.ColorFromRGB(255, 121, 198)
	green := core.ColorFromRGB(80, 250, 123)
	yellow := core.ColorFromRGB(241, 250, 140)
	cyan := core.ColorFromRGB(139, 233, 253)
	white := core.ColorFromRGB(248, 248, 242)

	return &Theme{
		Name:       "dracula",
		Background: core.ColorFromRGB(40, 42, 54),
		Foreground: white,
		Selection:  core.ColorFromRGB(68, 71, 90),
		Caret:      core.ColorFromRGB(68, 71, 90),
		Tokens: map[TokenType]core.Color{
			TokenComment:       core.ColorFromRGB(98, 114, 164),
			TokenString:        yellow,
			TokenNumber:        purple,
			TokenKeyword:       pink,
			TokenOperator:      pink,
			TokenPunctuation:   white,
			TokenIdentifier:    white,
			TokenConstant:      purple,
			TokenFunction:      green,
			TokenTypeName:      cyan,
			TokenNamespace:     white,
			TokenTag:           pink,
			TokenAttribute:     green,
			TokenMeta:          pink,
			TokenMarkupHeading: purple,
			TokenMarkup:        yellow,
			TokenInvalid:       core.ColorFromRGB(255, 85, 85),
		},
	}
}

// LightTheme returns a light theme.
func LightTheme() *Theme {
	keyword := core.ColorFromRGB(0, 0, 255)
	str := core.ColorFromRGB(163, 21, 21)
	typ := core.ColorFromRGB(38, 127, 153)

	return &Theme{
		Name:       "light",
		Background: core.ColorFromRGB(255, 255, 255),
		Foreground: core.ColorFromRGB(0, 0, 0),
		Selection:  core.ColorFromRGB(173, 214, 255),
		Caret:      core.ColorFromRGB(173, 214, 255),
		Tokens: map[TokenType]core.Color{
			TokenComment:       core.ColorFromRGB(0, 128, 0),
			TokenString:        str,
			TokenNumber:        core.ColorFromRGB(9, 134, 88),
			TokenKeyword:       keyword,
			TokenIdentifier:    core.ColorFromRGB(0, 16, 128),
			TokenConstant:      keyword,
			TokenFunction:      core.ColorFromRGB(121, 94, 38),
			TokenTypeName:      typ,
			TokenNamespace:     typ,
			TokenTag:           core.ColorFromRGB(128, 0, 0),
			TokenAttribute:     core.ColorFromRGB(255, 0, 0),
			TokenMeta:          core.ColorFromRGB(175, 0, 219),
			TokenMarkupHeading: keyword,
			TokenMarkup:        str,
			TokenInvalid:       core.ColorFromRGB(205, 49, 49),
		},
	}
}

var builtinThemes = map[string]func() *Theme{
	"dark":    DefaultTheme,
	"monokai": MonokaiTheme,
	"dracula": DraculaTheme,
	"light":   LightTheme,
}

// LookupTheme returns a built-in theme by name, or a theme over the chroma
// style of that name. Names are case-insensitive; "" is the default theme.
func LookupTheme(name string) (*Theme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return DefaultTheme(), nil
	}
	if fn, ok := builtinThemes[key]; ok {
		return fn(), nil
	}
	if s, ok := styles.Registry[key]; ok {
		return ThemeFromStyle(s), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// ThemeNames returns the built-in theme names followed by the chroma style
// names, each group sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)

	var chromaNames []string
	for name := range styles.Registry {
		if _, ok := builtinThemes[name]; !ok {
			chromaNames = append(chromaNames, name)
		}
	}
	sort.Strings(chromaNames)
	return append(names, chromaNames...)
}
