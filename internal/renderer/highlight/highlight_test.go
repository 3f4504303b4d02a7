package highlight

import (
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/glance/internal/renderer/document"
)

func TestFromChroma(t *testing.T) {
	tests := []struct {
		in   chroma.TokenType
		want TokenType
	}{
		{chroma.CommentSingle, TokenComment},
		{chroma.CommentPreproc, TokenMeta},
		{chroma.LiteralStringDouble, TokenString},
		{chroma.LiteralNumberHex, TokenNumber},
		{chroma.KeywordDeclaration, TokenKeyword},
		{chroma.KeywordType, TokenTypeName},
		{chroma.KeywordConstant, TokenConstant},
		{chroma.NameFunction, TokenFunction},
		{chroma.NameOther, TokenIdentifier},
		{chroma.Operator, TokenOperator},
		{chroma.Punctuation, TokenPunctuation},
		{chroma.GenericHeading, TokenMarkupHeading},
		{chroma.Error, TokenInvalid},
		{chroma.Text, TokenNone},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, FromChroma(tt.in))
		})
	}
	assert.Equal(t, "unknown", TokenType(200).String())
}

// assertCovers checks that spans are contiguous and cover [0, n).
func assertCovers(t *testing.T, spans []document.StyleSpan, n int) {
	t.Helper()
	require.NotEmpty(t, spans)
	assert.Equal(t, 0, spans[0].Start)
	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i-1].End, spans[i].Start, "span %d", i)
		assert.Less(t, spans[i].Start, spans[i].End, "span %d", i)
	}
	assert.Equal(t, n, spans[len(spans)-1].End)
}

func spanAt(spans []document.StyleSpan, off int) document.StyleSpan {
	for _, s := range spans {
		if off >= s.Start && off < s.End {
			return s
		}
	}
	return document.StyleSpan{}
}

func TestTokenizerGo(t *testing.T) {
	theme := DefaultTheme()
	tok := NewTokenizer("go", theme)
	assert.Equal(t, "Go", tok.Language())

	text := []rune("package main\n\n// hi\nfunc f() {}")
	spans, err := tok.StyleSpans(text)
	require.NoError(t, err)
	assertCovers(t, spans, len(text))

	assert.Equal(t, theme.Tokens[TokenKeyword], spanAt(spans, 0).Foreground)
	assert.Equal(t, theme.Tokens[TokenComment], spanAt(spans, 15).Foreground)
}

func TestTokenizerOffsetsAreRunes(t *testing.T) {
	tok := NewTokenizer("go", nil)

	text := []rune("x := \"héllo wörld\"\r\ny := 1")
	spans, err := tok.StyleSpans(text)
	require.NoError(t, err)
	assertCovers(t, spans, len(text))
	assert.Equal(t, DefaultTheme().Tokens[TokenNumber], spanAt(spans, len(text)-1).Foreground)
}

func TestTokenizerUnknownLanguage(t *testing.T) {
	tok := NewTokenizer("no-such-language", nil)
	assert.Equal(t, PlainText, tok.Language())

	spans, err := tok.StyleSpans([]rune("plain"))
	require.NoError(t, err)
	assertCovers(t, spans, 5)

	spans, err = tok.StyleSpans(nil)
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestLookupTheme(t *testing.T) {
	th, err := LookupTheme("")
	require.NoError(t, err)
	assert.Equal(t, "dark", th.Name)

	th, err = LookupTheme("Monokai")
	require.NoError(t, err)
	assert.Equal(t, "monokai", th.Name)

	th, err = LookupTheme("github")
	require.NoError(t, err)
	assert.Equal(t, "github", th.Name)
	assert.False(t, th.Foreground.IsDefault())
	assert.False(t, th.ColorFor(chroma.Keyword).IsDefault())

	_, err = LookupTheme("nope")
	assert.ErrorIs(t, err, ErrUnknownTheme)

	names := ThemeNames()
	assert.Equal(t, []string{"dark", "dracula", "light", "monokai"}, names[:4])
	assert.Contains(t, names, "github")
}

func TestThemeColorForFallsBackToForeground(t *testing.T) {
	th := LightTheme()
	assert.Equal(t, th.Foreground, th.ColorFor(chroma.Text))
	assert.Equal(t, th.Tokens[TokenKeyword], th.ColorFor(chroma.Keyword))
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{"go by extension", "main.go", "package main\n", "Go"},
		{"python by extension", "/tmp/x/tool.py", "print(1)\n", "Python"},
		{"shebang", "run", "#!/usr/bin/env python\nprint(1)\n", "Python"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.filename, []byte(tt.content)))
		})
	}
	assert.NotEmpty(t, DetectLanguage("", nil))
}
