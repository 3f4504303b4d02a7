package highlight

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/glance/internal/renderer/core"
	"github.com/dshills/glance/internal/renderer/document"
)

// PlainText is the language name of the plain text lexer.
const PlainText = "plaintext"

// Tokenizer is a document.StyleSource backed by a chroma lexer.
type Tokenizer struct {
	lexer chroma.Lexer
	theme *Theme

	mu     sync.Mutex
	colors map[chroma.TokenType]core.Color
}

// NewTokenizer creates a tokenizer for a chroma language name or alias.
// Unknown languages are tokenized as plain text. A nil theme means the
// default theme.
func NewTokenizer(language string, theme *Theme) *Tokenizer {
	l := lexers.Get(language)
	if l == nil {
		l = lexers.Get(PlainText)
	}
	if l == nil {
		l = lexers.Fallback
	}
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Tokenizer{
		lexer:  chroma.Coalesce(l),
		theme:  theme,
		colors: make(map[chroma.TokenType]core.Color),
	}
}

// Language returns the lexer's name.
func (t *Tokenizer) Language() string {
	return t.lexer.Config().Name
}

// Theme returns the theme spans are colored with.
func (t *Tokenizer) Theme() *Theme {
	return t.theme
}

// StyleSpans tokenizes text into contiguous spans covering all of it.
// Adjacent tokens of the same color share a span. Lexers may append a
// trailing newline; spans never extend past len(text).
func (t *Tokenizer) StyleSpans(text []rune) ([]document.StyleSpan, error) {
	if len(text) == 0 {
		return nil, nil
	}

	// EnsureLF is off so CRLF pairs keep their offsets.
	it, err := t.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, string(text))
	if err != nil {
		return nil, fmt.Errorf("tokenising %s: %w", t.Language(), err)
	}

	var spans []document.StyleSpan
	off := 0
	for tok := it(); tok != chroma.EOF && off < len(text); tok = it() {
		n := utf8.RuneCountInString(tok.Value)
		if n == 0 {
			continue
		}
		end := min(off+n, len(text))
		spans = appendSpan(spans, off, end, t.color(tok.Type))
		off = end
	}
	if off < len(text) {
		spans = appendSpan(spans, off, len(text), t.theme.Foreground)
	}
	return spans, nil
}

func appendSpan(spans []document.StyleSpan, start, end int, fg core.Color) []document.StyleSpan {
	if k := len(spans) - 1; k >= 0 && spans[k].End == start && spans[k].Foreground == fg {
		spans[k].End = end
		return spans
	}
	return append(spans, document.StyleSpan{Start: start, End: end, Foreground: fg})
}

func (t *Tokenizer) color(tt chroma.TokenType) core.Color {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.colors[tt]
	if !ok {
		c = t.theme.ColorFor(tt)
		t.colors[tt] = c
	}
	return c
}
