package highlight

import (
	"path/filepath"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"
)

// DetectLanguage returns the chroma language name for a file, trying
// enry's filename and content strategies first, then chroma's filename
// patterns and content analysis. It returns PlainText when nothing matches.
func DetectLanguage(filename string, content []byte) string {
	base := filepath.Base(filename)

	if lang := enry.GetLanguage(base, content); lang != "" {
		if l := lexers.Get(lang); l != nil {
			return l.Config().Name
		}
	}
	if l := lexers.Match(base); l != nil {
		return l.Config().Name
	}
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		if l := lexers.Get(lang); l != nil {
			return l.Config().Name
		}
	}
	if len(content) > 0 {
		if l := lexers.Analyse(string(content)); l != nil {
			return l.Config().Name
		}
	}
	return PlainText
}
