// Package highlight turns source text into minimap style spans using chroma
// lexers and a color theme.
package highlight

import "github.com/alecthomas/chroma/v2"

// TokenType is the coarse token class themes assign colors to.
type TokenType uint8

// Token classes.
const (
	TokenNone TokenType = iota
	TokenComment
	TokenString
	TokenNumber
	TokenKeyword
	TokenOperator
	TokenPunctuation
	TokenIdentifier
	TokenConstant
	TokenFunction
	TokenTypeName
	TokenNamespace
	TokenTag
	TokenAttribute
	TokenMeta
	TokenMarkup
	TokenMarkupHeading
	TokenInvalid

	tokenTypeCount
)

var tokenTypeNames = [tokenTypeCount]string{
	TokenNone:          "none",
	TokenComment:       "comment",
	TokenString:        "string",
	TokenNumber:        "number",
	TokenKeyword:       "keyword",
	TokenOperator:      "operator",
	TokenPunctuation:   "punctuation",
	TokenIdentifier:    "identifier",
	TokenConstant:      "constant",
	TokenFunction:      "function",
	TokenTypeName:      "type",
	TokenNamespace:     "namespace",
	TokenTag:           "tag",
	TokenAttribute:     "attribute",
	TokenMeta:          "meta",
	TokenMarkup:        "markup",
	TokenMarkupHeading: "markup.heading",
	TokenInvalid:       "invalid",
}

// String returns the string representation of a token type.
func (t TokenType) String() string {
	if t < tokenTypeCount {
		return tokenTypeNames[t]
	}
	return "unknown"
}

// FromChroma classifies a chroma token type.
func FromChroma(tt chroma.TokenType) TokenType {
	switch tt {
	case chroma.CommentPreproc, chroma.CommentPreprocFile, chroma.NameDecorator:
		return TokenMeta
	case chroma.KeywordConstant, chroma.NameConstant:
		return TokenConstant
	case chroma.KeywordType, chroma.NameClass:
		return TokenTypeName
	case chroma.OperatorWord:
		return TokenKeyword
	case chroma.NameFunction, chroma.NameFunctionMagic, chroma.NameBuiltin, chroma.NameBuiltinPseudo:
		return TokenFunction
	case chroma.NameNamespace:
		return TokenNamespace
	case chroma.NameTag:
		return TokenTag
	case chroma.NameAttribute:
		return TokenAttribute
	case chroma.GenericHeading, chroma.GenericSubheading:
		return TokenMarkupHeading
	case chroma.GenericEmph, chroma.GenericStrong:
		return TokenMarkup
	case chroma.GenericInserted:
		return TokenString
	case chroma.GenericDeleted, chroma.GenericError, chroma.Error:
		return TokenInvalid
	}

	switch {
	case tt.InCategory(chroma.Comment):
		return TokenComment
	case tt.InSubCategory(chroma.LiteralString):
		return TokenString
	case tt.InSubCategory(chroma.LiteralNumber):
		return TokenNumber
	case tt.InCategory(chroma.Literal):
		return TokenConstant
	case tt.InCategory(chroma.Keyword):
		return TokenKeyword
	case tt.InCategory(chroma.Operator):
		return TokenOperator
	case tt.InCategory(chroma.Punctuation):
		return TokenPunctuation
	case tt.InCategory(chroma.Name):
		return TokenIdentifier
	default:
		return TokenNone
	}
}
