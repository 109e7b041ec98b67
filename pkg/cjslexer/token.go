package cjslexer

type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenKeyword
	TokenPunctuator
	TokenNumeric
	TokenString
	TokenTemplate
	TokenRegex
	TokenComment
	TokenLineTerminator
)

var tokenKindNames = [...]string{
	TokenEOF:            "EOF",
	TokenIdentifier:     "Identifier",
	TokenKeyword:        "Keyword",
	TokenPunctuator:     "Punctuator",
	TokenNumeric:        "Numeric",
	TokenString:         "StringLiteral",
	TokenTemplate:       "TemplateLiteral",
	TokenRegex:          "RegexLiteral",
	TokenComment:        "Comment",
	TokenLineTerminator: "LineTerminator",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "Unknown"
}

// Token is a classified byte span of the source. Start and End are byte offsets.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
}

func (t Token) Text(code string) string {
	if t.Start < 0 || t.End > len(code) || t.Start > t.End {
		return ""
	}
	return code[t.Start:t.End]
}

func (t Token) is(code string, kind TokenKind, text string) bool {
	return t.Kind == kind && t.End-t.Start == len(text) && code[t.Start:t.End] == text
}

func (t Token) isPunct(code string, text string) bool {
	return t.is(code, TokenPunctuator, text)
}

func (t Token) isIdent(code string, text string) bool {
	return t.is(code, TokenIdentifier, text)
}

func (t Token) isKeyword(code string, text string) bool {
	return t.is(code, TokenKeyword, text)
}

func (t Token) isName() bool {
	return t.Kind == TokenIdentifier || t.Kind == TokenKeyword
}

var keywords = map[string]bool{
	"await":      true,
	"break":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"let":        true,
	"new":        true,
	"null":       true,
	"return":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
	"yield":      true,
}

// valueKeywords behave like operands: a slash after them is division.
var valueKeywords = map[string]bool{
	"this":  true,
	"super": true,
	"null":  true,
	"true":  true,
	"false": true,
}

func isKeyword(word string) bool {
	return keywords[word]
}
