package cjslexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	lineSeparator      = '\u2028'
	paragraphSeparator = '\u2029'
	byteOrderMark      = '\ufeff'
)

var punctuators = [...][]string{
	{">>>="},
	{"===", "!==", "...", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??="},
	{"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**", "<<", ">>"},
}

// Scanner is a forward-only cursor over module source. It never fails: bytes it
// cannot classify come back as single-byte punctuators.
type Scanner struct {
	code string
	pos  int

	prev Token
	lineStart bool

	braceDepth     int
	templateDepths []int
}

func NewScanner(code string) *Scanner {
	return &Scanner{code: code, lineStart: true}
}

func (s *Scanner) Code() string {
	return s.code
}

func (s *Scanner) Next() Token {
	tok := s.scan()
	switch tok.Kind {
	case TokenComment:
	case TokenLineTerminator:
		s.lineStart = true
	default:
		s.prev = tok
		s.lineStart = false
	}
	return tok
}

func (s *Scanner) scan() Token {
	code := s.code
	for s.pos < len(code) {
		start := s.pos
		c := code[start]
		switch {
		case c == '\n':
			s.pos++
			return Token{Kind: TokenLineTerminator, Start: start, End: s.pos}
		case c == '\r':
			s.pos++
			if s.pos < len(code) && code[s.pos] == '\n' {
				s.pos++
			}
			return Token{Kind: TokenLineTerminator, Start: start, End: s.pos}
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			s.pos++
			continue
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(code[start:])
			if r == lineSeparator || r == paragraphSeparator {
				s.pos += size
				return Token{Kind: TokenLineTerminator, Start: start, End: s.pos}
			}
			if r == byteOrderMark || unicode.IsSpace(r) {
				s.pos += size
				continue
			}
			return s.scanIdentifier(start)
		case c == '#' && start == 0 && strings.HasPrefix(code, "#!"):
			return s.scanLineComment(start)
		case c == '/':
			if start+1 < len(code) {
				switch code[start+1] {
				case '/':
					return s.scanLineComment(start)
				case '*':
					return s.scanBlockComment(start)
				}
			}
			if s.regexAllowed() {
				return s.scanRegex(start)
			}
			return s.scanPunctuator(start)
		case c == '\'' || c == '"':
			return s.scanString(start, c)
		case c == '`':
			return s.scanTemplate(start, start+1)
		case c == '{':
			s.braceDepth++
			s.pos++
			return Token{Kind: TokenPunctuator, Start: start, End: s.pos}
		case c == '}':
			if n := len(s.templateDepths); n > 0 && s.templateDepths[n-1] == s.braceDepth {
				s.templateDepths = s.templateDepths[:n-1]
				return s.scanTemplate(start, start+1)
			}
			if s.braceDepth > 0 {
				s.braceDepth--
			}
			s.pos++
			return Token{Kind: TokenPunctuator, Start: start, End: s.pos}
		case isDecimalDigit(c) || (c == '.' && start+1 < len(code) && isDecimalDigit(code[start+1])):
			return s.scanNumeric(start)
		case isIdentifierStart(c):
			return s.scanIdentifier(start)
		case c == '<' && strings.HasPrefix(code[start:], "<!--"):
			return s.scanLineComment(start)
		case c == '-' && s.lineStart && strings.HasPrefix(code[start:], "-->"):
			return s.scanLineComment(start)
		default:
			return s.scanPunctuator(start)
		}
	}
	return Token{Kind: TokenEOF, Start: len(code), End: len(code)}
}

func (s *Scanner) regexAllowed() bool {
	prev := s.prev
	switch prev.Kind {
	case TokenEOF:
		return true
	case TokenIdentifier, TokenNumeric, TokenString, TokenRegex:
		return false
	case TokenTemplate:
		return strings.HasSuffix(prev.Text(s.code), "${")
	case TokenKeyword:
		return !valueKeywords[prev.Text(s.code)]
	case TokenPunctuator:
		switch prev.Text(s.code) {
		case ")", "]", "}":
			return false
		}
		return true
	}
	return true
}

func (s *Scanner) scanLineComment(start int) Token {
	i := start
	for i < len(s.code) {
		c := s.code[i]
		if c == '\n' || c == '\r' {
			break
		}
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s.code[i:])
			if r == lineSeparator || r == paragraphSeparator {
				break
			}
			i += size
			continue
		}
		i++
	}
	s.pos = i
	return Token{Kind: TokenComment, Start: start, End: i}
}

func (s *Scanner) scanBlockComment(start int) Token {
	end := strings.Index(s.code[start+2:], "*/")
	if end < 0 {
		s.pos = len(s.code)
	} else {
		s.pos = start + 2 + end + 2
	}
	return Token{Kind: TokenComment, Start: start, End: s.pos}
}

// scanString stops at the closing quote, an unescaped line break, or EOF.
func (s *Scanner) scanString(start int, quote byte) Token {
	i := start + 1
	for i < len(s.code) {
		c := s.code[i]
		if c == quote {
			i++
			break
		}
		if c == '\\' {
			i++
			if i < len(s.code) && s.code[i] == '\r' && i+1 < len(s.code) && s.code[i+1] == '\n' {
				i++
			}
			if i < len(s.code) {
				_, size := utf8.DecodeRuneInString(s.code[i:])
				i += size
			}
			continue
		}
		if c == '\n' || c == '\r' {
			break
		}
		i++
	}
	s.pos = i
	return Token{Kind: TokenString, Start: start, End: i}
}

// scanTemplate scans one template piece starting at from. A piece ends at the
// closing backtick, at a `${` (recording the brace depth so the matching `}`
// resumes the template), or at EOF.
func (s *Scanner) scanTemplate(start, from int) Token {
	i := from
	for i < len(s.code) {
		c := s.code[i]
		if c == '\\' {
			i += 2
			continue
		}
		if c == '`' {
			i++
			break
		}
		if c == '$' && i+1 < len(s.code) && s.code[i+1] == '{' {
			i += 2
			s.templateDepths = append(s.templateDepths, s.braceDepth)
			break
		}
		i++
	}
	if i > len(s.code) {
		i = len(s.code)
	}
	s.pos = i
	return Token{Kind: TokenTemplate, Start: start, End: i}
}

func (s *Scanner) scanRegex(start int) Token {
	i := start + 1
	inClass := false
loop:
	for i < len(s.code) {
		c := s.code[i]
		switch {
		case c == '\n' || c == '\r':
			break loop
		case c == '\\':
			if i+1 < len(s.code) && (s.code[i+1] == '\n' || s.code[i+1] == '\r') {
				i++
				break loop
			}
			i += 2
		case c == '[':
			inClass = true
			i++
		case c == ']':
			inClass = false
			i++
		case c == '/' && !inClass:
			i++
			for i < len(s.code) && isIdentifierPart(s.code[i]) {
				i++
			}
			break loop
		default:
			i++
		}
	}
	if i > len(s.code) {
		i = len(s.code)
	}
	s.pos = i
	return Token{Kind: TokenRegex, Start: start, End: i}
}

func (s *Scanner) scanNumeric(start int) Token {
	i := start
	hex := strings.HasPrefix(s.code[start:], "0x") || strings.HasPrefix(s.code[start:], "0X")
	for i < len(s.code) {
		c := s.code[i]
		if isIdentifierPart(c) || c == '.' {
			i++
			continue
		}
		if (c == '+' || c == '-') && !hex && i > start && (s.code[i-1] == 'e' || s.code[i-1] == 'E') {
			i++
			continue
		}
		break
	}
	s.pos = i
	return Token{Kind: TokenNumeric, Start: start, End: i}
}

func (s *Scanner) scanIdentifier(start int) Token {
	i := start
	for i < len(s.code) {
		c := s.code[i]
		if isIdentifierPart(c) {
			i++
			continue
		}
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s.code[i:])
			if r == lineSeparator || r == paragraphSeparator || r == byteOrderMark || unicode.IsSpace(r) {
				break
			}
			i += size
			continue
		}
		break
	}
	s.pos = i
	kind := TokenIdentifier
	if isKeyword(s.code[start:i]) {
		kind = TokenKeyword
	}
	return Token{Kind: kind, Start: start, End: i}
}

func (s *Scanner) scanPunctuator(start int) Token {
	rest := s.code[start:]
	for _, group := range punctuators {
		for _, op := range group {
			if !strings.HasPrefix(rest, op) {
				continue
			}
			if op == "?." && len(rest) > 2 && isDecimalDigit(rest[2]) {
				continue
			}
			s.pos = start + len(op)
			return Token{Kind: TokenPunctuator, Start: start, End: s.pos}
		}
	}
	s.pos = start + 1
	return Token{Kind: TokenPunctuator, Start: start, End: s.pos}
}

func isDecimalDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '$' || c == '_' || c == '\\'
}

func isIdentifierPart(c byte) bool {
	return isIdentifierStart(c) || isDecimalDigit(c)
}
