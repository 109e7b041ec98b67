package cjslexer

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// stringValue decodes a string literal token, or a template literal without
// substitutions, into its value. Unterminated literals are rejected.
func stringValue(code string, tok Token) (string, bool) {
	text := tok.Text(code)
	if len(text) < 2 {
		return "", false
	}
	switch tok.Kind {
	case TokenString:
		quote := text[0]
		if text[len(text)-1] != quote || isEscapedAt(text, len(text)-1) {
			return "", false
		}
	case TokenTemplate:
		if text[0] != '`' || text[len(text)-1] != '`' || isEscapedAt(text, len(text)-1) {
			return "", false
		}
	default:
		return "", false
	}
	body := text[1 : len(text)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}
	return unescape(body)
}

func isEscapedAt(text string, i int) bool {
	n := 0
	for j := i - 1; j > 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func unescape(body string) (string, bool) {
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		c = body[i]
		switch c {
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '0':
			if i+1 < len(body) && isDecimalDigit(body[i+1]) {
				return "", false
			}
			b.WriteByte(0)
			i++
		case '\r':
			i++
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case '\n':
			i++
		case 'x':
			if i+3 > len(body) {
				return "", false
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(v))
			i += 3
		case 'u':
			r, next, ok := unicodeEscape(body, i)
			if !ok {
				return "", false
			}
			if utf16.IsSurrogate(r) && next+1 < len(body) && body[next] == '\\' && body[next+1] == 'u' {
				if low, after, ok := unicodeEscape(body, next+1); ok {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						next = after
					}
				}
			}
			b.WriteRune(r)
			i = next
		default:
			r, size := utf8.DecodeRuneInString(body[i:])
			if r == lineSeparator || r == paragraphSeparator {
				i += size
				continue
			}
			b.WriteRune(r)
			i += size
		}
	}
	return b.String(), true
}

func unicodeEscape(body string, i int) (rune, int, bool) {
	if i+1 < len(body) && body[i+1] == '{' {
		end := strings.IndexByte(body[i+2:], '}')
		if end <= 0 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(body[i+2:i+2+end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(v), i + 2 + end + 1, true
	}
	if i+5 > len(body) {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(body[i+1:i+5], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), i + 5, true
}
