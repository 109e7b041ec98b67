package cjslexer

import (
	"testing"
)

type scanned struct {
	kind TokenKind
	text string
}

func scanAll(code string) []scanned {
	s := NewScanner(code)
	var out []scanned
	for {
		tok := s.Next()
		if tok.Kind == TokenEOF {
			return out
		}
		out = append(out, scanned{kind: tok.Kind, text: tok.Text(s.Code())})
	}
}

func assertScan(t *testing.T, code string, want []scanned) {
	t.Helper()
	got := scanAll(code)
	if len(got) != len(want) {
		t.Fatalf("scan %q: expected %d tokens, got %d: %v", code, len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scan %q: token %d: expected %v %q, got %v %q", code, i, want[i].kind, want[i].text, got[i].kind, got[i].text)
		}
	}
}

func TestScannerDivisionAndRegex(t *testing.T) {
	assertScan(t, "a / b / c", []scanned{
		{TokenIdentifier, "a"}, {TokenPunctuator, "/"}, {TokenIdentifier, "b"},
		{TokenPunctuator, "/"}, {TokenIdentifier, "c"},
	})
	assertScan(t, "x = /a[/]b+/gi.test(y)", []scanned{
		{TokenIdentifier, "x"}, {TokenPunctuator, "="}, {TokenRegex, "/a[/]b+/gi"},
		{TokenPunctuator, "."}, {TokenIdentifier, "test"}, {TokenPunctuator, "("},
		{TokenIdentifier, "y"}, {TokenPunctuator, ")"},
	})
	assertScan(t, "return /x/", []scanned{{TokenKeyword, "return"}, {TokenRegex, "/x/"}})
	assertScan(t, "this / 2", []scanned{{TokenKeyword, "this"}, {TokenPunctuator, "/"}, {TokenNumeric, "2"}})
}

func TestScannerTemplateSubstitutions(t *testing.T) {
	assertScan(t, "`a${ {b: 1}.b }c`", []scanned{
		{TokenTemplate, "`a${"}, {TokenPunctuator, "{"}, {TokenIdentifier, "b"}, {TokenPunctuator, ":"},
		{TokenNumeric, "1"}, {TokenPunctuator, "}"}, {TokenPunctuator, "."}, {TokenIdentifier, "b"},
		{TokenTemplate, "}c`"},
	})
	assertScan(t, "`outer ${`inner ${x}`} done`", []scanned{
		{TokenTemplate, "`outer ${"}, {TokenTemplate, "`inner ${"}, {TokenIdentifier, "x"},
		{TokenTemplate, "}`"}, {TokenTemplate, "} done`"},
	})
}

func TestScannerUnterminatedLiterals(t *testing.T) {
	assertScan(t, "\"open\nnext", []scanned{
		{TokenString, "\"open"}, {TokenLineTerminator, "\n"}, {TokenIdentifier, "next"},
	})
	assertScan(t, "'a\\'b'", []scanned{{TokenString, "'a\\'b'"}})
	assertScan(t, "`never closed", []scanned{{TokenTemplate, "`never closed"}})
	assertScan(t, "/* open", []scanned{{TokenComment, "/* open"}})
	assertScan(t, "x = /open\ny", []scanned{
		{TokenIdentifier, "x"}, {TokenPunctuator, "="}, {TokenRegex, "/open"},
		{TokenLineTerminator, "\n"}, {TokenIdentifier, "y"},
	})
}

func TestScannerPunctuatorsAndNumbers(t *testing.T) {
	assertScan(t, "a?.b ?? c >>>= 1", []scanned{
		{TokenIdentifier, "a"}, {TokenPunctuator, "?."}, {TokenIdentifier, "b"}, {TokenPunctuator, "??"},
		{TokenIdentifier, "c"}, {TokenPunctuator, ">>>="}, {TokenNumeric, "1"},
	})
	assertScan(t, "a?.5:1", []scanned{
		{TokenIdentifier, "a"}, {TokenPunctuator, "?"}, {TokenNumeric, ".5"}, {TokenPunctuator, ":"}, {TokenNumeric, "1"},
	})
	assertScan(t, "1e+5 0x1F 1_000n", []scanned{{TokenNumeric, "1e+5"}, {TokenNumeric, "0x1F"}, {TokenNumeric, "1_000n"}})
}

func TestScannerCommentsAndHashbang(t *testing.T) {
	assertScan(t, "#!/usr/bin/env node\nx // tail\n/* block */y", []scanned{
		{TokenComment, "#!/usr/bin/env node"}, {TokenLineTerminator, "\n"}, {TokenIdentifier, "x"},
		{TokenComment, "// tail"}, {TokenLineTerminator, "\n"}, {TokenComment, "/* block */"}, {TokenIdentifier, "y"},
	})
	assertScan(t, "a\r\nb\u2028c", []scanned{
		{TokenIdentifier, "a"}, {TokenLineTerminator, "\r\n"}, {TokenIdentifier, "b"},
		{TokenLineTerminator, "\u2028"}, {TokenIdentifier, "c"},
	})
}

func TestScannerIdentifiersAndKeywords(t *testing.T) {
	assertScan(t, "const café = exports.default", []scanned{
		{TokenKeyword, "const"}, {TokenIdentifier, "café"}, {TokenPunctuator, "="},
		{TokenIdentifier, "exports"}, {TokenPunctuator, "."}, {TokenKeyword, "default"},
	})
	assertScan(t, "\ufeffx", []scanned{{TokenIdentifier, "x"}})
}

func TestStringValue(t *testing.T) {
	cases := []struct {
		code string
		want string
		ok   bool
	}{
		{`"plain"`, "plain", true},
		{`'a\'b'`, "a'b", true},
		{`"\x41B\u{43}"`, "ABC", true},
		{`"\uD83D\uDE00"`, "\U0001F600", true},
		{"`tmpl`", "tmpl", true},
		{`"open`, "", false},
		{`"bad\x4"`, "", false},
	}
	for _, tc := range cases {
		s := NewScanner(tc.code)
		got, ok := stringValue(tc.code, s.Next())
		if ok != tc.ok || got != tc.want {
			t.Fatalf("stringValue(%s): expected %q/%v, got %q/%v", tc.code, tc.want, tc.ok, got, ok)
		}
	}
}
