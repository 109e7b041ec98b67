package cjslexer

func (l *lexer) punct(i int, text string) bool {
	return l.peek(i).isPunct(l.code, text)
}

func (l *lexer) ident(i int, text string) bool {
	return l.peek(i).isIdent(l.code, text)
}

func (l *lexer) str(i int) (string, bool) {
	return stringValue(l.code, l.peek(i).Token)
}

func (l *lexer) exportsRef(i int) (int, bool) {
	if l.ident(i, "exports") {
		return i + 1, true
	}
	if l.ident(i, "module") && l.punct(i+1, ".") && l.ident(i+2, "exports") {
		return i + 3, true
	}
	return i, false
}

func (l *lexer) requireCall(i int) (string, int, bool) {
	if !l.ident(i, "require") || !l.punct(i+1, "(") || !l.punct(i+3, ")") {
		return "", i, false
	}
	spec, ok := l.str(i + 2)
	if !ok {
		return "", i, false
	}
	return spec, i + 4, true
}

// requireRef matches a module source: a require call, a name bound to one, or
// a helper wrapping a require call such as `__importStar(require("S"))`.
func (l *lexer) requireRef(i int) (string, int, bool) {
	if spec, next, ok := l.requireCall(i); ok {
		return spec, next, true
	}
	tok := l.peek(i)
	if tok.Kind != TokenIdentifier {
		return "", i, false
	}
	if l.punct(i+1, "(") {
		if spec, _, ok := l.requireCall(i + 2); ok {
			return spec, l.skipBalanced(i + 1), true
		}
		return "", i, false
	}
	spec, ok := l.bindings[tok.Text(l.code)]
	if !ok {
		return "", i, false
	}
	switch {
	case l.punct(i+1, "."), l.punct(i+1, "?."), l.punct(i+1, "["):
		return "", i, false
	}
	return spec, i + 1, true
}

func (l *lexer) isObjectCall(i int, method string) bool {
	return l.ident(i, "Object") && l.punct(i+1, ".") && l.ident(i+2, method) && l.punct(i+3, "(")
}

func (l *lexer) endsExpression(i int) bool {
	tok := l.peek(i)
	if tok.Kind == TokenEOF {
		return true
	}
	if tok.Kind == TokenPunctuator {
		switch tok.Text(l.code) {
		case ";", ",", ")", "]", "}":
			return true
		}
	}
	return tok.newline && !continuesExpression(l.code, tok.Token) && !tok.isPunct(l.code, "(") &&
		!tok.isPunct(l.code, "[")
}

func (l *lexer) endsArgument(i int) bool {
	tok := l.peek(i)
	if tok.Kind != TokenPunctuator {
		return false
	}
	switch tok.Text(l.code) {
	case ",", ")", "]", "}":
		return true
	}
	return false
}

type balancedRun struct {
	end    int
	closed bool
}

func (l *lexer) skipBalanced(i int) int {
	end, _ := l.balanced(i)
	return end
}

func (l *lexer) balanced(i int) (int, bool) {
	if run, ok := l.runs[l.pos+i]; ok {
		return run.end - l.pos, run.closed
	}
	depth := 0
	for k := i; ; k++ {
		tok := l.peek(k)
		if tok.Kind == TokenEOF {
			l.recordRuns(i, k)
			return k, false
		}
		if tok.Kind != TokenPunctuator {
			continue
		}
		switch tok.Text(l.code) {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth <= 0 {
				return k + 1, true
			}
		}
	}
}

// recordRuns stores where every opener between i and eof closes once a scan
// from i has reached EOF, so later scans from inside the run return at once.
func (l *lexer) recordRuns(i, eof int) {
	if l.runs == nil {
		l.runs = make(map[int]balancedRun)
	}
	var open []int
	for k := i; k < eof; k++ {
		tok := l.peek(k)
		if tok.Kind != TokenPunctuator {
			continue
		}
		switch tok.Text(l.code) {
		case "(", "[", "{":
			open = append(open, k)
		case ")", "]", "}":
			if len(open) > 0 {
				l.runs[l.pos+open[len(open)-1]] = balancedRun{end: l.pos + k + 1, closed: true}
				open = open[:len(open)-1]
			}
		}
	}
	for _, k := range open {
		l.runs[l.pos+k] = balancedRun{end: l.pos + eof}
	}
}

func (l *lexer) skipExpression(i int) int {
	k := i
	for {
		tok := l.peek(k)
		if tok.Kind == TokenEOF {
			return k
		}
		if tok.Kind == TokenPunctuator {
			switch tok.Text(l.code) {
			case ",", ";", ")", "]", "}":
				return k
			case "(", "[", "{":
				k = l.skipBalanced(k)
				continue
			}
		}
		k++
	}
}

func (l *lexer) skipItem(i int) int {
	if k := l.skipExpression(i); k > i {
		return k
	}
	return i + 1
}
