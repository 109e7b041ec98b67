package cjslexer

// Detectors run with the cursor on an anchor token, before the tracker has seen
// it, and look ahead through the token queue. They never consume tokens.

var starHelpers = map[string]bool{
	"__exportStar": true,
	"__export":     true,
	"_exportStar":  true,
	"_export_star": true,
	"__reExport":   true,
}

func (l *lexer) detect(tok sigToken) {
	code := l.code
	if tok.isKeyword(code, "if") && !l.tracker.PrevIsMemberAccess() {
		l.detectEnvGuard()
		return
	}
	if l.tracker.InsideFunction() || l.tracker.IsDead() {
		return
	}

	member := l.tracker.PrevIsMemberAccess()
	switch tok.Kind {
	case TokenKeyword:
		switch tok.Text(code) {
		case "var", "let", "const":
			if !member {
				l.detectBinding(1)
			}
		}
	case TokenIdentifier:
		name := tok.Text(code)
		if starHelpers[name] {
			if l.cfg.CallMode && (!member || l.tracker.prev2.Kind == TokenIdentifier) {
				l.detectStarHelper(name)
			}
			return
		}
		if member {
			return
		}
		switch name {
		case "exports":
			l.detectExports()
		case "module":
			l.detectModule()
		case "Object":
			l.detectObject()
		default:
			if l.punct(1, "=") {
				l.detectBinding(0)
			}
		}
	}
}

// detectEnvGuard classifies `if (process.env.NODE_ENV === "v")` so the
// tracker can open its body as taken or dead.
func (l *lexer) detectEnvGuard() {
	if !l.punct(1, "(") {
		return
	}
	branch, next, ok := l.envComparison(2)
	if ok && l.punct(next, ")") {
		l.tracker.nextIfEnv = branch
	}
}

func (l *lexer) detectExports() {
	l.detectProperty(1)
}

func (l *lexer) detectModule() {
	if !l.punct(1, ".") || !l.ident(2, "exports") {
		return
	}
	if l.punct(3, "=") {
		l.detectReassign(4)
		return
	}
	l.detectProperty(3)
}

func (l *lexer) detectProperty(i int) {
	switch {
	case l.punct(i, ".") && l.peek(i+1).isName() && l.punct(i+2, "="):
		tok := l.peek(i + 1)
		l.emit(tok.Text(l.code), false, l.certainty(), ShapeAssign, tok.Start)
	case l.punct(i, "[") && l.punct(i+2, "]") && l.punct(i+3, "="):
		if name, ok := l.str(i + 1); ok {
			l.emit(name, false, l.certainty(), ShapeComputed, l.peek(i+1).Start)
		}
	}
}

func (l *lexer) detectReassign(j int) {
	certainty := l.certainty()
	for {
		if l.ident(j, "exports") && l.punct(j+1, "=") {
			j += 2
			continue
		}
		if l.ident(j, "module") && l.punct(j+1, ".") && l.ident(j+2, "exports") && l.punct(j+3, "=") {
			j += 4
			continue
		}
		break
	}
	if certainty == Definite && !l.tracker.InAnnotation() {
		l.acc.invalidate()
	}

	if spec, next, ok := l.requireCall(j); ok && l.endsExpression(next) {
		l.emit(spec, true, certainty, ShapeReassign, l.peek(j+2).Start)
		return
	}
	if l.punct(j, "{") {
		l.objectLiteral(j, certainty, ShapeObjectLiteral)
		return
	}
	if l.isObjectCall(j, "assign") {
		l.copyArgs(j+4, certainty)
		return
	}
	if spec, ok := l.bindings[l.peek(j).Text(l.code)]; ok && l.peek(j).Kind == TokenIdentifier && l.endsExpression(j+1) {
		l.emit(spec, true, certainty, ShapeBinding, l.peek(j).Start)
		return
	}
	l.detectEnvTernary(j, certainty)
}

// detectEnvTernary matches
// `process.env.NODE_ENV === "v" ? require("a") : require("b")` at j.
func (l *lexer) detectEnvTernary(j int, certainty Certainty) {
	branch, next, ok := l.envComparison(j)
	if !ok || !l.punct(next, "?") {
		return
	}
	whenTrue, afterTrue, ok := l.requireCall(next + 1)
	if !ok || !l.punct(afterTrue, ":") {
		return
	}
	whenFalse, afterFalse, ok := l.requireCall(afterTrue + 1)
	if !ok || !l.endsExpression(afterFalse) {
		return
	}
	trueOffset, falseOffset := l.peek(next+3).Start, l.peek(afterTrue+3).Start
	switch branch {
	case envTaken:
		l.emit(whenTrue, true, certainty, ShapeEnvTernary, trueOffset)
	case envDead:
		l.emit(whenFalse, true, certainty, ShapeEnvTernary, falseOffset)
	default:
		l.emit(whenTrue, true, Conditional, ShapeEnvTernary, trueOffset)
		l.emit(whenFalse, true, Conditional, ShapeEnvTernary, falseOffset)
	}
}

func (l *lexer) detectObject() {
	if !l.punct(1, ".") || !l.punct(3, "(") {
		return
	}
	certainty := l.certainty()
	switch l.peek(2).Text(l.code) {
	case "defineProperty":
		target, ok := l.exportsRef(4)
		if !ok || !l.punct(target, ",") || !l.punct(target+2, ",") {
			return
		}
		if name, ok := l.str(target + 1); ok {
			l.emit(name, false, certainty, ShapeDefine, l.peek(target+1).Start)
		}
	case "defineProperties":
		target, ok := l.exportsRef(4)
		if ok && l.punct(target, ",") && l.punct(target+1, "{") {
			l.objectLiteral(target+1, certainty, ShapeDefineBulk)
		}
	case "assign":
		target, ok := l.exportsRef(4)
		if ok && l.punct(target, ",") {
			l.copyArgs(target+1, certainty)
		}
	case "keys":
		l.detectKeysForEach(certainty)
	}
}

// detectKeysForEach matches the Babel reexport loop
// `Object.keys(_a).forEach(function (k) { ... exports ... })`.
func (l *lexer) detectKeysForEach(certainty Certainty) {
	spec, next, ok := l.requireRef(4)
	if !ok || !l.punct(next, ")") || !l.punct(next+1, ".") || !l.ident(next+2, "forEach") || !l.punct(next+3, "(") {
		return
	}
	end, closed := l.balanced(next + 3)
	if !closed {
		return
	}
	for k := next + 4; k < end; k++ {
		if l.ident(k, "exports") {
			l.emit(spec, true, certainty, ShapeKeysForEach, l.peek(4).Start)
			return
		}
	}
}

// detectStarHelper handles transpiler helpers that copy every export of a
// required module onto exports.
func (l *lexer) detectStarHelper(helper string) {
	if !l.punct(1, "(") {
		return
	}
	if _, closed := l.balanced(1); !closed {
		return
	}
	certainty := l.certainty()
	targeted := helper == "__export" || helper == "__reExport"
	type source struct {
		spec   string
		offset int
	}
	var sources []source
	var literals []int
	k := 2
	for !l.punct(k, ")") && l.peek(k).Kind != TokenEOF {
		if spec, next, ok := l.requireRef(k); ok && l.endsArgument(next) {
			sources = append(sources, source{spec: spec, offset: l.peek(k).Start})
			k = next
		} else if next, ok := l.exportsRef(k); ok && l.endsArgument(next) {
			targeted = true
			k = next
		} else if l.punct(k, "{") {
			literals = append(literals, k)
			k = l.skipBalanced(k)
		} else {
			k = l.skipItem(k)
		}
		if l.punct(k, ",") {
			k++
		}
	}
	if !targeted {
		return
	}
	for _, src := range sources {
		l.emit(src.spec, true, certainty, ShapeStarHelper, src.offset)
	}
	for _, start := range literals {
		l.objectLiteral(start, certainty, ShapeStarHelper)
	}
}

// detectBinding records `NAME = require("S")` or `NAME = helper(require("S"))`
// with NAME at i. Any other assignment forgets NAME.
func (l *lexer) detectBinding(i int) {
	nameTok := l.peek(i)
	if nameTok.Kind != TokenIdentifier || !l.punct(i+1, "=") {
		return
	}
	name := nameTok.Text(l.code)
	if name == "exports" || name == "module" {
		return
	}
	if spec, next, ok := l.requireCall(i + 2); ok && l.endsExpression(next) {
		l.bindings[name] = spec
		return
	}
	if l.peek(i+2).Kind == TokenIdentifier && l.punct(i+3, "(") {
		if spec, _, ok := l.requireCall(i + 4); ok && l.endsExpression(l.skipBalanced(i+3)) {
			l.bindings[name] = spec
			return
		}
	}
	delete(l.bindings, name)
}

func (l *lexer) objectLiteral(i int, certainty Certainty, shape Shape) int {
	code := l.code
	k := i + 1
	for {
		tok := l.peek(k)
		switch {
		case tok.Kind == TokenEOF:
			return k
		case l.punct(k, "}"):
			return k + 1
		case l.punct(k, ","):
			k++
			continue
		case l.punct(k, "..."):
			if spec, next, ok := l.requireRef(k + 1); ok && l.endsArgument(next) {
				l.emit(spec, true, certainty, shape, l.peek(k+1).Start)
				k = next
			} else {
				k = l.skipExpression(k + 1)
			}
			continue
		}

		if l.isAccessorModifier(k) {
			k++
		}
		if l.punct(k, "*") {
			k++
		}

		key := l.peek(k)
		var name string
		named, shorthand := false, false
		switch {
		case key.isName():
			name, named = key.Text(code), true
			shorthand = key.Kind == TokenIdentifier
			k++
		case key.Kind == TokenString || key.Kind == TokenTemplate:
			name, named = l.str(k)
			k++
		case l.punct(k, "["):
			k = l.skipBalanced(k)
		default:
			k = l.skipItem(k)
			continue
		}

		switch {
		case l.punct(k, ":"):
			k = l.skipExpression(k + 1)
		case l.punct(k, "("):
			k = l.skipBalanced(k)
			if l.punct(k, "{") {
				k = l.skipBalanced(k)
			}
		case l.punct(k, ",") || l.punct(k, "}"):
			named = named && shorthand
		default:
			k = l.skipExpression(k)
			named = false
		}
		if named {
			l.emit(name, false, certainty, shape, key.Start)
		}
	}
}

func (l *lexer) isAccessorModifier(k int) bool {
	tok := l.peek(k)
	if tok.Kind != TokenIdentifier {
		return false
	}
	switch tok.Text(l.code) {
	case "get", "set", "async":
	default:
		return false
	}
	next := l.peek(k + 1)
	if next.Kind == TokenPunctuator {
		return next.isPunct(l.code, "*") || next.isPunct(l.code, "[")
	}
	return next.isName() || next.Kind == TokenString
}

func (l *lexer) copyArgs(k int, certainty Certainty) {
	for !l.punct(k, ")") && l.peek(k).Kind != TokenEOF {
		if spec, next, ok := l.requireRef(k); ok && l.endsArgument(next) {
			l.emit(spec, true, certainty, ShapeObjectAssign, l.peek(k).Start)
			k = next
		} else if l.punct(k, "{") {
			k = l.objectLiteral(k, certainty, ShapeObjectAssign)
		} else {
			k = l.skipItem(k)
		}
		if l.punct(k, ",") {
			k++
		}
	}
}
