package cjslexer

type frameKind uint8

const (
	frameRoot frameKind = iota
	frameBrace
	frameParen
	frameBracket
)

type envBranch int8

const (
	envUnknown envBranch = iota
	envTaken
	envDead
)

func (b envBranch) opposite() envBranch {
	switch b {
	case envTaken:
		return envDead
	case envDead:
		return envTaken
	default:
		return envUnknown
	}
}

type statement struct {
	tokens       int
	bodyGuard    bool
	bodyDead     bool
	ifBody       bool
	ifEnv        envBranch
	shortCircuit bool
	arrow        bool
	annotation   bool
}

type frame struct {
	kind        frameKind
	head        string
	env         envBranch
	ifBody      bool
	conditional bool
	function    bool
	dead        bool
	annotation  bool
	doBody      bool
	closesStmt  bool
	stmt        statement
}

type pendingBody struct {
	active bool
	head   string
	env    envBranch
}

func (b pendingBody) awaitsBlock() bool {
	if !b.active {
		return false
	}
	switch b.head {
	case "function", "call":
		return false
	}
	return true
}

type pendingElse struct {
	active bool
	depth  int
	env    envBranch
	block  bool
}

// tracker keeps the nesting stack. Frames are classified when they open from
// the few tokens before them; no symbol table is built.
type tracker struct {
	code  string
	stack []frame

	conditional int
	function    int
	dead        int
	annotation  int

	prev  Token
	prev2 Token
	prev3 Token

	body       pendingBody
	elseBranch pendingElse
	consumed   bool
	classDepth int
	nextIfEnv  envBranch

	// afterDo is set while a closed do body waits for its while; doWhile
	// while that while waits for its condition.
	afterDo bool
	doWhile bool
}

func newTracker(code string) *tracker {
	stack := make([]frame, 1, 16)
	stack[0] = frame{kind: frameRoot}
	return &tracker{code: code, stack: stack, classDepth: -1}
}

func (t *tracker) Depth() int {
	return len(t.stack) - 1
}

func (t *tracker) top() *frame {
	return &t.stack[len(t.stack)-1]
}

func (t *tracker) IsConditional() bool {
	stmt := &t.top().stmt
	return t.conditional > 0 || stmt.bodyGuard || stmt.shortCircuit
}

func (t *tracker) InsideFunction() bool {
	return t.function > 0 || t.top().stmt.arrow
}

func (t *tracker) IsDead() bool {
	return t.dead > 0 || t.top().stmt.bodyDead
}

func (t *tracker) InAnnotation() bool {
	return t.annotation > 0 || t.top().stmt.annotation
}

func (t *tracker) PrevIsMemberAccess() bool {
	return t.prev.isPunct(t.code, ".") || t.prev.isPunct(t.code, "?.")
}

// Begin applies the statement boundaries tok opens: automatic semicolons,
// else branches and pending control bodies. Detectors run after Begin and
// before Observe.
func (t *tracker) Begin(tok sigToken) {
	code := t.code
	if tok.newline && !t.body.awaitsBlock() {
		stmt := &t.top().stmt
		if stmt.tokens > 0 && isExpressionEnd(code, t.prev) && !continuesExpression(code, tok.Token) {
			t.endStatement()
		}
	}

	if t.elseBranch.active {
		pending := t.elseBranch
		t.elseBranch.active = false
		if tok.isKeyword(code, "else") && pending.depth == t.Depth() {
			t.top().stmt.tokens++
			t.expectBody("else", pending.env.opposite())
			t.consumed = true
			return
		}
		if pending.block && pending.depth == t.Depth() {
			t.endStatement()
			t.elseBranch.active = false
		}
	}

	if t.body.active {
		body := t.body
		t.body = pendingBody{}
		if tok.isPunct(code, "{") {
			t.top().stmt.tokens++
			t.pushBody(body)
			t.consumed = true
			return
		}
		t.beginBraceless(body)
	}
}

func (t *tracker) Observe(tok, next sigToken) {
	afterDo, doWhile := t.afterDo, t.doWhile
	t.afterDo, t.doWhile = false, false
	if t.consumed {
		t.consumed = false
		t.shift(tok.Token)
		return
	}
	t.top().stmt.tokens++
	switch tok.Kind {
	case TokenPunctuator:
		t.observePunctuator(tok.Token, doWhile)
	case TokenKeyword:
		if t.PrevIsMemberAccess() {
			break
		}
		if afterDo && tok.isKeyword(t.code, "while") {
			t.doWhile = true
			break
		}
		t.observeKeyword(tok.Token, next)
	}
	t.shift(tok.Token)
}

func (t *tracker) observePunctuator(tok Token, doWhile bool) {
	code := t.code
	switch tok.Text(code) {
	case "{":
		f := frame{kind: frameBrace}
		if t.classDepth == t.Depth() {
			t.classDepth = -1
			f.function = true
		}
		t.push(f)
	case "(":
		f := frame{kind: frameParen, head: t.parenHead()}
		if doWhile {
			f.head = "do-while"
		}
		if f.head == "if" {
			f.env = t.nextIfEnv
			t.nextIfEnv = envUnknown
		}
		t.push(f)
	case "[":
		t.push(frame{kind: frameBracket})
	case "}", ")", "]":
		t.pop()
	case ";":
		t.endStatement()
	case ",":
		stmt := &t.top().stmt
		stmt.shortCircuit = false
		stmt.arrow = false
	case "&&":
		stmt := &t.top().stmt
		if stmt.tokens == 2 && t.prev.is(code, TokenNumeric, "0") {
			stmt.annotation = true
			return
		}
		stmt.shortCircuit = true
	case "||", "??", "?", "&&=", "||=", "??=":
		t.top().stmt.shortCircuit = true
	case "=>":
		t.expectBody("=>", envUnknown)
	}
}

func (t *tracker) observeKeyword(tok Token, next sigToken) {
	switch tok.Text(t.code) {
	case "else":
		t.expectBody("else", envUnknown)
	case "try", "finally", "do":
		t.expectBody(tok.Text(t.code), envUnknown)
	case "catch":
		if next.isPunct(t.code, "{") {
			t.expectBody("catch", envUnknown)
		}
	case "class":
		t.classDepth = t.Depth()
	}
}

func (t *tracker) expectBody(head string, env envBranch) {
	t.body = pendingBody{active: true, head: head, env: env}
}

func (t *tracker) shift(tok Token) {
	t.prev3 = t.prev2
	t.prev2 = t.prev
	t.prev = tok
}

func (t *tracker) parenHead() string {
	code := t.code
	p1, p2, p3 := t.prev, t.prev2, t.prev3
	if p2.isPunct(code, ".") || p2.isPunct(code, "?.") {
		return "call"
	}
	if p1.Kind == TokenKeyword {
		switch word := p1.Text(code); word {
		case "if", "while", "for", "switch", "catch", "with":
			return word
		case "function":
			return "function"
		case "await":
			if p2.isKeyword(code, "for") {
				return "for"
			}
		}
	}
	if p1.isPunct(code, "*") && p2.isKeyword(code, "function") {
		return "function"
	}
	if p1.Kind == TokenIdentifier || (p1.Kind == TokenKeyword && !valueKeywords[p1.Text(code)]) {
		if p2.isKeyword(code, "function") || (p2.isPunct(code, "*") && p3.isKeyword(code, "function")) {
			return "function"
		}
		if p1.Kind == TokenIdentifier {
			return "call"
		}
	}
	return "group"
}

func (t *tracker) pushBody(body pendingBody) {
	f := frame{kind: frameBrace}
	switch body.head {
	case "if", "else":
		switch body.env {
		case envTaken:
		case envDead:
			f.dead = true
		default:
			f.conditional = true
		}
		f.ifBody = body.head == "if"
		f.closesStmt = body.head == "else"
		f.env = body.env
	case "while", "for", "with", "switch":
		f.conditional = true
		f.closesStmt = true
	case "catch", "try":
		f.conditional = true
	case "function", "call", "=>":
		f.function = true
	case "do":
		f.doBody = true
	}
	if t.classDepth == t.Depth() {
		t.classDepth = -1
		f.function = true
	}
	t.push(f)
}

func (t *tracker) beginBraceless(body pendingBody) {
	stmt := &t.top().stmt
	switch body.head {
	case "if", "else":
		switch body.env {
		case envTaken:
		case envDead:
			stmt.bodyDead = true
		default:
			stmt.bodyGuard = true
		}
		if body.head == "if" {
			stmt.ifBody = true
			stmt.ifEnv = body.env
		}
	case "while", "for", "with":
		stmt.bodyGuard = true
	case "=>":
		stmt.arrow = true
	}
}

func (t *tracker) push(f frame) {
	parent := &t.top().stmt
	if parent.bodyGuard || parent.shortCircuit {
		f.conditional = true
	}
	if parent.bodyDead {
		f.dead = true
	}
	if parent.annotation {
		f.annotation = true
	}
	if parent.arrow {
		f.function = true
	}
	t.count(f, 1)
	t.stack = append(t.stack, f)
}

// pop drops the innermost frame whatever the closer was; extra closers are
// ignored.
func (t *tracker) pop() {
	if len(t.stack) == 1 {
		return
	}
	f := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.count(f, -1)
	if t.classDepth > t.Depth() {
		t.classDepth = -1
	}

	switch f.kind {
	case frameParen:
		switch f.head {
		case "if", "while", "for", "with", "catch", "switch", "function", "call":
			t.body = pendingBody{active: true, head: f.head, env: f.env}
		}
	case frameBrace:
		if f.ifBody {
			t.elseBranch = pendingElse{active: true, depth: t.Depth(), env: f.env, block: true}
		}
		if f.closesStmt {
			t.endStatement()
		}
		t.afterDo = f.doBody
	}
}

func (t *tracker) count(f frame, delta int) {
	if f.conditional {
		t.conditional += delta
	}
	if f.function {
		t.function += delta
	}
	if f.dead {
		t.dead += delta
	}
	if f.annotation {
		t.annotation += delta
	}
}

func (t *tracker) endStatement() {
	f := t.top()
	if f.stmt.ifBody {
		t.elseBranch = pendingElse{active: true, depth: t.Depth(), env: f.stmt.ifEnv}
	}
	f.stmt = statement{}
}

func isExpressionEnd(code string, tok Token) bool {
	switch tok.Kind {
	case TokenIdentifier, TokenNumeric, TokenString, TokenRegex:
		return true
	case TokenTemplate:
		text := tok.Text(code)
		return len(text) > 1 && text[len(text)-1] == '`'
	case TokenKeyword:
		return valueKeywords[tok.Text(code)]
	case TokenPunctuator:
		switch tok.Text(code) {
		case ")", "]", "}", "++", "--":
			return true
		}
	}
	return false
}

func continuesExpression(code string, tok Token) bool {
	switch tok.Kind {
	case TokenPunctuator:
		switch tok.Text(code) {
		case ".", "?.", "&&", "||", "??", "?", ":", ",", "=", "==", "===", "!=", "!==",
			"*", "/", "%", "<", ">", "<=", ">=", "&", "|", "^", "=>", "**", "<<", ">>", ">>>",
			"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "&&=", "||=", "??=":
			return true
		}
	case TokenKeyword:
		switch tok.Text(code) {
		case "in", "instanceof":
			return true
		}
	}
	return false
}
