// Package cjslexer detects the named exports and reexports of a CommonJS module
// from its source text, without executing it.
//
// The engine is a single forward pass: a lenient scanner feeds a brace tracker
// and a fixed catalog of idiom detectors, and an accumulator applies the
// reporting policy. Calls share no state and may run concurrently.
package cjslexer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	NodeEnvDevelopment = "development"
	NodeEnvProduction  = "production"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrInvalidSource = errors.New("source is not valid UTF-8")
)

// Config tunes a single Parse call.
type Config struct {
	// NodeEnv, when set, makes `process.env.NODE_ENV` comparisons static and
	// drops the branch that environment never takes.
	NodeEnv string
	// CallMode enables star-export helper calls such as __exportStar.
	CallMode bool
	// DropConditional omits names only ever found under a runtime guard.
	DropConditional bool
}

func (c Config) Validate() error {
	switch c.NodeEnv {
	case "", NodeEnvDevelopment, NodeEnvProduction:
		return nil
	default:
		return fmt.Errorf("%w: unsupported node env %q", ErrInvalidConfig, c.NodeEnv)
	}
}

type Result struct {
	Exports   []string `json:"exports"`
	Reexports []string `json:"reexports"`
}

func (r Result) Empty() bool {
	return len(r.Exports) == 0 && len(r.Reexports) == 0
}

// Analysis is a Result together with every detection behind it.
type Analysis struct {
	Result
	Findings []Candidate `json:"findings"`
}

func emptyResult() Result {
	return Result{Exports: []string{}, Reexports: []string{}}
}

// Parse returns the exports and reexports of the CommonJS module in code.
// filename only labels errors. Malformed JavaScript never fails; it yields
// fewer (possibly no) names.
func Parse(filename, code string, cfg Config) (Result, error) {
	analysis, err := ParseDetailed(filename, code, cfg)
	return analysis.Result, err
}

func ParseBytes(filename string, code []byte, cfg Config) (Result, error) {
	return Parse(filename, string(code), cfg)
}

func ParseDetailed(filename, code string, cfg Config) (Analysis, error) {
	if err := cfg.Validate(); err != nil {
		return Analysis{Result: emptyResult(), Findings: []Candidate{}}, fmt.Errorf("parse %s: %w", filename, err)
	}
	if !utf8.ValidString(code) {
		return Analysis{Result: emptyResult(), Findings: []Candidate{}}, fmt.Errorf("parse %s: %w", filename, ErrInvalidSource)
	}

	l := newLexer(code, cfg)
	l.run()

	findings := make([]Candidate, len(l.acc.findings))
	copy(findings, l.acc.findings)
	return Analysis{Result: l.acc.resolve(cfg.DropConditional), Findings: findings}, nil
}

type sigToken struct {
	Token
	newline bool
}

type lexer struct {
	code    string
	cfg     Config
	scanner *Scanner
	tracker *tracker
	acc     accumulator

	queue []sigToken
	done  bool
	pos int
	// runs caches balanced scans that reached EOF, keyed by the absolute
	// index of each opener they crossed.
	runs map[int]balancedRun

	// bindings maps top-level names to the specifier they were required from.
	bindings map[string]string
}

func newLexer(code string, cfg Config) *lexer {
	return &lexer{
		code:     code,
		cfg:      cfg,
		scanner:  NewScanner(code),
		tracker:  newTracker(code),
		bindings: make(map[string]string),
	}
}

func (l *lexer) run() {
	for {
		tok := l.peek(0)
		if tok.Kind == TokenEOF {
			return
		}
		l.tracker.Begin(tok)
		l.detect(tok)
		l.advance()
	}
}

func (l *lexer) fill(n int) {
	for len(l.queue) <= n && !l.done {
		newline := false
		for {
			tok := l.scanner.Next()
			if tok.Kind == TokenLineTerminator {
				newline = true
				continue
			}
			if tok.Kind == TokenComment {
				if strings.ContainsAny(tok.Text(l.code), "\n\r") {
					newline = true
				}
				continue
			}
			l.queue = append(l.queue, sigToken{Token: tok, newline: newline})
			if tok.Kind == TokenEOF {
				l.done = true
			}
			break
		}
	}
}

func (l *lexer) peek(i int) sigToken {
	l.fill(i)
	if i < len(l.queue) {
		return l.queue[i]
	}
	return l.queue[len(l.queue)-1]
}

func (l *lexer) advance() {
	tok := l.peek(0)
	next := l.peek(1)
	l.tracker.Observe(tok, next)
	l.queue = l.queue[1:]
	l.pos++
}

func (l *lexer) certainty() Certainty {
	if l.tracker.IsConditional() {
		return Conditional
	}
	return Definite
}

func (l *lexer) emit(name string, reexport bool, certainty Certainty, shape Shape, offset int) {
	l.acc.add(Candidate{
		Name:      name,
		Reexport:  reexport,
		Certainty: certainty,
		Shape:     shape,
		Offset:    offset,
	})
}

func (l *lexer) envComparison(i int) (envBranch, int, bool) {
	var value, op string
	var ok bool
	switch {
	case l.isNodeEnvRef(i):
		op = l.peek(i + 5).Text(l.code)
		value, ok = l.str(i + 6)
	case l.isNodeEnvRef(i + 2):
		op = l.peek(i + 1).Text(l.code)
		value, ok = l.str(i)
	}
	if !ok {
		return envUnknown, i, false
	}
	next := i + 7

	var equal bool
	switch op {
	case "===", "==":
		equal = true
	case "!==", "!=":
		equal = false
	default:
		return envUnknown, i, false
	}
	if l.cfg.NodeEnv == "" {
		return envUnknown, next, true
	}
	if (value == l.cfg.NodeEnv) == equal {
		return envTaken, next, true
	}
	return envDead, next, true
}

func (l *lexer) isNodeEnvRef(i int) bool {
	return l.ident(i, "process") && l.punct(i+1, ".") && l.ident(i+2, "env") &&
		l.punct(i+3, ".") && l.ident(i+4, "NODE_ENV")
}
