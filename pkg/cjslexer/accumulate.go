package cjslexer

type Certainty uint8

const (
	Definite Certainty = iota
	Conditional
)

func (c Certainty) String() string {
	if c == Conditional {
		return "conditional"
	}
	return "definite"
}

func (c Certainty) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type Shape string

const (
	ShapeAssign        Shape = "assign"
	ShapeComputed      Shape = "computed"
	ShapeDefine        Shape = "define-property"
	ShapeDefineBulk    Shape = "define-properties"
	ShapeReassign      Shape = "reassign"
	ShapeObjectLiteral Shape = "object-literal"
	ShapeObjectAssign  Shape = "object-assign"
	ShapeBinding       Shape = "binding"
	ShapeKeysForEach   Shape = "keys-foreach"
	ShapeStarHelper    Shape = "star-helper"
	ShapeEnvTernary    Shape = "env-ternary"
)

// Candidate is one detection. Superseded candidates were gathered before an
// unconditional reassignment of module.exports and do not reach the result.
type Candidate struct {
	Name       string    `json:"name"`
	Reexport   bool      `json:"reexport"`
	Certainty  Certainty `json:"certainty"`
	Shape      Shape     `json:"shape"`
	Offset     int       `json:"offset"`
	Superseded bool      `json:"superseded,omitempty"`
}

type accumulator struct {
	findings []Candidate
}

func (a *accumulator) add(c Candidate) {
	a.findings = append(a.findings, c)
}

func (a *accumulator) invalidate() {
	for i := range a.findings {
		if !a.findings[i].Reexport {
			a.findings[i].Superseded = true
		}
	}
}

type resolvedName struct {
	name     string
	definite bool
}

// resolve dedupes names in first-occurrence order. A name counts as definite
// when any surviving detection of it is definite.
func (a *accumulator) resolve(dropConditional bool) Result {
	exports := collect(a.findings, false)
	reexports := collect(a.findings, true)
	return Result{
		Exports:   names(exports, dropConditional),
		Reexports: names(reexports, dropConditional),
	}
}

func collect(findings []Candidate, reexport bool) []resolvedName {
	index := make(map[string]int)
	out := make([]resolvedName, 0)
	for _, c := range findings {
		if c.Superseded || c.Reexport != reexport {
			continue
		}
		if i, ok := index[c.Name]; ok {
			if c.Certainty == Definite {
				out[i].definite = true
			}
			continue
		}
		index[c.Name] = len(out)
		out = append(out, resolvedName{name: c.Name, definite: c.Certainty == Definite})
	}
	return out
}

func names(items []resolvedName, dropConditional bool) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if dropConditional && !item.definite {
			continue
		}
		out = append(out, item.name)
	}
	return out
}
