package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ben-ranford/cjslexer/pkg/cjslexer"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const SchemaVersion = "0.1.0"

var ErrUnknownFormat = errors.New("unknown format")

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, value)
	}
}

type Command string

const (
	CommandParse   Command = "parse"
	CommandExports Command = "exports"
	CommandBatch   Command = "batch"
)

type Report struct {
	SchemaVersion string   `json:"schemaVersion"`
	Command       Command  `json:"command"`
	Walk          *Walk    `json:"walk,omitempty"`
	Files         []File   `json:"files,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

type File struct {
	Path      string               `json:"path"`
	Exports   []string             `json:"exports"`
	Reexports []string             `json:"reexports"`
	Findings  []cjslexer.Candidate `json:"findings,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type ModuleKind string

const (
	ModuleCommonJS ModuleKind = "commonjs"
	ModuleESM      ModuleKind = "esm"
	ModuleJSON     ModuleKind = "json"
	ModuleAddon    ModuleKind = "addon"
)

type Module struct {
	Path      string     `json:"path"`
	Kind      ModuleKind `json:"kind"`
	Exports   []string   `json:"exports"`
	Reexports []string   `json:"reexports"`
}

// Walk is the export surface of a package entry with its reexports followed.
// External is set when the entry defers entirely to one outside package.
type Walk struct {
	Specifier string   `json:"specifier"`
	Entry     string   `json:"entry"`
	Exports   []string `json:"exports"`
	External  string   `json:"external,omitempty"`
	Modules   []Module `json:"modules"`
}
