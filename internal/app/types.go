package app

import (
	"github.com/ben-ranford/cjslexer/internal/config"
	"github.com/ben-ranford/cjslexer/internal/report"
)

type Mode string

const (
	ModeParse   Mode = "parse"
	ModeExports Mode = "exports"
	ModeBatch   Mode = "batch"
)

type Request struct {
	Mode       Mode
	WorkingDir string
	ConfigPath string
	Verbose    bool
	Format     report.Format
	// Overrides holds settings given on the command line; they win over the
	// config file.
	Overrides config.Overrides

	File      string
	Specifier string
	Package   string
	Files     []string
}

func DefaultRequest() Request {
	return Request{
		WorkingDir: ".",
		Format:     report.FormatText,
	}
}
