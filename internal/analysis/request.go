package analysis

import "github.com/ben-ranford/cjslexer/internal/config"

// Request selects one package entry to walk.
type Request struct {
	WorkingDir string
	// Package names the package "." and "./sub" refer to.
	Package   string
	Specifier string
	Config    config.Values
}

type BatchRequest struct {
	Files  []string
	Config config.Values
}

type ParseRequest struct {
	File   string
	Config config.Values
}
