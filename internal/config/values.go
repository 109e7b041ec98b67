package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ben-ranford/cjslexer/pkg/cjslexer"
	"github.com/gobwas/glob"
)

const (
	NodeEnvNone            = "none"
	DefaultNodeEnv         = cjslexer.NodeEnvProduction
	DefaultCallMode        = false
	DefaultDropConditional = false
	MaxConcurrency         = 256
)

var nodeEnvValues = []string{cjslexer.NodeEnvProduction, cjslexer.NodeEnvDevelopment, NodeEnvNone}

type Values struct {
	NodeEnv         string
	CallMode        bool
	DropConditional bool
	Concurrency     int
	External        []string
}

type Overrides struct {
	NodeEnv         *string
	CallMode        *bool
	DropConditional *bool
	Concurrency     *int
	External        []string
}

func Defaults() Values {
	return Values{
		NodeEnv:         DefaultNodeEnv,
		CallMode:        DefaultCallMode,
		DropConditional: DefaultDropConditional,
		Concurrency:     DefaultConcurrency(),
	}
}

func DefaultConcurrency() int {
	return clampConcurrency(runtime.GOMAXPROCS(0))
}

func clampConcurrency(procs int) int {
	return max(1, min(procs, MaxConcurrency))
}

func (v *Values) Validate() error {
	if err := validateNodeEnv(v.NodeEnv); err != nil {
		return err
	}
	if err := validateConcurrency(v.Concurrency); err != nil {
		return err
	}
	if _, err := CompileExternal(v.External); err != nil {
		return err
	}
	return nil
}

func (v *Values) Engine() cjslexer.Config {
	nodeEnv := v.NodeEnv
	if nodeEnv == NodeEnvNone {
		nodeEnv = ""
	}
	return cjslexer.Config{
		NodeEnv:         nodeEnv,
		CallMode:        v.CallMode,
		DropConditional: v.DropConditional,
	}
}

func (o *Overrides) Apply(base Values) Values {
	resolved := base
	if o.NodeEnv != nil {
		resolved.NodeEnv = *o.NodeEnv
	}
	if o.CallMode != nil {
		resolved.CallMode = *o.CallMode
	}
	if o.DropConditional != nil {
		resolved.DropConditional = *o.DropConditional
	}
	if o.Concurrency != nil {
		resolved.Concurrency = *o.Concurrency
	}
	if o.External != nil {
		resolved.External = append([]string{}, o.External...)
	}
	return resolved
}

func (o *Overrides) Validate() error {
	if o.NodeEnv != nil {
		if err := validateNodeEnv(*o.NodeEnv); err != nil {
			return err
		}
	}
	if o.Concurrency != nil {
		if err := validateConcurrency(*o.Concurrency); err != nil {
			return err
		}
	}
	if _, err := CompileExternal(o.External); err != nil {
		return err
	}
	return nil
}

func (o Overrides) Merge(higher Overrides) Overrides {
	merged := o
	if higher.NodeEnv != nil {
		merged.NodeEnv = higher.NodeEnv
	}
	if higher.CallMode != nil {
		merged.CallMode = higher.CallMode
	}
	if higher.DropConditional != nil {
		merged.DropConditional = higher.DropConditional
	}
	if higher.Concurrency != nil {
		merged.Concurrency = higher.Concurrency
	}
	if higher.External != nil {
		merged.External = append([]string{}, higher.External...)
	}
	return merged
}

func validateNodeEnv(value string) error {
	for _, allowed := range nodeEnvValues {
		if value == allowed {
			return nil
		}
	}
	return fmt.Errorf("invalid node_env: %q (must be one of: %s)", value, strings.Join(nodeEnvValues, ", "))
}

func validateConcurrency(value int) error {
	if value < 1 || value > MaxConcurrency {
		return fmt.Errorf("invalid concurrency: %d (must be between 1 and %d)", value, MaxConcurrency)
	}
	return nil
}

// ExternalMatcher reports specifiers the reexport walk must not follow.
type ExternalMatcher struct {
	globs []glob.Glob
}

// CompileExternal compiles glob patterns with `/` as the separator, so `*`
// stays inside one path segment and `**` crosses them.
func CompileExternal(patterns []string) (ExternalMatcher, error) {
	matcher := ExternalMatcher{}
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(pattern)
		if trimmed == "" {
			continue
		}
		compiled, err := glob.Compile(trimmed, '/')
		if err != nil {
			return ExternalMatcher{}, fmt.Errorf("invalid external pattern %q: %w", pattern, err)
		}
		matcher.globs = append(matcher.globs, compiled)
	}
	return matcher, nil
}

func (m ExternalMatcher) Match(specifier string) bool {
	for _, g := range m.globs {
		if g.Match(specifier) {
			return true
		}
	}
	return false
}
