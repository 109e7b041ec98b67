// Package config loads cjslexer settings from a project file. YAML, TOML and
// JSON (comments allowed) are accepted; unknown keys are rejected.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/cjslexer/internal/safeio"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	readConfigFileErrFmt = "read config file %s: %w"
	parseConfigErrFmt    = "parse config file %s: %w"
)

var configFileNames = []string{".cjslexer.yml", ".cjslexer.yaml", ".cjslexer.toml", "cjslexer.json"}

type LoadResult struct {
	Overrides  Overrides
	Resolved   Values
	ConfigPath string
}

// Load finds the config for wd, or reads explicitPath when given, and resolves
// it over Defaults. No file is not an error.
func Load(wd, explicitPath string) (LoadResult, error) {
	wdAbs, err := filepath.Abs(wd)
	if err != nil {
		return LoadResult{}, fmt.Errorf("resolve working directory: %w", err)
	}
	explicitProvided := strings.TrimSpace(explicitPath) != ""

	configPath, found, err := resolveConfigPath(wdAbs, strings.TrimSpace(explicitPath))
	if err != nil {
		return LoadResult{}, err
	}
	if !found {
		return LoadResult{Resolved: Defaults()}, nil
	}

	data, err := readConfigFile(wdAbs, configPath, explicitProvided)
	if err != nil {
		return LoadResult{}, fmt.Errorf(readConfigFileErrFmt, configPath, err)
	}
	raw, err := parseConfig(configPath, data)
	if err != nil {
		return LoadResult{}, fmt.Errorf(parseConfigErrFmt, configPath, err)
	}
	overrides := raw.toOverrides()
	if err := overrides.Validate(); err != nil {
		return LoadResult{}, fmt.Errorf(parseConfigErrFmt, configPath, err)
	}
	resolved := overrides.Apply(Defaults())
	if err := resolved.Validate(); err != nil {
		return LoadResult{}, fmt.Errorf(parseConfigErrFmt, configPath, err)
	}
	return LoadResult{Overrides: overrides, Resolved: resolved, ConfigPath: configPath}, nil
}

func resolveConfigPath(wd, explicitPath string) (string, bool, error) {
	if explicitPath != "" {
		candidate := explicitPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(wd, candidate)
		}
		candidate = filepath.Clean(candidate)
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file not found: %s", candidate)
			}
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
		return candidate, true, nil
	}

	for _, name := range configFileNames {
		candidate := filepath.Join(wd, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !os.IsNotExist(err) {
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
	}
	return "", false, nil
}

func readConfigFile(wd, path string, explicitProvided bool) ([]byte, error) {
	if !explicitProvided || safeio.IsUnder(wd, path) {
		return safeio.ReadFileUnder(wd, path)
	}
	return safeio.ReadFile(path)
}

type rawConfig struct {
	NodeEnv         *string  `yaml:"node_env" json:"node_env" toml:"node_env"`
	CallMode        *bool    `yaml:"call_mode" json:"call_mode" toml:"call_mode"`
	DropConditional *bool    `yaml:"drop_conditional" json:"drop_conditional" toml:"drop_conditional"`
	Concurrency     *int     `yaml:"concurrency" json:"concurrency" toml:"concurrency"`
	External        []string `yaml:"external" json:"external" toml:"external"`
}

func parseConfig(path string, data []byte) (rawConfig, error) {
	var cfg rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid JSON config: %w", err)
		}
		if decoder.More() {
			return rawConfig{}, fmt.Errorf("invalid JSON config: multiple JSON values")
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid TOML config: %w", err)
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return cfg, nil
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid YAML config: %w", err)
		}
	}
	return cfg, nil
}

func (c *rawConfig) toOverrides() Overrides {
	overrides := Overrides{
		CallMode:        c.CallMode,
		DropConditional: c.DropConditional,
		Concurrency:     c.Concurrency,
		External:        normalizePatterns(c.External),
	}
	if c.NodeEnv != nil {
		nodeEnv := strings.ToLower(strings.TrimSpace(*c.NodeEnv))
		overrides.NodeEnv = &nodeEnv
	}
	return overrides
}

func normalizePatterns(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(patterns))
	normalized := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(pattern)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
