package config

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ben-ranford/cjslexer/internal/testutil"
	"github.com/ben-ranford/cjslexer/pkg/cjslexer"
)

const (
	loadConfigErrFmt = "load config: %v"
	ymlConfigName    = ".cjslexer.yml"
	tomlConfigName   = ".cjslexer.toml"
	jsonConfigName   = "cjslexer.json"
)

func TestLoadNoConfigFile(t *testing.T) {
	result, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf(loadConfigErrFmt, err)
	}
	if result.ConfigPath != "" {
		t.Fatalf("expected no config path, got %q", result.ConfigPath)
	}
	defaults := Defaults()
	if result.Resolved.NodeEnv != defaults.NodeEnv || result.Resolved.Concurrency != defaults.Concurrency {
		t.Fatalf("expected defaults when no config file, got %+v", result.Resolved)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	wd := t.TempDir()
	cfg := strings.Join([]string{"node_env: Development", "call_mode: true", "concurrency: 3", "external:", "  - react", "  - '@types/*'", "  - react", ""}, "\n")
	testutil.MustWriteFile(t, filepath.Join(wd, ymlConfigName), cfg)

	result, err := Load(wd, "")
	if err != nil {
		t.Fatalf(loadConfigErrFmt, err)
	}
	if !strings.HasSuffix(result.ConfigPath, ymlConfigName) {
		t.Fatalf("expected %s path, got %q", ymlConfigName, result.ConfigPath)
	}
	resolved := result.Resolved
	if resolved.NodeEnv != cjslexer.NodeEnvDevelopment || !resolved.CallMode || resolved.Concurrency != 3 {
		t.Fatalf("unexpected resolved values: %+v", resolved)
	}
	if !slices.Equal(resolved.External, []string{"react", "@types/*"}) {
		t.Fatalf("expected deduped external patterns, got %#v", resolved.External)
	}
}

func TestLoadTOMLConfig(t *testing.T) {
	wd := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(wd, tomlConfigName), "node_env = \"none\"\ndrop_conditional = true\n")

	result, err := Load(wd, "")
	if err != nil {
		t.Fatalf(loadConfigErrFmt, err)
	}
	if result.Resolved.NodeEnv != NodeEnvNone || !result.Resolved.DropConditional {
		t.Fatalf("unexpected resolved values: %+v", result.Resolved)
	}
	engine := result.Resolved.Engine()
	if engine.NodeEnv != "" || !engine.DropConditional {
		t.Fatalf("expected none to disable pruning, got %+v", engine)
	}
}

func TestLoadJSONConfigWithComments(t *testing.T) {
	wd := t.TempDir()
	cfg := `{
  // production bundles only
  "node_env": "production",
  "external": ["lodash/**"],
}`
	testutil.MustWriteFile(t, filepath.Join(wd, jsonConfigName), cfg)

	result, err := Load(wd, "")
	if err != nil {
		t.Fatalf(loadConfigErrFmt, err)
	}
	matcher, err := CompileExternal(result.Resolved.External)
	if err != nil {
		t.Fatalf("compile external: %v", err)
	}
	if !matcher.Match("lodash/fp/map") || matcher.Match("lodash-es") {
		t.Fatalf("unexpected external matching for %#v", result.Resolved.External)
	}
}

func TestLoadPrefersYAMLOverJSON(t *testing.T) {
	wd := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(wd, ymlConfigName), "call_mode: true\n")
	testutil.MustWriteFile(t, filepath.Join(wd, jsonConfigName), `{"call_mode": false}`)

	result, err := Load(wd, "")
	if err != nil {
		t.Fatalf(loadConfigErrFmt, err)
	}
	if !result.Resolved.CallMode {
		t.Fatalf("expected yaml config to win, got %+v", result.Resolved)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	wd := t.TempDir()
	outside := filepath.Join(t.TempDir(), "shared.yaml")
	testutil.MustWriteFile(t, outside, "concurrency: 2\n")

	result, err := Load(wd, outside)
	if err != nil {
		t.Fatalf(loadConfigErrFmt, err)
	}
	if result.ConfigPath != outside || result.Resolved.Concurrency != 2 {
		t.Fatalf("unexpected explicit load result: %+v", result)
	}

	if _, err := Load(wd, "missing.yml"); err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("expected missing config error, got %v", err)
	}
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	cases := map[string]struct {
		name    string
		content string
		want    string
	}{
		"unknown yaml key":  {ymlConfigName, "nodeenv: production\n", "invalid YAML config"},
		"unknown toml key":  {tomlConfigName, "callmode = true\n", "invalid TOML config"},
		"unknown json key":  {jsonConfigName, `{"mode": "x"}`, "invalid JSON config"},
		"multiple json":     {jsonConfigName, `{} {}`, "multiple JSON values"},
		"bad node env":      {ymlConfigName, "node_env: staging\n", "invalid node_env"},
		"bad concurrency":   {ymlConfigName, "concurrency: 0\n", "invalid concurrency"},
		"bad glob":          {ymlConfigName, "external: ['[']\n", "invalid external pattern"},
		"huge concurrency":  {tomlConfigName, "concurrency = 100000\n", "invalid concurrency"},
		"wrong yaml type":   {ymlConfigName, "call_mode: [1]\n", "invalid YAML config"},
		"wrong toml type":   {tomlConfigName, "concurrency = \"many\"\n", "invalid TOML config"},
		"wrong json type":   {jsonConfigName, `{"drop_conditional": "yes"}`, "invalid JSON config"},
		"empty json":        {jsonConfigName, ``, "invalid JSON config"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			wd := t.TempDir()
			testutil.MustWriteFile(t, filepath.Join(wd, tc.name), tc.content)
			_, err := Load(wd, "")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestEmptyYAMLUsesDefaults(t *testing.T) {
	wd := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(wd, ymlConfigName), "\n")
	result, err := Load(wd, "")
	if err != nil {
		t.Fatalf(loadConfigErrFmt, err)
	}
	if result.Resolved.NodeEnv != DefaultNodeEnv {
		t.Fatalf("expected default node env, got %q", result.Resolved.NodeEnv)
	}
}
