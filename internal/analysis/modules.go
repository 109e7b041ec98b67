package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/cjslexer/internal/esm"
	"github.com/ben-ranford/cjslexer/internal/report"
	"github.com/ben-ranford/cjslexer/internal/resolve"
	"github.com/ben-ranford/cjslexer/internal/safeio"
	"github.com/ben-ranford/cjslexer/pkg/cjslexer"
	"github.com/tidwall/jsonc"
)

var ErrNativeAddon = errors.New("native addons have no static exports")

// loadModule reads path and returns its export surface. The loader is picked
// by extension; a .js file without CommonJS findings falls back to ESM when
// it has import or export statements.
func (w *Walker) loadModule(ctx context.Context, path string, cfg cjslexer.Config) (report.Module, error) {
	module := report.Module{Path: path, Exports: []string{}, Reexports: []string{}}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".node" {
		module.Kind = report.ModuleAddon
		return module, fmt.Errorf("%w: %s", ErrNativeAddon, path)
	}

	content, err := safeio.ReadSource(path)
	if err != nil {
		return module, fmt.Errorf("read %s: %w", path, err)
	}

	switch {
	case ext == ".json":
		module.Kind = report.ModuleJSON
		module.Exports, err = jsonKeys(content)
		if err != nil {
			return module, fmt.Errorf("parse %s: %w", path, err)
		}
		return module, nil
	case ext == ".mjs" || (ext == ".js" && resolve.PackageType(path) == "module"):
		return w.loadESM(ctx, module, content)
	}

	result, err := cjslexer.ParseBytes(path, content, cfg)
	if err != nil {
		return module, err
	}
	module.Kind = report.ModuleCommonJS
	module.Exports = result.Exports
	module.Reexports = result.Reexports
	if !result.Empty() || !esm.Supported(path) {
		return module, nil
	}

	esmModule, err := w.loadESM(ctx, module, content)
	if err != nil || esmModule.Kind != report.ModuleESM {
		return module, nil
	}
	return esmModule, nil
}

func (w *Walker) loadESM(ctx context.Context, module report.Module, content []byte) (report.Module, error) {
	surface, err := w.ESM.Parse(ctx, module.Path, content)
	if err != nil {
		return module, err
	}
	if !surface.Module && module.Kind != "" {
		return module, nil
	}
	module.Kind = report.ModuleESM
	module.Exports = surface.Exports
	module.Reexports = surface.Reexports
	return module, nil
}

func jsonKeys(content []byte) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(content)))
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0)
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return keys, nil
	}
	seen := make(map[string]struct{})
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", token)
		}
		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			return nil, err
		}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}
