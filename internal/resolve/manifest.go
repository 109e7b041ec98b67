package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ben-ranford/cjslexer/internal/safeio"
	"github.com/tidwall/jsonc"
)

type packageManifest struct {
	Name    string      `json:"name"`
	Main    string      `json:"main"`
	Type    string      `json:"type"`
	Exports *exportsNode `json:"exports"`
}

func readManifest(dir string) (packageManifest, bool, error) {
	data, err := safeio.ReadFileUnder(dir, filepath.Join(dir, "package.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return packageManifest{}, false, nil
		}
		return packageManifest{}, false, fmt.Errorf("read %s: %w", filepath.Join(dir, "package.json"), err)
	}
	var manifest packageManifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &manifest); err != nil {
		return packageManifest{}, false, fmt.Errorf("parse %s: %w", filepath.Join(dir, "package.json"), err)
	}
	return manifest, true, nil
}

// PackageType returns the "type" field of the nearest package.json above
// file, or "" when there is none.
func PackageType(file string) string {
	dir := filepath.Dir(file)
	for {
		if manifest, ok, err := readManifest(dir); err == nil && ok {
			return manifest.Type
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (r *Resolver) matchExports(exports *exportsNode, subpath string) (string, bool) {
	if exports.kind != exportsObject || !exports.isSubpathMap() {
		if subpath != "." {
			return "", false
		}
		return r.conditionTarget(*exports)
	}

	if value, ok := exports.entries[subpath]; ok {
		return r.conditionTarget(value)
	}

	patterns := make([]string, 0)
	for _, key := range exports.keys {
		if strings.Count(key, "*") == 1 {
			patterns = append(patterns, key)
		}
	}
	slices.SortStableFunc(patterns, func(a, b string) int {
		return strings.Index(b, "*") - strings.Index(a, "*")
	})
	for _, key := range patterns {
		prefix, suffix, _ := strings.Cut(key, "*")
		if len(subpath) < len(prefix)+len(suffix) || !strings.HasPrefix(subpath, prefix) || !strings.HasSuffix(subpath, suffix) {
			continue
		}
		match := subpath[len(prefix) : len(subpath)-len(suffix)]
		target, ok := r.conditionTarget(exports.entries[key])
		if !ok {
			return "", false
		}
		return strings.ReplaceAll(target, "*", match), true
	}
	return "", false
}

// conditionTarget takes the first condition, in the order the package lists
// them, that the resolver accepts. Arrays yield their first usable entry;
// null excludes the subpath.
func (r *Resolver) conditionTarget(node exportsNode) (string, bool) {
	switch node.kind {
	case exportsString:
		return node.target, strings.TrimSpace(node.target) != ""
	case exportsArray:
		for _, item := range node.items {
			if target, ok := r.conditionTarget(item); ok {
				return target, true
			}
		}
	case exportsObject:
		for _, key := range node.keys {
			if !slices.Contains(r.Conditions, key) {
				continue
			}
			if target, ok := r.conditionTarget(node.entries[key]); ok {
				return target, true
			}
		}
	}
	return "", false
}
