// Package resolve maps module specifiers to files the way Node's require does
// for CommonJS: relative paths, package entries from node_modules, and the
// package.json "exports" field under the node/require/default conditions.
package resolve

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("module not found")

var (
	DefaultConditions = []string{"node", "require", "default"}
	DefaultExtensions = []string{".js", ".cjs", ".json", ".node"}
)

const notFoundErrFmt = "%w: %s"

type Resolver struct {
	Conditions []string
	Extensions []string
}

func New() *Resolver {
	return &Resolver{
		Conditions: append([]string{}, DefaultConditions...),
		Extensions: append([]string{}, DefaultExtensions...),
	}
}

// Resolve returns the file that specifier names. wd is where node_modules
// lookups start, pkgName is the package that "." and "./x" refer to when no
// containing file is given, and containing is the file the specifier appeared
// in, if any.
func (r *Resolver) Resolve(wd, pkgName, specifier, containing string) (string, error) {
	switch {
	case strings.HasPrefix(specifier, "file://"):
		parsed, err := url.Parse(specifier)
		if err != nil {
			return "", fmt.Errorf("parse file url %s: %w", specifier, err)
		}
		return filepath.FromSlash(parsed.Path), nil
	case strings.HasPrefix(specifier, "/") || filepath.IsAbs(specifier):
		return specifier, nil
	case isRelative(specifier) && containing != "":
		target := filepath.Join(filepath.Dir(containing), filepath.FromSlash(specifier))
		if resolved, ok := r.resolvePath(target); ok {
			return resolved, nil
		}
		return "", fmt.Errorf(notFoundErrFmt, ErrNotFound, specifier)
	case specifier == ".." || strings.HasPrefix(specifier, "../"):
		return "", fmt.Errorf(notFoundErrFmt, ErrNotFound, specifier)
	case specifier == ".":
		return r.resolvePackage(wd, pkgName)
	case strings.HasPrefix(specifier, "./"):
		return r.resolvePackage(wd, path.Join(pkgName, specifier))
	default:
		return r.resolvePackage(wd, specifier)
	}
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." || strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// SplitPackage splits a bare request into its package name and the subpath
// inside it, "." for the package root.
func SplitPackage(request string) (string, string, error) {
	if request == "" {
		return "", "", errors.New("specifier is empty")
	}
	parts := strings.SplitN(request, "/", 3)
	name, rest := parts[0], parts[1:]
	if strings.HasPrefix(request, "@") {
		if len(parts) < 2 || parts[1] == "" {
			return "", "", fmt.Errorf("invalid scoped package: %s", request)
		}
		name, rest = parts[0]+"/"+parts[1], parts[2:]
	}
	if len(rest) == 0 || strings.Join(rest, "/") == "" {
		return name, ".", nil
	}
	return name, "./" + strings.Join(rest, "/"), nil
}

func (r *Resolver) resolvePackage(wd, request string) (string, error) {
	name, subpath, err := SplitPackage(request)
	if err != nil {
		return "", err
	}
	dir, err := filepath.Abs(wd)
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	for {
		pkgDir := filepath.Join(dir, "node_modules", filepath.FromSlash(name))
		if info, err := os.Stat(pkgDir); err == nil && info.IsDir() {
			return r.resolveInPackage(pkgDir, subpath)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf(notFoundErrFmt, ErrNotFound, request)
		}
		dir = parent
	}
}

func (r *Resolver) resolveInPackage(pkgDir, subpath string) (string, error) {
	manifest, _, err := readManifest(pkgDir)
	if err != nil {
		return "", err
	}
	if manifest.Exports != nil {
		target, ok := r.matchExports(manifest.Exports, subpath)
		if !ok {
			return "", fmt.Errorf("%w: subpath %s is not exported by %s", ErrNotFound, subpath, pkgDir)
		}
		if resolved, ok := r.resolvePath(filepath.Join(pkgDir, filepath.FromSlash(target))); ok {
			return resolved, nil
		}
		return "", fmt.Errorf(notFoundErrFmt, ErrNotFound, filepath.Join(pkgDir, target))
	}

	target := pkgDir
	if subpath != "." {
		target = filepath.Join(pkgDir, filepath.FromSlash(subpath))
	}
	if resolved, ok := r.resolvePath(target); ok {
		return resolved, nil
	}
	return "", fmt.Errorf(notFoundErrFmt, ErrNotFound, target)
}

func (r *Resolver) resolvePath(target string) (string, bool) {
	if resolved, ok := r.resolveFile(target); ok {
		return resolved, true
	}
	return r.resolveDir(target)
}

func (r *Resolver) resolveFile(target string) (string, bool) {
	if isFile(target) {
		return target, true
	}
	for _, ext := range r.Extensions {
		if candidate := target + ext; isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *Resolver) resolveDir(dir string) (string, bool) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", false
	}
	if manifest, ok, err := readManifest(dir); err == nil && ok && strings.TrimSpace(manifest.Main) != "" {
		main := filepath.Join(dir, filepath.FromSlash(manifest.Main))
		if resolved, ok := r.resolveFile(main); ok {
			return resolved, true
		}
		if resolved, ok := r.resolveFile(filepath.Join(main, "index")); ok {
			return resolved, true
		}
	}
	return r.resolveFile(filepath.Join(dir, "index"))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
