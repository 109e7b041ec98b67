// Package safeio reads configuration, manifests and module sources through
// os.Root, so a symlink or `..` segment cannot escape the directory a read
// is scoped to.
package safeio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxSourceBytes caps a single module source read by ReadSource.
const MaxSourceBytes = 32 << 20

var ErrTooLarge = errors.New("file exceeds size limit")

// IsUnder reports whether targetPath lies inside rootDir.
func IsUnder(rootDir, targetPath string) bool {
	_, ok := relativeUnder(rootDir, targetPath)
	return ok
}

func relativeUnder(rootDir, targetPath string) (string, bool) {
	rel, err := filepath.Rel(rootDir, targetPath)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", false
	}
	return filepath.Clean(rel), true
}

func ReadFileUnder(rootDir, targetPath string) ([]byte, error) {
	rootAbs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, fmt.Errorf("resolve target path: %w", err)
	}
	rel, ok := relativeUnder(rootAbs, targetAbs)
	if !ok {
		return nil, fmt.Errorf("path escapes root: %s", targetPath)
	}
	return readInRoot(rootAbs, rel, -1)
}

func ReadFile(targetPath string) ([]byte, error) {
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, fmt.Errorf("resolve target path: %w", err)
	}
	return readInRoot(filepath.Dir(targetAbs), filepath.Base(targetAbs), -1)
}

// ReadSource reads a module file, failing with ErrTooLarge past MaxSourceBytes.
func ReadSource(targetPath string) ([]byte, error) {
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, fmt.Errorf("resolve target path: %w", err)
	}
	return readInRoot(filepath.Dir(targetAbs), filepath.Base(targetAbs), MaxSourceBytes)
}

func readInRoot(rootDir, name string, limit int64) ([]byte, error) {
	root, err := os.OpenRoot(rootDir)
	if err != nil {
		return nil, fmt.Errorf("open root: %w", err)
	}
	defer root.Close()

	file, err := root.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if limit < 0 {
		return io.ReadAll(file)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, name, limit)
	}
	return data, nil
}
