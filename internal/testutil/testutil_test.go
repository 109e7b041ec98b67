package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestCanceledContextIsDone(t *testing.T) {
	ctx := CanceledContext()
	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected canceled context")
	}
}

func TestWriteHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "index.js")

	MustWriteFile(t, path, "exports.a = 1")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if got := string(data); got != "exports.a = 1" {
		t.Fatalf("unexpected content: %q", got)
	}

	tempPath := WriteTempFile(t, "temp.js", "x")
	if info, err := os.Stat(tempPath); err != nil {
		t.Fatalf("stat temp file: %v", err)
	} else if got := info.Mode().Perm(); got != 0o644 {
		t.Fatalf("expected 0644, got %o", got)
	}
}

func TestWriteNumberedModules(t *testing.T) {
	dir := t.TempDir()
	paths := WriteNumberedModules(t, dir, 12, func(i int) string {
		return "exports.x = 1"
	})
	if len(paths) != 12 {
		t.Fatalf("expected 12 paths, got %d", len(paths))
	}
	if filepath.Base(paths[0]) != "m00.js" || filepath.Base(paths[11]) != "m11.js" {
		t.Fatalf("expected zero-padded names in order, got %s and %s", paths[0], paths[11])
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
	}
}

func TestFatalPathsViaHelperProcess(t *testing.T) {
	t.Parallel()
	for _, tc := range []string{
		"mkdir-failure",
		"write-failure",
	} {
		t.Run(tc, func(t *testing.T) {
			cmd := exec.Command(os.Args[0], "-test.run=TestHelperFatalPath", "--", tc)
			cmd.Env = append(os.Environ(), "TESTUTIL_FATAL_HELPER=1")
			err := cmd.Run()
			if err == nil {
				t.Fatalf("expected helper to fail for scenario %s", tc)
			}
			if _, ok := err.(*exec.ExitError); !ok {
				t.Fatalf("expected ExitError, got %T: %v", err, err)
			}
		})
	}
}

func TestHelperFatalPath(t *testing.T) {
	if os.Getenv("TESTUTIL_FATAL_HELPER") != "1" {
		return
	}
	if len(os.Args) < 2 {
		t.Fatal("missing helper scenario")
	}
	scenario := os.Args[len(os.Args)-1]

	switch scenario {
	case "mkdir-failure":
		dir := t.TempDir()
		parentFile := filepath.Join(dir, "parent")
		if err := os.WriteFile(parentFile, []byte("x"), 0o600); err != nil {
			t.Fatalf("setup parent file: %v", err)
		}
		MustWriteFileMode(t, filepath.Join(parentFile, "child.js"), "x", 0o600)
	case "write-failure":
		dir := t.TempDir()
		MustWriteFileMode(t, dir, "x", 0o600)
	default:
		t.Fatalf("unknown helper scenario %q", scenario)
	}
}
