package esm

import (
	"context"
	"slices"
	"testing"
)

func mustParse(t *testing.T, path, source string) Surface {
	t.Helper()
	surface, err := NewParser().Parse(context.Background(), path, []byte(source))
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return surface
}

func TestParseExportForms(t *testing.T) {
	source := `
import dep from "dep"
export const a = 1, { b, c: renamed, ...rest } = obj, [d = 2] = list
export function fn() {}
export class Widget {}
export { local as alias, other }
export * as ns from "./ns.js"
export * from "./all.js"
export default function named() {}
`
	surface := mustParse(t, "index.mjs", source)
	if !surface.Module {
		t.Fatalf("expected module source")
	}
	wantExports := []string{"a", "b", "renamed", "rest", "d", "fn", "Widget", "alias", "other", "ns", "default"}
	if !slices.Equal(surface.Exports, wantExports) {
		t.Fatalf("unexpected exports: %#v", surface.Exports)
	}
	if !slices.Equal(surface.Reexports, []string{"./all.js"}) {
		t.Fatalf("unexpected reexports: %#v", surface.Reexports)
	}
}

func TestParseIgnoresNestedStatements(t *testing.T) {
	surface := mustParse(t, "lib.js", "function f() { const exportsLike = 1 }\nmodule.exports = f\n")
	if surface.Module {
		t.Fatalf("expected CommonJS source not to be a module")
	}
	if len(surface.Exports) != 0 || len(surface.Reexports) != 0 {
		t.Fatalf("expected empty surface, got %#v", surface)
	}
}

func TestParseDedupes(t *testing.T) {
	surface := mustParse(t, "dup.mjs", "export { a }\nexport { a as a }\nexport * from 'x'\nexport * from 'x'\n")
	if !slices.Equal(surface.Exports, []string{"a"}) {
		t.Fatalf("unexpected exports: %#v", surface.Exports)
	}
	if !slices.Equal(surface.Reexports, []string{"x"}) {
		t.Fatalf("unexpected reexports: %#v", surface.Reexports)
	}
}

func TestParseRejectsUnsupportedExtension(t *testing.T) {
	if _, err := NewParser().Parse(context.Background(), "types.d.ts", []byte("export {}")); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if Supported("data.json") {
		t.Fatalf("expected json to be unsupported")
	}
}
