package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xeipuuv/gojsonschema"
)

func TestFormatJSONValidatesAgainstSchema(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "..", "testdata", "report", "report.schema.json"))
	if err != nil {
		t.Fatalf("resolve schema path: %v", err)
	}
	schema := gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(schemaPath))

	cases := map[string]Report{
		"exports": sampleWalkReport(),
		"parse":   sampleParseReport(),
		"batch":   sampleBatchReport(),
	}
	for name, reportData := range cases {
		t.Run(name, func(t *testing.T) {
			formatted, err := NewFormatter().Format(reportData, FormatJSON)
			if err != nil {
				t.Fatalf("format json: %v", err)
			}
			result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(formatted))
			if err != nil {
				t.Fatalf("validate report schema: %v", err)
			}
			if result.Valid() {
				return
			}
			messages := make([]string, 0, len(result.Errors()))
			for _, item := range result.Errors() {
				messages = append(messages, item.String())
			}
			t.Fatalf("report output failed schema validation: %s", strings.Join(messages, "; "))
		})
	}
}

func TestSchemaRejectsDuplicateExports(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "..", "testdata", "report", "report.schema.json"))
	if err != nil {
		t.Fatalf("resolve schema path: %v", err)
	}
	document := `{"schemaVersion": "0.1.0", "command": "batch", "files": [{"path": "a.js", "exports": ["a", "a"], "reexports": []}]}`
	result, err := gojsonschema.Validate(
		gojsonschema.NewReferenceLoader("file://"+filepath.ToSlash(schemaPath)),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		t.Fatalf("validate report schema: %v", err)
	}
	if result.Valid() {
		t.Fatalf("expected duplicate exports to fail validation")
	}
}
