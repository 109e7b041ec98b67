package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ben-ranford/cjslexer/internal/analysis"
	"github.com/ben-ranford/cjslexer/internal/config"
	"github.com/ben-ranford/cjslexer/internal/report"
	"github.com/ben-ranford/cjslexer/internal/testutil"
)

const unexpectedErrFmt = "unexpected error: %v"

type fakeAnalyzer struct {
	report      report.Report
	err         error
	lastParse   analysis.ParseRequest
	lastExports analysis.Request
	lastBatch   analysis.BatchRequest
	calls       []string
}

func (f *fakeAnalyzer) Parse(_ context.Context, req analysis.ParseRequest) (report.Report, error) {
	f.calls = append(f.calls, "parse")
	f.lastParse = req
	return f.report, f.err
}

func (f *fakeAnalyzer) Exports(_ context.Context, req analysis.Request) (report.Report, error) {
	f.calls = append(f.calls, "exports")
	f.lastExports = req
	return f.report, f.err
}

func (f *fakeAnalyzer) Batch(_ context.Context, req analysis.BatchRequest) (report.Report, error) {
	f.calls = append(f.calls, "batch")
	f.lastBatch = req
	return f.report, f.err
}

func newTestApp(analyzer *fakeAnalyzer) (*App, *bytes.Buffer) {
	var logs bytes.Buffer
	application := New(&logs)
	application.Analyzer = analyzer
	return application, &logs
}

func TestExecuteDispatchesModes(t *testing.T) {
	analyzer := &fakeAnalyzer{report: report.Report{Command: report.CommandParse, Files: []report.File{{Path: "a.js", Exports: []string{"x"}, Reexports: []string{}}}}}
	application, _ := newTestApp(analyzer)
	wd := t.TempDir()

	for _, mode := range []Mode{ModeParse, ModeExports, ModeBatch} {
		req := DefaultRequest()
		req.WorkingDir = wd
		req.Mode = mode
		req.File = "a.js"
		req.Specifier = "pkg"
		req.Package = "pkg"
		req.Files = []string{"a.js", "b.js"}
		if _, err := application.Execute(context.Background(), req); err != nil {
			t.Fatalf(unexpectedErrFmt, err)
		}
	}
	if strings.Join(analyzer.calls, ",") != "parse,exports,batch" {
		t.Fatalf("unexpected dispatch order: %#v", analyzer.calls)
	}
	if analyzer.lastExports.WorkingDir != wd || analyzer.lastExports.Specifier != "pkg" || analyzer.lastExports.Package != "pkg" {
		t.Fatalf("unexpected exports request: %#v", analyzer.lastExports)
	}
	if len(analyzer.lastBatch.Files) != 2 || analyzer.lastParse.File != "a.js" {
		t.Fatalf("unexpected forwarded files: %#v %#v", analyzer.lastParse, analyzer.lastBatch)
	}
}

func TestExecuteFormatsReport(t *testing.T) {
	analyzer := &fakeAnalyzer{report: report.Report{Command: report.CommandParse, Files: []report.File{{Path: "a.js", Exports: []string{"x"}, Reexports: []string{}}}}}
	application, _ := newTestApp(analyzer)

	req := DefaultRequest()
	req.WorkingDir = t.TempDir()
	req.Mode = ModeParse
	output, err := application.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf(unexpectedErrFmt, err)
	}
	if output != "exports: x\nreexports: -" {
		t.Fatalf("unexpected output %q", output)
	}

	req.Format = report.FormatJSON
	output, err = application.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf(unexpectedErrFmt, err)
	}
	if !strings.Contains(output, `"command": "parse"`) {
		t.Fatalf("expected json output, got %q", output)
	}
}

func TestExecuteLayersConfig(t *testing.T) {
	wd := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(wd, ".cjslexer.yml"), "node_env: development\ncall_mode: true\nconcurrency: 2\n")

	analyzer := &fakeAnalyzer{report: report.Report{Command: report.CommandBatch}}
	application, logs := newTestApp(analyzer)

	concurrency := 5
	req := DefaultRequest()
	req.WorkingDir = wd
	req.Mode = ModeBatch
	req.Verbose = true
	req.Files = []string{"a.js"}
	req.Overrides = config.Overrides{Concurrency: &concurrency}
	if _, err := application.Execute(context.Background(), req); err != nil {
		t.Fatalf(unexpectedErrFmt, err)
	}

	values := analyzer.lastBatch.Config
	if values.NodeEnv != "development" || !values.CallMode || values.Concurrency != 5 {
		t.Fatalf("expected file config with flag override, got %+v", values)
	}
	if !strings.Contains(logs.String(), "loaded config") {
		t.Fatalf("expected debug log about config, got %q", logs.String())
	}
}

func TestExecuteErrors(t *testing.T) {
	analysisErr := errors.New("boom")
	application, _ := newTestApp(&fakeAnalyzer{err: analysisErr})

	req := DefaultRequest()
	req.WorkingDir = t.TempDir()
	req.Mode = ModeParse
	if _, err := application.Execute(context.Background(), req); !errors.Is(err, analysisErr) {
		t.Fatalf("expected analyzer error, got %v", err)
	}

	req.Mode = Mode("tui")
	if _, err := application.Execute(context.Background(), req); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected unknown mode error, got %v", err)
	}

	req.Mode = ModeParse
	req.ConfigPath = "missing.yml"
	if _, err := application.Execute(context.Background(), req); err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("expected config error, got %v", err)
	}

	bad := "staging"
	req.ConfigPath = ""
	req.Overrides = config.Overrides{NodeEnv: &bad}
	if _, err := application.Execute(context.Background(), req); err == nil || !strings.Contains(err.Error(), "invalid node_env") {
		t.Fatalf("expected invalid override error, got %v", err)
	}
}
