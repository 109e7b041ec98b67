package analysis

import (
	"context"
	"errors"
	"io"

	"github.com/ben-ranford/cjslexer/internal/report"
	"github.com/charmbracelet/log"
)

var ErrNoFiles = errors.New("no files to parse")

type Analyzer interface {
	Parse(ctx context.Context, req ParseRequest) (report.Report, error)
	Exports(ctx context.Context, req Request) (report.Report, error)
	Batch(ctx context.Context, req BatchRequest) (report.Report, error)
}

type Service struct {
	Walker *Walker
	Logger *log.Logger
}

func NewService(logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		Walker: NewWalker(logger),
		Logger: logger,
	}
}

// Parse runs the engine over one file and keeps the detections behind the
// result. Unlike a batch entry, a read or parse failure is an error.
func (s *Service) Parse(ctx context.Context, req ParseRequest) (report.Report, error) {
	if err := ctx.Err(); err != nil {
		return report.Report{}, err
	}
	if err := req.Config.Validate(); err != nil {
		return report.Report{}, err
	}
	file := parseFile(req.File, req.Config.Engine(), true)
	if file.Error != "" {
		return report.Report{}, errors.New(file.Error)
	}
	s.Logger.Debug("parsed file", "path", req.File, "exports", len(file.Exports), "reexports", len(file.Reexports))
	return report.Report{
		SchemaVersion: report.SchemaVersion,
		Command:       report.CommandParse,
		Files:         []report.File{file},
	}, nil
}

func (s *Service) Exports(ctx context.Context, req Request) (report.Report, error) {
	if err := req.Config.Validate(); err != nil {
		return report.Report{}, err
	}
	walk, warnings, err := s.Walker.Walk(ctx, req)
	if err != nil {
		return report.Report{}, err
	}
	reportData := report.Report{
		SchemaVersion: report.SchemaVersion,
		Command:       report.CommandExports,
		Walk:          &walk,
	}
	if len(warnings) > 0 {
		reportData.Warnings = warnings
	}
	return reportData, nil
}

func (s *Service) Batch(ctx context.Context, req BatchRequest) (report.Report, error) {
	if len(req.Files) == 0 {
		return report.Report{}, ErrNoFiles
	}
	if err := req.Config.Validate(); err != nil {
		return report.Report{}, err
	}
	files, err := Batch(ctx, req)
	if err != nil {
		return report.Report{}, err
	}
	failed := 0
	for _, file := range files {
		if file.Error != "" {
			failed++
		}
	}
	s.Logger.Debug("parsed batch", "files", len(files), "failed", failed)
	return report.Report{
		SchemaVersion: report.SchemaVersion,
		Command:       report.CommandBatch,
		Files:         files,
	}, nil
}
