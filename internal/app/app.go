package app

import (
	"context"
	"errors"
	"io"

	"github.com/ben-ranford/cjslexer/internal/analysis"
	"github.com/ben-ranford/cjslexer/internal/config"
	"github.com/ben-ranford/cjslexer/internal/report"
	"github.com/charmbracelet/log"
)

var ErrUnknownMode = errors.New("unknown mode")

type App struct {
	Analyzer  analysis.Analyzer
	Formatter report.Formatter
	Logger    *log.Logger
}

func New(errOut io.Writer) *App {
	logger := log.NewWithOptions(errOut, log.Options{
		Prefix: "cjslexer",
		Level:  log.WarnLevel,
	})
	return &App{
		Analyzer:  analysis.NewService(logger),
		Formatter: report.NewFormatter(),
		Logger:    logger,
	}
}

func (a *App) Execute(ctx context.Context, req Request) (string, error) {
	if req.Verbose {
		a.Logger.SetLevel(log.DebugLevel)
	}
	values, err := a.resolveConfig(req)
	if err != nil {
		return "", err
	}

	var reportData report.Report
	switch req.Mode {
	case ModeParse:
		reportData, err = a.Analyzer.Parse(ctx, analysis.ParseRequest{File: req.File, Config: values})
	case ModeExports:
		reportData, err = a.Analyzer.Exports(ctx, analysis.Request{
			WorkingDir: req.WorkingDir,
			Package:    req.Package,
			Specifier:  req.Specifier,
			Config:     values,
		})
	case ModeBatch:
		reportData, err = a.Analyzer.Batch(ctx, analysis.BatchRequest{Files: req.Files, Config: values})
	default:
		return "", ErrUnknownMode
	}
	if err != nil {
		return "", err
	}
	return a.Formatter.Format(reportData, req.Format)
}

func (a *App) resolveConfig(req Request) (config.Values, error) {
	loaded, err := config.Load(req.WorkingDir, req.ConfigPath)
	if err != nil {
		return config.Values{}, err
	}
	if loaded.ConfigPath != "" {
		a.Logger.Debug("loaded config", "path", loaded.ConfigPath)
	}
	overrides := loaded.Overrides.Merge(req.Overrides)
	values := overrides.Apply(config.Defaults())
	if err := values.Validate(); err != nil {
		return config.Values{}, err
	}
	return values, nil
}
