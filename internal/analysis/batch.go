package analysis

import (
	"context"
	"fmt"

	"github.com/ben-ranford/cjslexer/internal/config"
	"github.com/ben-ranford/cjslexer/internal/report"
	"github.com/ben-ranford/cjslexer/internal/safeio"
	"github.com/ben-ranford/cjslexer/pkg/cjslexer"
	"golang.org/x/sync/errgroup"
)

// Batch parses every file with the engine on a bounded pool of goroutines.
// Results keep input order. A file that cannot be read or parsed carries its
// error on its entry; only cancellation fails the batch.
func Batch(ctx context.Context, req BatchRequest) ([]report.File, error) {
	cfg := req.Config.Engine()
	limit := req.Config.Concurrency
	if limit < 1 {
		limit = config.DefaultConcurrency()
	}

	files := make([]report.File, len(req.Files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i, path := range req.Files {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			files[i] = parseFile(path, cfg, false)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

func parseFile(path string, cfg cjslexer.Config, detailed bool) report.File {
	file := report.File{Path: path, Exports: []string{}, Reexports: []string{}}
	content, err := safeio.ReadSource(path)
	if err != nil {
		file.Error = fmt.Sprintf("read %s: %v", path, err)
		return file
	}
	analysis, err := cjslexer.ParseDetailed(path, string(content), cfg)
	if err != nil {
		file.Error = err.Error()
		return file
	}
	file.Exports = analysis.Exports
	file.Reexports = analysis.Reexports
	if detailed {
		file.Findings = analysis.Findings
	}
	return file
}
