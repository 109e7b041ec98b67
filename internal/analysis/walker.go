package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/cjslexer/internal/config"
	"github.com/ben-ranford/cjslexer/internal/esm"
	"github.com/ben-ranford/cjslexer/internal/report"
	"github.com/ben-ranford/cjslexer/internal/resolve"
	"github.com/charmbracelet/log"
)

var ErrEmptySpecifier = errors.New("specifier is required")

// Walker follows reexports from a package entry and unions the export names
// of every module it reaches.
type Walker struct {
	Resolver *resolve.Resolver
	ESM      *esm.Parser
	Logger   *log.Logger
}

func NewWalker(logger *log.Logger) *Walker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Walker{
		Resolver: resolve.New(),
		ESM:      esm.NewParser(),
		Logger:   logger,
	}
}

type pendingModule struct {
	specifier  string
	containing string
}

type walkState struct {
	walk     report.Walk
	warnings []string
	visited  map[string]struct{}
	exported map[string]struct{}
}

func (s *walkState) warn(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func (s *walkState) addExports(names []string) {
	for _, name := range names {
		if _, ok := s.exported[name]; ok {
			continue
		}
		s.exported[name] = struct{}{}
		s.walk.Exports = append(s.walk.Exports, name)
	}
}

// Walk resolves req.Specifier and follows its reexports depth first, in the
// order each module lists them. Only a failure on the entry module is an
// error; later resolution or read failures become warnings.
func (w *Walker) Walk(ctx context.Context, req Request) (report.Walk, []string, error) {
	specifier := strings.TrimSpace(req.Specifier)
	if specifier == "" {
		return report.Walk{}, nil, ErrEmptySpecifier
	}
	external, err := config.CompileExternal(req.Config.External)
	if err != nil {
		return report.Walk{}, nil, err
	}
	engineConfig := req.Config.Engine()

	state := &walkState{
		walk:     report.Walk{Specifier: specifier, Exports: []string{}, Modules: []report.Module{}},
		warnings: []string{},
		visited:  make(map[string]struct{}),
		exported: make(map[string]struct{}),
	}
	stack := []pendingModule{{specifier: specifier}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return report.Walk{}, nil, err
		}
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		entry := next.containing == ""

		path, err := w.resolve(req, next)
		if err != nil {
			if entry {
				return report.Walk{}, nil, fmt.Errorf("resolve %s: %w", next.specifier, err)
			}
			w.Logger.Debug("unresolved reexport", "specifier", next.specifier, "from", next.containing, "error", err)
			state.warn("cannot resolve %s from %s: %v", next.specifier, next.containing, err)
			continue
		}
		if _, ok := state.visited[path]; ok {
			continue
		}
		state.visited[path] = struct{}{}
		if entry {
			state.walk.Entry = path
		}

		module, err := w.loadModule(ctx, path, engineConfig)
		if err != nil {
			if entry && !errors.Is(err, ErrNativeAddon) {
				return report.Walk{}, nil, err
			}
			w.Logger.Warn("skipped module", "path", path, "error", err)
			state.warn("skipped %s: %v", path, err)
			continue
		}
		w.Logger.Debug("parsed module", "path", path, "kind", module.Kind, "exports", len(module.Exports), "reexports", len(module.Reexports))
		state.walk.Modules = append(state.walk.Modules, module)
		state.addExports(module.Exports)

		if entry && len(state.walk.Exports) == 0 && len(module.Reexports) == 1 && isOutsidePackage(module.Reexports[0], req.Package) {
			state.walk.External = module.Reexports[0]
			w.Logger.Debug("entry defers to external package", "specifier", state.walk.External)
		}

		for i := len(module.Reexports) - 1; i >= 0; i-- {
			reexport := module.Reexports[i]
			if resolve.IsBuiltin(reexport) {
				w.Logger.Debug("skipped builtin reexport", "specifier", reexport, "from", path)
				continue
			}
			if external.Match(reexport) {
				w.Logger.Debug("skipped external reexport", "specifier", reexport, "from", path)
				continue
			}
			stack = append(stack, pendingModule{specifier: reexport, containing: path})
		}
	}
	return state.walk, state.warnings, nil
}

func (w *Walker) resolve(req Request, next pendingModule) (string, error) {
	if next.containing == "" {
		return w.Resolver.Resolve(req.WorkingDir, req.Package, next.specifier, "")
	}
	return w.Resolver.Resolve(filepath.Dir(next.containing), req.Package, next.specifier, next.containing)
}

func isOutsidePackage(specifier, pkgName string) bool {
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") || filepath.IsAbs(specifier) {
		return false
	}
	if pkgName != "" && (specifier == pkgName || strings.HasPrefix(specifier, pkgName+"/")) {
		return false
	}
	return !resolve.IsBuiltin(specifier)
}
