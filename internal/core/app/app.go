// Package app ties a workspace on disk to an analysis.WorldState and exposes
// the operations the command line drives.
package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"crateview/internal/analysis"
	"crateview/internal/core/config"
	"crateview/internal/core/errors"
	"crateview/internal/core/ports"
	"crateview/internal/engine/syntax"
	"crateview/internal/shared/observability"
	"crateview/internal/shared/util"
	"crateview/internal/workspace"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Update is emitted after every batch of changes the watcher applies.
type Update struct {
	Reports   []FileReport
	FileCount int
	Changed   int
}

// FileReport lists the diagnostics of one file.
type FileReport struct {
	File        ports.FileID
	Path        string
	Text        string
	Lines       *syntax.LineIndex
	Diagnostics []analysis.Diagnostic
}

type App struct {
	Config    *config.Config
	Files     *workspace.FileSet
	State     *analysis.WorldState
	SessionID string

	filter  *workspace.Filter
	limiter *util.Limiter

	configMu      sync.RWMutex
	updateMu      sync.RWMutex
	onUpdate      func(Update)
	activeWatcher *workspace.Watcher
}

// New prepares an App rooted at root. Nothing is read until InitialScan.
func New(cfg *config.Config, root string) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	files, err := workspace.NewFileSet(root)
	if err != nil {
		return nil, err
	}
	filter, err := workspace.NewFilter(cfg.Index.Extensions, cfg.Watch.ExcludeDirs, cfg.Watch.ExcludeFiles)
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:    cfg,
		Files:     files,
		State:     analysis.NewWorldState(analysis.WithWorkers(cfg.Index.Workers)),
		SessionID: uuid.NewString(),
		filter:    filter,
		limiter:   util.NewLimiter(cfg.Watch.MaxRechecksPerSecond, cfg.Watch.Burst),
	}
	slog.Debug("app created", "session", a.SessionID, "root", files.Root())
	return a, nil
}

// InitialScan loads every matching file under the root and returns the
// number of files loaded.
func (a *App) InitialScan(ctx context.Context) (int, error) {
	ctx, span := observability.Tracer.Start(ctx, "App.InitialScan",
		trace.WithAttributes(attribute.String("root", a.Files.Root())))
	defer span.End()

	changes, err := a.Files.Load(a.filter)
	if err != nil {
		return 0, errors.AddContext(err, errors.CtxOperation, "initial_scan")
	}
	a.State.ApplyChanges(ctx, changes)
	slog.Info("initial scan complete", "session", a.SessionID, "files", len(changes))
	return len(changes), nil
}

// Snapshot forks the current state. Callers must Close the result.
func (a *App) Snapshot() *analysis.World {
	return a.State.Fork(a.Files)
}

// Check computes diagnostics for ids, or for every file when ids is empty.
// Files without diagnostics are omitted. Reports come back in path order.
func (a *App) Check(ctx context.Context, ids ...ports.FileID) ([]FileReport, error) {
	ctx, span := observability.Tracer.Start(ctx, "App.Check")
	defer span.End()

	world := a.Snapshot()
	defer world.Close()
	if len(ids) == 0 {
		ids = world.Files()
	}

	var reports []FileReport
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		diags, err := world.Diagnostics(ctx, id)
		if err != nil {
			return reports, err
		}
		if len(diags) == 0 {
			continue
		}
		report, err := a.report(world, id)
		if err != nil {
			return reports, err
		}
		report.Diagnostics = diags
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })
	return reports, nil
}

func (a *App) report(world *analysis.World, id ports.FileID) (FileReport, error) {
	text, err := world.FileText(id)
	if err != nil {
		return FileReport{}, err
	}
	lines, err := world.FileLineIndex(id)
	if err != nil {
		return FileReport{}, err
	}
	path, _ := a.Files.Path(id)
	return FileReport{File: id, Path: path, Text: text, Lines: lines}, nil
}

// FileID maps a path, absolute or relative to the working directory, to the
// id of a loaded file.
func (a *App) FileID(path string) (ports.FileID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeValidationError, "resolve path")
	}
	rel, err := a.Files.Rel(abs)
	if err != nil {
		return 0, err
	}
	id, ok := a.Files.Lookup(rel)
	if !ok {
		return 0, errors.NotFound("file is not part of the workspace", errors.CtxPath, path)
	}
	return id, nil
}

// Offset parses a position within id. Positions are either a byte offset
// ("120") or a one-based line and column ("7:12").
func (a *App) Offset(id ports.FileID, pos string) (uint32, error) {
	line, col, isLineCol := strings.Cut(pos, ":")
	if !isLineCol {
		n, err := strconv.ParseUint(pos, 10, 32)
		if err != nil {
			return 0, errors.Wrap(err, errors.CodeValidationError, "invalid offset")
		}
		return uint32(n), nil
	}
	l, err := strconv.ParseUint(line, 10, 32)
	if err != nil || l == 0 {
		return 0, errors.AddContext(errors.New(errors.CodeValidationError, "invalid line"), errors.CtxOffset, pos)
	}
	c, err := strconv.ParseUint(col, 10, 32)
	if err != nil || c == 0 {
		return 0, errors.AddContext(errors.New(errors.CodeValidationError, "invalid column"), errors.CtxOffset, pos)
	}

	world := a.Snapshot()
	defer world.Close()
	lines, err := world.FileLineIndex(id)
	if err != nil {
		return 0, err
	}
	return lines.Offset(syntax.LineCol{Line: uint32(l - 1), Col: uint32(c - 1)}), nil
}

// UpdateConfig applies the reloadable parts of cfg: watcher debounce and the
// recheck rate.
func (a *App) UpdateConfig(cfg *config.Config) {
	a.configMu.Lock()
	a.Config = cfg
	a.configMu.Unlock()

	a.limiter.SetRate(cfg.Watch.MaxRechecksPerSecond, cfg.Watch.Burst)
	if a.activeWatcher != nil {
		a.activeWatcher.SetDebounce(cfg.Watch.Debounce)
	}
	slog.Info("configuration applied", "session", a.SessionID,
		"debounce", cfg.Watch.Debounce, "max_rechecks_per_second", cfg.Watch.MaxRechecksPerSecond)
}

func (a *App) config() *config.Config {
	a.configMu.RLock()
	defer a.configMu.RUnlock()
	return a.Config
}

// SetUpdateHandler registers fn to receive watcher updates.
func (a *App) SetUpdateHandler(fn func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = fn
}

func (a *App) emitUpdate(u Update) {
	a.updateMu.RLock()
	fn := a.onUpdate
	a.updateMu.RUnlock()
	if fn != nil {
		fn(u)
	}
}
