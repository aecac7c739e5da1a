package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"crateview/internal/workspace"
)

// StartWatcher watches the workspace root and rechecks the workspace after
// every debounced batch of changes. The watcher stops when ctx is done.
func (a *App) StartWatcher(ctx context.Context) error {
	cfg := a.config()
	w, err := workspace.NewWatcher(cfg.Watch.Debounce, a.filter, func(paths []string) {
		a.HandleChanges(ctx, paths)
	})
	if err != nil {
		return err
	}
	a.activeWatcher = w

	roots := make([]string, 0, len(cfg.Watch.Paths))
	for _, p := range cfg.Watch.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(a.Files.Root(), p)
		}
		roots = append(roots, p)
	}
	if err := w.Watch(roots); err != nil {
		w.Close()
		return err
	}

	go func() {
		<-ctx.Done()
		if err := w.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
	}()
	return nil
}

// HandleChanges reloads paths into the world state and rechecks every file,
// since a module declaration in one file affects diagnostics in others.
// Rechecks are rate limited.
func (a *App) HandleChanges(ctx context.Context, paths []string) {
	slog.Info("detected changes", "session", a.SessionID, "count", len(paths))
	start := time.Now()

	changes := a.Files.ChangesFor(paths)
	a.State.ApplyChanges(ctx, changes)

	if err := a.limiter.Wait(ctx, 1); err != nil {
		slog.Debug("recheck skipped", "error", err)
		return
	}
	reports, err := a.Check(ctx)
	if err != nil {
		slog.Error("recheck failed", "error", err)
		return
	}

	world := a.Snapshot()
	fileCount := len(world.Files())
	world.Close()

	slog.Info("recheck complete",
		"session", a.SessionID,
		"changed", len(changes),
		"files_with_diagnostics", len(reports),
		"duration", time.Since(start))
	a.emitUpdate(Update{Reports: reports, FileCount: fileCount, Changed: len(changes)})
}
