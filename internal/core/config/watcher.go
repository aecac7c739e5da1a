package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a configuration file when it changes and hands each
// applicable revision to a callback.
//
// A revision is delivered only when it loads, validates and changes a
// reloadable setting. The delivered config keeps the settings that need a
// restart at their running values; changes to those are only logged.
type Watcher struct {
	path     string
	callback func(*Config)

	mu      sync.Mutex
	current *Config

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher watches path. current is the configuration already in effect;
// nil means defaults.
func NewWatcher(path string, current *Config, callback func(*Config)) *Watcher {
	if current == nil {
		current = Default()
	}
	return &Watcher{
		path:     path,
		callback: callback,
		current:  current,
		stop:     make(chan struct{}),
	}
}

// Start begins watching until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Atomic saves rename over the file, so the directory is watched.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	w.wg.Add(1)
	go w.run(ctx, fsw)
	slog.Info("config watcher started", "path", w.path)
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, w.reload)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)

		case <-w.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

// Current returns the last configuration delivered.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Watcher) reload() {
	next, err := Load(w.path)
	if err != nil {
		slog.Error("config reload rejected", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	changes := Diff(w.current, next)
	applied := w.current.withReloadable(next)
	if len(changes.Reloadable) > 0 {
		w.current = applied
	}
	w.mu.Unlock()

	if len(changes.Restart) > 0 {
		slog.Warn("config changes need a restart", "path", w.path, "keys", changes.Restart)
	}
	if len(changes.Reloadable) == 0 {
		slog.Debug("config reload had nothing to apply", "path", w.path)
		return
	}
	slog.Info("configuration reloaded", "path", w.path, "keys", changes.Reloadable)
	if w.callback != nil {
		w.callback(applied)
	}
}
