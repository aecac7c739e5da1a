package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, content string) (string, chan *Config) {
	t.Helper()
	path := writeConfig(t, content)
	current, err := Load(path)
	require.NoError(t, err)

	reloaded := make(chan *Config, 4)
	w := NewWatcher(path, current, func(cfg *Config) { reloaded <- cfg })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))
	t.Cleanup(w.Stop)
	return path, reloaded
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path, reloaded := startWatcher(t, "[search]\nmode = \"fuzzy\"\n")

	require.NoError(t, os.WriteFile(path, []byte("[search]\nmode = \"exact\"\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "exact", cfg.Search.Mode)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatcherKeepsCallbackOffOnInvalidConfig(t *testing.T) {
	path, reloaded := startWatcher(t, "")

	require.NoError(t, os.WriteFile(path, []byte("[search]\nmode = \"regex\"\n"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("invalid config must not be delivered")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherIgnoresRestartOnlyChanges(t *testing.T) {
	path, reloaded := startWatcher(t, "[index]\nworkers = 2\n")

	require.NoError(t, os.WriteFile(path, []byte("[index]\nworkers = 8\n"), 0o644))

	select {
	case cfg := <-reloaded:
		t.Fatalf("restart-only change delivered: %+v", cfg.Index)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherKeepsRestartSettingsAtRunningValues(t *testing.T) {
	path, reloaded := startWatcher(t, "[index]\nextensions = [\".rs\"]\n")

	require.NoError(t, os.WriteFile(path, []byte("[index]\nextensions = [\".rs\", \".rs.in\"]\n[search]\nmode = \"prefix\"\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "prefix", cfg.Search.Mode)
		assert.Equal(t, []string{".rs"}, cfg.Index.Extensions)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestDiff(t *testing.T) {
	old := Default()
	assert.True(t, Diff(old, Default()).Empty())

	next := Default()
	next.Search.DefaultLimit = 5
	next.Watch.Burst = 3
	next.Watch.Paths = []string{"src"}
	next.Observability.MetricsAddr = ":9090"

	got := Diff(old, next)
	assert.Equal(t, []string{"search.default_limit", "watch.burst"}, got.Reloadable)
	assert.Equal(t, []string{"watch.paths", "observability.metrics_addr"}, got.Restart)
}
