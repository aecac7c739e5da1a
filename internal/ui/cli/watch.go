package cli

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"crateview/internal/core/app"
	"crateview/internal/core/config"
	"crateview/internal/ui/report"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *cliOptions) *cobra.Command {
	var ui bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recheck the workspace whenever files change",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&ui, "ui", false, "Show diagnostics in an interactive terminal view")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return opts.withSession(func(ctx context.Context, s *session) error {
			if ui {
				return runUI(ctx, opts, s)
			}
			return runWatch(ctx, opts, s)
		})(cmd, args)
	}
	return cmd
}

func runWatch(ctx context.Context, opts *cliOptions, s *session) error {
	var outMu sync.Mutex
	render := func(u app.Update) {
		outMu.Lock()
		defer outMu.Unlock()
		report.Update(opts.stdout, u)
	}

	initial, err := currentUpdate(ctx, s.app)
	if err != nil {
		return err
	}
	render(initial)

	stop, err := startWatching(ctx, s, render)
	if err != nil {
		return err
	}
	defer stop()

	slog.Info("watching for changes", "session", s.app.SessionID, "root", s.app.Files.Root())
	<-ctx.Done()
	slog.Info("watcher stopped", "session", s.app.SessionID)
	return nil
}

// runUI drives the watch loop through a bubbletea program. Logging is cut
// down to errors so it does not tear the alternate screen.
func runUI(ctx context.Context, opts *cliOptions, s *session) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(opts.stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	p := tea.NewProgram(initialModel(s.app.Files.Root()),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(opts.stdout))

	stop, err := startWatching(ctx, s, func(u app.Update) { p.Send(updateMsg(u)) })
	if err != nil {
		return err
	}
	defer stop()

	go func() {
		initial, err := currentUpdate(ctx, s.app)
		if err != nil {
			slog.Error("initial check failed", "error", err)
			return
		}
		p.Send(updateMsg(initial))
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func currentUpdate(ctx context.Context, a *app.App) (app.Update, error) {
	reports, err := a.Check(ctx)
	if err != nil {
		return app.Update{}, err
	}
	world := a.Snapshot()
	defer world.Close()
	return app.Update{Reports: reports, FileCount: len(world.Files())}, nil
}

// startWatching routes rechecks to onUpdate and starts the file watcher, the
// observability server and config hot reload. The returned func stops the
// latter two.
func startWatching(ctx context.Context, s *session, onUpdate func(app.Update)) (func(), error) {
	s.app.SetUpdateHandler(onUpdate)
	if err := s.app.StartWatcher(ctx); err != nil {
		return nil, err
	}

	var stops []func()
	if addr := s.cfg.Observability.MetricsAddr; addr != "" {
		server := NewObservabilityServer(addr, app.NewHealthService(s.app))
		if err := server.Start(ctx); err != nil {
			return nil, err
		}
		stops = append(stops, func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(stopCtx); err != nil {
				slog.Warn("failed to stop observability server", "error", err)
			}
		})
	}

	cfgWatcher := config.NewWatcher(s.configPath, s.cfg, s.app.UpdateConfig)
	if err := cfgWatcher.Start(ctx); err != nil {
		slog.Warn("config hot reload disabled", "path", s.configPath, "error", err)
	} else {
		stops = append(stops, cfgWatcher.Stop)
	}

	return func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}, nil
}
