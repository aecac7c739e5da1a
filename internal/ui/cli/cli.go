// Package cli implements the crateview command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"crateview/internal/core/app"
	"crateview/internal/core/config"
	"crateview/internal/shared/observability"
	"crateview/internal/ui/report"

	"github.com/spf13/cobra"
)

const versionString = "0.3.0"

// errProblems makes check exit non-zero without printing an extra error.
var errProblems = errors.New("problems found")

type cliOptions struct {
	configPath string
	dir        string
	format     string
	verbose    bool

	stdout io.Writer
	stderr io.Writer
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand(os.Stdout, os.Stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errProblems) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree writing results to stdout and logs
// to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "crateview",
		Short:         "Incremental analysis of Rust crates",
		Long:          "crateview loads a Rust workspace into an incremental analysis state and reports module problems, symbols and assists.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config file")
	root.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "Directory inside the workspace; the root is found by walking up to Cargo.toml")
	root.PersistentFlags().StringVar(&opts.format, "format", formatText, "Output format: text|lsp")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return validateFormat(opts.format)
	}

	root.AddCommand(
		newVersionCommand(opts),
		newCheckCommand(opts),
		newFixCommand(opts),
		newSymbolsCommand(opts),
		newParentsCommand(opts),
		newResolveCommand(opts),
		newAssistsCommand(opts),
		newStructureCommand(opts),
		newTreeCommand(opts),
		newWatchCommand(opts),
	)
	return root
}

// session is a loaded workspace plus the resources to release afterwards.
type session struct {
	app        *app.App
	cfg        *config.Config
	configPath string
	shutdown   func(context.Context) error
}

func (s *session) close(ctx context.Context) {
	if err := s.shutdown(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
}

// open locates the workspace root, loads the config, configures logging
// and tracing, and scans the workspace.
func (o *cliOptions) open(ctx context.Context) (*session, error) {
	root, err := config.DetectProjectRoot([]string{o.dir})
	if err != nil {
		return nil, err
	}
	cfgPath := config.FindConfig(o.configPath, root)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	o.configureLogging(cfg)
	slog.Debug("workspace located", "root", root, "config", cfgPath)

	shutdown, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg, root)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	if _, err := a.InitialScan(ctx); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	return &session{app: a, cfg: cfg, configPath: cfgPath, shutdown: shutdown}, nil
}

func (o *cliOptions) configureLogging(cfg *config.Config) {
	level, err := config.ParseLogLevel(cfg.Observability.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// withSession runs fn against a freshly opened session.
func (o *cliOptions) withSession(fn func(ctx context.Context, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		s, err := o.open(ctx)
		if err != nil {
			return err
		}
		defer s.close(context.Background())
		return fn(ctx, s)
	}
}

func newVersionCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(opts.stdout, "crateview v%s\n", versionString)
		},
	}
}

func newCheckCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report syntax errors and module problems",
		Args:  cobra.NoArgs,
		RunE: opts.withSession(func(ctx context.Context, s *session) error {
			if opts.format == formatLSP {
				params, err := s.app.PublishDiagnostics(ctx)
				if err != nil {
					return err
				}
				if err := writeJSON(opts.stdout, params); err != nil {
					return err
				}
				if len(params) > 0 {
					return errProblems
				}
				return nil
			}
			reports, err := s.app.Check(ctx)
			if err != nil {
				return err
			}
			if report.Diagnostics(opts.stdout, reports) > 0 {
				return errProblems
			}
			return nil
		}),
	}
}

func newFixCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix <file>",
		Short: "Apply quick fixes for module problems in a file",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return opts.withSession(func(ctx context.Context, s *session) error {
			applied, err := s.app.Fix(ctx, args[0])
			report.Fixes(opts.stdout, applied)
			return err
		})(cmd, args)
	}
	return cmd
}

func newSymbolsCommand(opts *cliOptions) *cobra.Command {
	var req app.SearchRequest
	cmd := &cobra.Command{
		Use:   "symbols [query]",
		Short: "Search workspace symbols",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.Flags().StringVar(&req.Mode, "mode", "", "Match mode: fuzzy, prefix or exact (default from config)")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "Maximum results (default from config, negative for unlimited)")
	cmd.Flags().BoolVar(&req.TypesOnly, "types", false, "Only report type definitions")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			req.Name = args[0]
		}
		return opts.withSession(func(ctx context.Context, s *session) error {
			if opts.format == formatLSP {
				infos, err := s.app.WorkspaceSymbols(ctx, req)
				if err != nil {
					return err
				}
				return writeJSON(opts.stdout, infos)
			}
			hits, err := s.app.Search(ctx, req)
			if err != nil {
				return err
			}
			report.Symbols(opts.stdout, hits)
			return nil
		})(cmd, args)
	}
	return cmd
}

func newParentsCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parents <file>",
		Short: "List module declarations that own a file",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return opts.withSession(func(ctx context.Context, s *session) error {
			hits, err := s.app.ParentModules(ctx, args[0])
			if err != nil {
				return err
			}
			report.Symbols(opts.stdout, hits)
			return nil
		})(cmd, args)
	}
	return cmd
}

func newResolveCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <file> <offset|line:col>",
		Short: "Guess the definition of the identifier at a position",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return opts.withSession(func(ctx context.Context, s *session) error {
			hits, err := s.app.Resolve(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			report.Symbols(opts.stdout, hits)
			return nil
		})(cmd, args)
	}
	return cmd
}

func newAssistsCommand(opts *cliOptions) *cobra.Command {
	var apply string
	cmd := &cobra.Command{
		Use:   "assists <file> <offset|line:col>",
		Short: "List or apply the assists available at a position",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().StringVar(&apply, "apply", "", "Apply the assist with this label")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return opts.withSession(func(ctx context.Context, s *session) error {
			if apply != "" {
				if err := s.app.ApplyAssist(ctx, args[0], args[1], apply); err != nil {
					return err
				}
				report.Fixes(opts.stdout, []string{apply})
				return nil
			}
			if opts.format == formatLSP {
				actions, err := s.app.CodeActions(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return writeJSON(opts.stdout, actions)
			}
			changes, err := s.app.Assists(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			report.Assists(opts.stdout, changes)
			return nil
		})(cmd, args)
	}
	return cmd
}

func newStructureCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "structure <file>",
		Short: "Print the outline of a file",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return opts.withSession(func(ctx context.Context, s *session) error {
			nodes, err := s.app.Structure(args[0])
			if err != nil {
				return err
			}
			report.Structure(opts.stdout, nodes)
			return nil
		})(cmd, args)
	}
	return cmd
}

func newTreeCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the syntax tree of a file",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return opts.withSession(func(ctx context.Context, s *session) error {
			tree, err := s.app.SyntaxTree(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(opts.stdout, tree)
			return nil
		})(cmd, args)
	}
	return cmd
}
