package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/frontier/internal/config"
	"github.com/roach88/frontier/internal/logging"
	"github.com/roach88/frontier/internal/metric"
	"github.com/roach88/frontier/internal/solutionlog"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional view config file
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the frontier CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "frontier",
		Short: "Pareto front and progress charts for optimisation runs",
		Long: `Read the JSON-lines log of a facility-layout search, reduce it to the
non-dominated solutions of two objectives or to the best-so-far trajectory of
one, and hand plot-ready points to a renderer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "view config file (YAML)")

	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewProjectCommand(opts))
	cmd.AddCommand(NewPanelsCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	return logging.New(w, o.Verbose)
}

// commandContext returns the command context carrying a logger that writes to the
// command's stderr.
func (o *RootOptions) commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.NewContext(ctx, o.logger(cmd.ErrOrStderr()))
}

// loadConfig returns the --config file, or the default configuration when
// none is given.
func (o *RootOptions) loadConfig(f *OutputFormatter) (*config.Config, error) {
	if o.Config == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(o.Config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, f.Fail(ExitCommandError, ErrCodeNotFound, "config file not found", err)
		}
		return nil, f.Fail(ExitFailure, ErrCodeConfig, "invalid config", err)
	}
	return cfg, nil
}

// loadLog reads a solution log file, reporting failures through f.
func loadLog(ctx context.Context, f *OutputFormatter, path string, ingest solutionlog.IngestOptions) (*solutionlog.Log, error) {
	l, err := solutionlog.LoadFile(ctx, path, ingest)
	switch {
	case err == nil:
		return l, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, "solution log not found", err)
	case solutionlog.IsParseError(err):
		return nil, f.Fail(ExitCommandError, ErrCodeParse, "cannot parse solution log", err)
	default:
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, "cannot read solution log", err)
	}
}

// ingestOptions applies --keep-warmup over the configured ingest section.
func ingestOptions(cfg *config.Config, keepWarmup bool) solutionlog.IngestOptions {
	opts := cfg.IngestOptions()
	if keepWarmup {
		opts.DropWarmup = false
	}
	return opts
}

// projectionFailure reports a projection error, separating bad metric names
// from everything else.
func projectionFailure(f *OutputFormatter, err error) error {
	if errors.Is(err, metric.ErrInvalidMetric) {
		return f.Fail(ExitCommandError, ErrCodeMetric, "invalid metric", err)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, "projection failed", err)
}
