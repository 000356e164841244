package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/frontier/internal/config"
	"github.com/roach88/frontier/internal/projection"
	"github.com/roach88/frontier/internal/solutionlog"
)

// ProjectOptions holds flags for the project command.
type ProjectOptions struct {
	*RootOptions
	X          string
	Y          string
	Index      bool
	XFactor    float64
	ProgressBy string
	KeepWarmup bool
}

// NewProjectCommand creates the project command.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProjectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "project <log>",
		Short: "Project a solution log onto one chart",
		Long: `Project a solution log onto an (x, y) metric pair.

When x is createdSolutions (or empty), or names the same metric as y, the
chart shows the best-so-far trajectory of y. Otherwise it shows the Pareto
front of the two metrics.

Examples:
  frontier project run.jsonl --x flowDistance --y failureRisk
  frontier project run.jsonl --y quality --index
  frontier project run.jsonl --y quality --x-factor 8 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.X, "x", "", "x metric (default createdSolutions)")
	cmd.Flags().StringVar(&opts.Y, "y", "", "y metric (required)")
	_ = cmd.MarkFlagRequired("y")
	cmd.Flags().BoolVar(&opts.Index, "index", false, "plot the solution index on x")
	cmd.Flags().Float64Var(&opts.XFactor, "x-factor", 0, "createdSolutions multiplier on progress charts (default agent count)")
	cmd.Flags().StringVar(&opts.ProgressBy, "progress-by", "", "metric the best-so-far filter tracks (default y)")
	cmd.Flags().BoolVar(&opts.KeepWarmup, "keep-warmup", false, "keep records with createdSolutions <= 0")

	return cmd
}

func runProject(opts *ProjectOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}
	ctx := opts.commandContext(cmd)
	l, err := loadLog(ctx, f, path, ingestOptions(cfg, opts.KeepWarmup))
	if err != nil {
		return err
	}
	if opts.XFactor < 0 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "x-factor must not be negative", nil)
	}

	po, err := cfg.ProjectionOptions(config.Panel{
		X:                opts.X,
		Y:                opts.Y,
		UseSolutionIndex: opts.Index,
		XFactor:          opts.XFactor,
		ScaleXByAgents:   true,
		ProgressBy:       opts.ProgressBy,
	}, l.XFactor())
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeConfig, "invalid config", err)
	}
	p, err := projection.New(po)
	if err != nil {
		return projectionFailure(f, err)
	}
	pts, err := p.ProjectContext(ctx, l.Solutions)
	if err != nil {
		return projectionFailure(f, err)
	}

	chart := projection.Chart{Title: p.Title(), XTitle: p.XTitle(), YTitle: p.YTitle(), Mode: p.Mode(), Points: pts}
	if f.JSON() {
		return f.Success(chart)
	}
	writeChartText(cmd, chart)
	return nil
}

func writeChartText(cmd *cobra.Command, chart projection.Chart) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %s vs %s (%d points)\n", chart.Mode, chart.YTitle, chart.XTitle, len(chart.Points))
	for _, pt := range chart.Points {
		fmt.Fprintf(w, "  x=%s y=%s %s\n", formatCoord(pt.X), formatCoord(pt.Y), describeRecord(pt.Record))
	}
}

func formatCoord(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%g", v)
}

func describeRecord(r *solutionlog.SolutionRecord) string {
	if r == nil {
		return ""
	}
	s := fmt.Sprintf("seq=%d line=%d", r.Seq, r.Line)
	if r.WorkerID != "" {
		s += " worker=" + r.WorkerID
	}
	return s
}
