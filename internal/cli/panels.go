package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/frontier/internal/projection"
)

// PanelsOptions holds flags for the panels command.
type PanelsOptions struct {
	*RootOptions
	KeepWarmup bool
}

// NewPanelsCommand creates the panels command.
func NewPanelsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PanelsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "panels <log>",
		Short: "Project a solution log onto every configured panel",
		Long: `Project a solution log onto the panels of the view config, grouped by
y metric. Without --config the default grid is used: quality over the
trajectory and every pair of flowDistance, failureRisk and
singleFactoryFailure.

Examples:
  frontier panels run.jsonl
  frontier panels run.jsonl --config view.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPanels(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.KeepWarmup, "keep-warmup", false, "keep records with createdSolutions <= 0")

	return cmd
}

func runPanels(opts *PanelsOptions, path string, cmd *cobra.Command) error {
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

	panels, err := cfg.PanelOptions(l.XFactor())
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeConfig, "invalid config", err)
	}
	groups, err := projection.BuildCharts(ctx, l.Solutions, panels)
	if err != nil {
		return projectionFailure(f, err)
	}

	if f.JSON() {
		return f.Success(groups)
	}

	w := cmd.OutOrStdout()
	for _, g := range groups {
		fmt.Fprintf(w, "%s\n", g.Y)
		for _, c := range g.Charts {
			label := "x=" + c.XTitle
			if c.Title != "" {
				label = c.Title + " " + label
			}
			fmt.Fprintf(w, "  %-8s %s: %d points\n", c.Mode, label, len(c.Points))
		}
	}
	return nil
}
