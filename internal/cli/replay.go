package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/frontier/internal/config"
	"github.com/roach88/frontier/internal/projection"
	"github.com/roach88/frontier/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Solutions     int    `json:"solutions"`
	Panels        int    `json:"panels"`
	Points        int    `json:"points"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// buildCharts is swapped in tests to simulate a non-deterministic projection.
var buildCharts = projection.BuildCharts

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-project archived runs and verify determinism",
		Long: `Read each archived run twice, project every configured panel from each
read and compare the encoded charts byte for byte.

Exit codes:
  0 - All runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  frontier replay --db ./runs.db
  frontier replay --db ./runs.db --run baseline
  frontier replay --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}
	ctx := opts.commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	var runIDs []string
	if opts.RunID != "" {
		runIDs = []string{opts.RunID}
	} else {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to list runs", err)
		}
		for _, r := range runs {
			runIDs = append(runIDs, r.ID)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}

	if len(runIDs) == 0 && !f.JSON() {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in database.")
		return nil
	}

	for _, id := range runIDs {
		runResult, err := replayAndVerifyRun(ctx, st, cfg, id)
		if err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return f.Fail(ExitCommandError, ErrCodeNotFound, "run not found", err)
			}
			return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to replay run %s", id), err)
		}
		f.VerboseLog("Replayed run %s: %d panel(s), %d point(s)", id, runResult.Panels, runResult.Points)

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if f.JSON() {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// replayAndVerifyRun reads a run twice, projects both copies and compares
// the encoded charts.
func replayAndVerifyRun(ctx context.Context, st *store.Store, cfg *config.Config, id string) (ReplayRunResult, error) {
	first, points, panels, err := projectArchived(ctx, st, cfg, id)
	if err != nil {
		return ReplayRunResult{}, fmt.Errorf("first replay failed: %w", err)
	}
	second, _, _, err := projectArchived(ctx, st, cfg, id)
	if err != nil {
		return ReplayRunResult{}, fmt.Errorf("second replay failed: %w", err)
	}

	run, err := st.Summary(ctx, id)
	if err != nil {
		return ReplayRunResult{}, err
	}

	return ReplayRunResult{
		RunID:         id,
		Solutions:     run.Solutions,
		Panels:        panels,
		Points:        points,
		Deterministic: bytes.Equal(first, second),
	}, nil
}

// projectArchived returns the encoded chart groups of a run together with
// the number of points and panels they hold.
func projectArchived(ctx context.Context, st *store.Store, cfg *config.Config, id string) ([]byte, int, int, error) {
	run, err := st.ReadRun(ctx, id)
	if err != nil {
		return nil, 0, 0, err
	}
	panels, err := cfg.PanelOptions(run.Log.XFactor())
	if err != nil {
		return nil, 0, 0, err
	}
	groups, err := buildCharts(ctx, run.Log.Solutions, panels)
	if err != nil {
		return nil, 0, 0, err
	}

	points := 0
	for _, g := range groups {
		for _, c := range g.Charts {
			points += len(c.Points)
		}
	}
	data, err := json.Marshal(groups)
	if err != nil {
		return nil, 0, 0, err
	}
	return data, points, len(panels), nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDeterminism,
			Message: "determinism verification failed",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return WrapExitError(ExitFailure, "determinism verification failed", errReported{})
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Run: %s\n", status, run.RunID)

		if verbose {
			fmt.Fprintf(w, "  Solutions: %d\n", run.Solutions)
			fmt.Fprintf(w, "  Panels: %d\n", run.Panels)
			fmt.Fprintf(w, "  Points: %d\n", run.Points)
		} else {
			fmt.Fprintf(w, "  %d solutions, %d panels\n", run.Solutions, run.Panels)
		}

		if !run.Deterministic {
			fmt.Fprintln(w, "  Warning: Non-deterministic replay detected!")
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return WrapExitError(ExitFailure, "determinism verification failed", errReported{})
}
