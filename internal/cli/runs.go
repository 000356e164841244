package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/frontier/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Delete   string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs",
		Long: `List the runs in the archive in the order they were written, or delete
one with --delete.

Examples:
  frontier runs --db ./runs.db
  frontier runs --db ./runs.db --delete baseline`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "delete the run with this ID")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := opts.commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	if opts.Delete != "" {
		if err := st.DeleteRun(ctx, opts.Delete); err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return f.Fail(ExitCommandError, ErrCodeNotFound, "run not found", err)
			}
			return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to delete run", err)
		}
		if f.JSON() {
			return f.Success(map[string]string{"deleted": opts.Delete})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", opts.Delete)
		return nil
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to list runs", err)
	}
	if f.JSON() {
		return f.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %d solution(s), %d distinct\n", r.ID, r.Source, r.Solutions, r.DistinctSolutions)
	}
	return nil
}
