package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/frontier/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database   string
	RunID      string
	KeepWarmup bool
}

// ImportResult is the output of the import command.
type ImportResult struct {
	RunID     string `json:"run_id"`
	Source    string `json:"source"`
	Solutions int    `json:"solutions"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <log>",
		Short: "Archive a solution log",
		Long: `Load a solution log and write it to the run archive.

Without --run a new UUIDv7 run ID is generated. Importing under an existing
run ID replaces that run.

Examples:
  frontier import run.jsonl --db ./runs.db
  frontier import run.jsonl --db ./runs.db --run baseline`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd, store.UUIDv7Generator{})
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID (default: new UUIDv7)")
	cmd.Flags().BoolVar(&opts.KeepWarmup, "keep-warmup", false, "keep records with createdSolutions <= 0")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command, gen store.IDGenerator) error {
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

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		gen = store.NewFixedGenerator(opts.RunID)
	}
	id, err := st.Import(ctx, gen, path, l)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to write run", err)
	}
	f.VerboseLog("Archived %d solution(s) from %s", len(l.Solutions), path)

	result := ImportResult{RunID: id, Source: path, Solutions: len(l.Solutions)}
	if f.JSON() {
		return f.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d solution(s) as run %s\n", result.Solutions, result.RunID)
	return nil
}
