package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/frontier/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Panels int    `json:"panels"`
	Error  string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a view config file",
		Long: `Check a view config file against the config schema without loading any
solution log. Unknown keys, unknown orientations and panels without a y
metric are rejected.

Exit codes:
  0 - Config is valid
  1 - Config is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, "config file not found", err)
		}
		return f.Fail(ExitCommandError, ErrCodeGeneric, "cannot read config", err)
	}

	cfg, err := config.Parse(path, data)
	if err != nil {
		if f.JSON() {
			_ = f.Error(ErrCodeConfig, "invalid config", ValidationResult{Valid: false, Error: err.Error()})
			return WrapExitError(ExitFailure, "invalid config", errReported{err})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✗ %s is invalid\n  %v\n", path, err)
		return WrapExitError(ExitFailure, "invalid config", errReported{err})
	}
	if _, err := cfg.PanelOptions(1); err != nil {
		return f.Fail(ExitFailure, ErrCodeConfig, "invalid config", err)
	}

	f.VerboseLog("Validated %s", path)
	result := ValidationResult{Valid: true, Panels: len(cfg.Panels)}
	if f.JSON() {
		return f.Success(result)
	}
	if result.Panels == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (default panels)\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d panels)\n", path, result.Panels)
	}
	return nil
}
