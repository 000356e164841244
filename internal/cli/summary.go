package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/frontier/internal/solutionlog"
)

// SummaryOptions holds flags for the summary command.
type SummaryOptions struct {
	*RootOptions
	KeepWarmup bool
}

// InstanceSummary describes the problem instance of a log.
type InstanceSummary struct {
	Factories int    `json:"factories"`
	Machines  int    `json:"machines"`
	Problem   string `json:"problem,omitempty"` // set when the instance is inconsistent
}

// SummaryResult is the output of the summary command.
type SummaryResult struct {
	Source   string            `json:"source"`
	Stats    solutionlog.Stats `json:"stats"`
	Instance *InstanceSummary  `json:"instance,omitempty"`
	Agents   float64           `json:"agents"`
	XFactor  float64           `json:"xFactor"`
	Fields   []string          `json:"fields"`
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummaryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "summary <log>",
		Short: "Describe a solution log",
		Long: `Load a solution log and report what it contains: line and event counts,
instance dimensions, the agent count and the numeric fields present.

Examples:
  frontier summary run.jsonl
  frontier summary run.jsonl --keep-warmup --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.KeepWarmup, "keep-warmup", false, "keep records with createdSolutions <= 0")

	return cmd
}

func runSummary(opts *SummaryOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}
	l, err := loadLog(opts.commandContext(cmd), f, path, ingestOptions(cfg, opts.KeepWarmup))
	if err != nil {
		return err
	}

	result := summarize(path, l)
	if f.JSON() {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Source: %s\n", result.Source)
	fmt.Fprintf(w, "Lines: %d (%d events, %d skipped)\n", result.Stats.Lines, result.Stats.Events, result.Stats.Skipped)
	fmt.Fprintf(w, "Solutions: %d kept, %d warm-up dropped\n", result.Stats.Solutions, result.Stats.DroppedWarmup)
	if result.Instance != nil {
		fmt.Fprintf(w, "Instance: %d factories, %d machines\n", result.Instance.Factories, result.Instance.Machines)
		if result.Instance.Problem != "" {
			fmt.Fprintf(w, "  Warning: %s\n", result.Instance.Problem)
		}
	} else {
		fmt.Fprintln(w, "Instance: none")
	}
	fmt.Fprintf(w, "Agents: %g (x factor %g)\n", result.Agents, result.XFactor)
	fmt.Fprintf(w, "Fields: %s\n", strings.Join(result.Fields, ", "))
	return nil
}

func summarize(source string, l *solutionlog.Log) SummaryResult {
	result := SummaryResult{
		Source:  source,
		Stats:   l.Stats,
		XFactor: l.XFactor(),
		Fields:  l.FieldNames(),
	}
	if l.Parameters != nil {
		result.Agents = l.Parameters.Agents
	}
	if inst := l.Instance; inst != nil {
		result.Instance = &InstanceSummary{
			Factories: len(inst.Factories),
			Machines:  len(inst.Machines),
		}
		if err := inst.Validate(); err != nil {
			result.Instance.Problem = err.Error()
		}
	}
	return result
}
