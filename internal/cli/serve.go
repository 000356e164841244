package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/frontier/internal/server"
	"github.com/roach88/frontier/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Addr     string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve archived runs over HTTP",
		Long: `Serve the run archive and its projections as JSON.

Routes:
  GET /api/runs
  GET /api/runs/:id
  GET /api/runs/:id/project?x=&y=&index=&x_factor=
  GET /api/runs/:id/panels

Examples:
  frontier serve --db ./runs.db
  frontier serve --db ./runs.db --addr 127.0.0.1:9000 --config view.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(opts.commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := opts.logger(cmd.ErrOrStderr())
	if err := server.Serve(ctx, opts.Addr, server.NewRouter(st, cfg, logger), logger); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "server failed", err)
	}
	return nil
}
