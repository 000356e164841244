// Package server exposes archived runs and their projections over HTTP so a
// rendering layer can fetch plot-ready points.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/frontier/internal/config"
	"github.com/roach88/frontier/internal/store"
)

// RunReader is the part of the archive the API reads from.
type RunReader interface {
	ListRuns(ctx context.Context) ([]store.RunSummary, error)
	Summary(ctx context.Context, id string) (store.RunSummary, error)
	ReadRun(ctx context.Context, id string) (*store.Run, error)
}

// NewRouter builds the API router. cfg supplies orientation, worker count and
// the panel list for the panels endpoint.
func NewRouter(runs RunReader, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	h := &runHandler{runs: runs, cfg: cfg}

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		group := api.Group("/runs")
		{
			group.GET("", h.ListRuns)
			group.GET("/:id", h.GetRun)
			group.GET("/:id/project", h.Project)
			group.GET("/:id/panels", h.Panels)
		}
	}

	return r
}

// requestLogger logs one line per request at Debug, errors at Warn.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Serve runs handler on addr until ctx is cancelled, then shuts down,
// giving in-flight requests five seconds to finish.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
