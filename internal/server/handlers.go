package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roach88/frontier/internal/config"
	"github.com/roach88/frontier/internal/metric"
	"github.com/roach88/frontier/internal/projection"
	"github.com/roach88/frontier/internal/store"
)

type runHandler struct {
	runs RunReader
	cfg  *config.Config
}

// ListRuns returns every archived run.
func (h *runHandler) ListRuns(c *gin.Context) {
	runs, err := h.runs.ListRuns(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun returns a run's summary, its raw instance and parameters payloads and
// the numeric fields its solutions carry.
func (h *runHandler) GetRun(c *gin.Context) {
	id := c.Param("id")
	sum, err := h.runs.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	run, err := h.runs.ReadRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":        sum,
		"instance":   run.Log.Instance,
		"parameters": run.Log.Parameters,
		"xFactor":    run.Log.XFactor(),
		"fields":     run.Log.FieldNames(),
	})
}

// Project charts one metric pair. Query parameters: x, y, index, x_factor.
// x_factor defaults to the run's agent count.
func (h *runHandler) Project(c *gin.Context) {
	run, err := h.runs.ReadRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	panel := config.Panel{
		X:          c.Query("x"),
		Y:          c.Query("y"),
		ProgressBy: c.Query("progress_by"),
	}
	if panel.Y == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "y is required"})
		return
	}
	if v := c.Query("index"); v != "" {
		if panel.UseSolutionIndex, err = strconv.ParseBool(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a boolean"})
			return
		}
	}
	panel.XFactor = run.Log.XFactor()
	if v := c.Query("x_factor"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !(f > 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x_factor must be a positive number"})
			return
		}
		panel.XFactor = f
	}

	opts, err := h.cfg.ProjectionOptions(panel, run.Log.XFactor())
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := projection.New(opts)
	if err != nil {
		respondError(c, err)
		return
	}
	pts, err := p.ProjectContext(c.Request.Context(), run.Log.Solutions)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, projection.Chart{
		Title:  p.Title(),
		XTitle: p.XTitle(),
		YTitle: p.YTitle(),
		Mode:   p.Mode(),
		Points: pts,
	})
}

// Panels charts every configured panel, grouped by y metric.
func (h *runHandler) Panels(c *gin.Context) {
	run, err := h.runs.ReadRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	panels, err := h.cfg.PanelOptions(run.Log.XFactor())
	if err != nil {
		respondError(c, err)
		return
	}
	groups, err := projection.BuildCharts(c.Request.Context(), run.Log.Solutions, panels)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, metric.ErrInvalidMetric):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
