package projection

import (
	"context"
	"fmt"

	"github.com/roach88/frontier/internal/metric"
	"github.com/roach88/frontier/internal/solutionlog"
)

// DefaultObjectives are the objectives the default panel grid crosses.
var DefaultObjectives = []string{"flowDistance", "failureRisk", "singleFactoryFailure"}

// DefaultPanels returns the standard chart grid: quality over the trajectory,
// then every ordered pair of DefaultObjectives. A pair of equal objectives
// becomes a progress chart of that objective; distinct pairs become fronts.
//
// Progress charts track quality records, so each one shows how the objective
// moved as the overall quality improved. Progress x values are scaled by
// xFactor.
func DefaultPanels(xFactor float64) []Options {
	panels := []Options{{X: metric.TrajectoryName, Y: "quality", XFactor: xFactor}}
	for _, a := range DefaultObjectives {
		for _, b := range DefaultObjectives {
			if a == b {
				panels = append(panels, Options{X: metric.TrajectoryName, Y: b, XFactor: xFactor, ProgressBy: "quality"})
				continue
			}
			panels = append(panels, Options{X: a, Y: b})
		}
	}
	return panels
}

// Chart is a projected panel.
type Chart struct {
	Title  string  `json:"title,omitempty"`
	XTitle string  `json:"xTitle"`
	YTitle string  `json:"yTitle"`
	Mode   Mode    `json:"mode"`
	Points []Point `json:"points"`
}

// ChartGroup holds the charts sharing a y metric.
type ChartGroup struct {
	Y      string  `json:"y"`
	Charts []Chart `json:"charts"`
}

// BuildCharts projects every panel over solutions and groups the charts by y
// metric. Groups appear in the order their y metric first appears in panels,
// and charts keep their panel order within a group.
func BuildCharts(ctx context.Context, solutions []solutionlog.SolutionRecord, panels []Options) ([]ChartGroup, error) {
	groups := []ChartGroup{}
	index := make(map[string]int)
	for i, opts := range panels {
		p, err := New(opts)
		if err != nil {
			return nil, fmt.Errorf("panel %d: %w", i, err)
		}
		pts, err := p.ProjectContext(ctx, solutions)
		if err != nil {
			return nil, fmt.Errorf("panel %d: %w", i, err)
		}

		gi, ok := index[opts.Y]
		if !ok {
			gi = len(groups)
			index[opts.Y] = gi
			groups = append(groups, ChartGroup{Y: opts.Y})
		}
		groups[gi].Charts = append(groups[gi].Charts, Chart{
			Title:  p.Title(),
			XTitle: p.XTitle(),
			YTitle: p.YTitle(),
			Mode:   p.Mode(),
			Points: pts,
		})
	}
	return groups, nil
}
