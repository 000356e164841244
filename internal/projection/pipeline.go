package projection

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/roach88/frontier/internal/metric"
	"github.com/roach88/frontier/internal/pareto"
	"github.com/roach88/frontier/internal/solutionlog"
)

// Mode is the kind of chart a pipeline produces.
type Mode int

const (
	// ModeFront charts the Pareto front of two objectives.
	ModeFront Mode = iota
	// ModeProgress charts best-so-far values over the trajectory.
	ModeProgress
)

func (m Mode) String() string {
	if m == ModeProgress {
		return "progress"
	}
	return "front"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Options configures one chart.
type Options struct {
	// Title labels the chart. Empty leaves the chart untitled.
	Title string
	// X and Y are metric names as accepted by metric.Resolve.
	X string
	Y string
	// UseSolutionIndex plots the ordinal position within the filtered
	// sequence on the x axis instead of the metric value.
	UseSolutionIndex bool
	// XFactor scales createdSolutions on progress charts. Zero means 1.
	XFactor float64
	// ProgressBy names the objective the best-so-far filter tracks on
	// progress charts. Empty means Y.
	ProgressBy string
	// Orientation applies to both filters.
	Orientation pareto.Orientation
	// Workers > 1 splits the dominance filter across goroutines.
	Workers int
}

// Pipeline projects solution sequences for one metric pair. Metrics are
// resolved when the pipeline is built. A Pipeline is immutable and safe for
// concurrent use.
type Pipeline struct {
	opts     Options
	x        metric.Metric
	y        metric.Metric
	progress metric.Metric
	mode     Mode
}

// New resolves the metrics named in opts and selects the mode.
func New(opts Options) (*Pipeline, error) {
	x, err := metric.Resolve(opts.X)
	if err != nil {
		return nil, fmt.Errorf("x metric: %w", err)
	}
	y, err := metric.Resolve(opts.Y)
	if err != nil {
		return nil, fmt.Errorf("y metric: %w", err)
	}
	if opts.XFactor == 0 {
		opts.XFactor = 1
	}

	p := &Pipeline{opts: opts, x: x, y: y, progress: y, mode: ModeFront}
	if metric.IsTrajectory(x) || metric.Same(x, y) {
		p.mode = ModeProgress
		p.x = metric.TrajectoryIndex{}
		if opts.ProgressBy != "" {
			if p.progress, err = metric.Resolve(opts.ProgressBy); err != nil {
				return nil, fmt.Errorf("progress metric: %w", err)
			}
		}
	}
	return p, nil
}

// Mode returns the chart kind the pipeline produces.
func (p *Pipeline) Mode() Mode {
	return p.mode
}

// Options returns the options the pipeline was built with, XFactor defaulted.
func (p *Pipeline) Options() Options {
	return p.opts
}

// XTitle is the axis label for the pipeline's x axis.
func (p *Pipeline) XTitle() string {
	if p.mode == ModeProgress {
		if p.opts.UseSolutionIndex {
			return "solution #"
		}
		return "~" + metric.TrajectoryName
	}
	return p.opts.X
}

// Title is the configured chart title, possibly empty.
func (p *Pipeline) Title() string {
	return p.opts.Title
}

// YTitle is the axis label for the y axis.
func (p *Pipeline) YTitle() string {
	return p.opts.Y
}

// Project runs the pipeline over solutions. solutions is not modified.
func (p *Pipeline) Project(solutions []solutionlog.SolutionRecord) []Point {
	// Background is never cancelled, so only the parallel filter's
	// cancellation path can fail and it cannot trigger here.
	pts, _ := p.ProjectContext(context.Background(), solutions)
	return pts
}

// ProjectContext is Project with cancellation of the dominance filter.
func (p *Pipeline) ProjectContext(ctx context.Context, solutions []solutionlog.SolutionRecord) ([]Point, error) {
	recs := make([]*solutionlog.SolutionRecord, len(solutions))
	for i := range solutions {
		recs[i] = &solutions[i]
	}

	sortBy(recs, p.x)

	if p.mode == ModeProgress {
		kept := pareto.BestSoFar(recs, accessor(p.progress), p.opts.Orientation)
		return p.points(kept, p.progressX), nil
	}

	kept, err := pareto.NonDominatedParallel(ctx, recs, accessor(p.x), accessor(p.y), p.opts.Orientation, p.opts.Workers)
	if err != nil {
		return nil, err
	}
	return p.points(kept, p.frontX), nil
}

func (p *Pipeline) progressX(i int, r *solutionlog.SolutionRecord) float64 {
	if p.opts.UseSolutionIndex {
		return float64(i)
	}
	v, _ := p.x.Value(r)
	return v * p.opts.XFactor
}

func (p *Pipeline) frontX(i int, r *solutionlog.SolutionRecord) float64 {
	if p.opts.UseSolutionIndex {
		return float64(i)
	}
	v, ok := p.x.Value(r)
	if !ok {
		return math.NaN()
	}
	return v
}

func (p *Pipeline) points(recs []*solutionlog.SolutionRecord, xOf func(int, *solutionlog.SolutionRecord) float64) []Point {
	out := make([]Point, len(recs))
	for i, r := range recs {
		y, ok := p.y.Value(r)
		if !ok {
			y = math.NaN()
		}
		out[i] = Point{X: xOf(i, r), Y: y, Record: r}
		if p.mode == ModeProgress {
			out[i].Size = 1
		}
	}
	return out
}

// sortBy orders recs ascending by m. Records missing m go last; ties keep
// their relative order.
func sortBy(recs []*solutionlog.SolutionRecord, m metric.Metric) {
	slices.SortStableFunc(recs, func(a, b *solutionlog.SolutionRecord) int {
		va, okA := m.Value(a)
		vb, okB := m.Value(b)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		case va < vb:
			return -1
		case va > vb:
			return 1
		default:
			return 0
		}
	})
}

func accessor(m metric.Metric) pareto.Accessor[*solutionlog.SolutionRecord] {
	return func(r *solutionlog.SolutionRecord) (float64, bool) {
		return m.Value(r)
	}
}
