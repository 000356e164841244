package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/frontier/internal/pareto"
	"github.com/roach88/frontier/internal/solutionlog"
	"github.com/roach88/frontier/internal/testutil"
)

func rec(seq int, created float64, objectives map[string]float64) solutionlog.SolutionRecord {
	return solutionlog.SolutionRecord{
		Seq:              seq,
		CreatedSolutions: created,
		WorkerID:         fmt.Sprintf("w%d", seq%2),
		Fields:           map[string]float64{"createdSolutions": created},
		Solution:         solutionlog.Solution{Objectives: objectives},
	}
}

func frontFixture() []solutionlog.SolutionRecord {
	return []solutionlog.SolutionRecord{
		rec(0, 1, map[string]float64{"flowDistance": 3, "failureRisk": 4}),
		rec(1, 2, map[string]float64{"flowDistance": 1, "failureRisk": 5}),
		rec(2, 3, map[string]float64{"flowDistance": 2, "failureRisk": 3}),
		rec(3, 4, map[string]float64{"flowDistance": 3, "failureRisk": 4}),
	}
}

func progressFixture() []solutionlog.SolutionRecord {
	return []solutionlog.SolutionRecord{
		rec(0, 3, map[string]float64{"quality": 8}),
		rec(1, 1, map[string]float64{"quality": 10}),
		rec(2, 2, map[string]float64{"quality": 8}),
		rec(3, 4, map[string]float64{"quality": 5}),
		rec(4, 5, map[string]float64{"quality": 6}),
		rec(5, 6, map[string]float64{"quality": 3}),
	}
}

func seqs(pts []Point) []int {
	out := make([]int, len(pts))
	for i, p := range pts {
		out[i] = p.Record.Seq
	}
	return out
}

func mustNew(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	p, err := New(opts)
	require.NoError(t, err)
	return p
}

func TestPipeline_FrontGolden(t *testing.T) {
	p := mustNew(t, Options{X: "flowDistance", Y: "failureRisk"})
	assert.Equal(t, ModeFront, p.Mode())
	assert.Equal(t, "flowDistance", p.XTitle())

	pts := p.Project(frontFixture())
	assert.Equal(t, []int{1, 2}, seqs(pts))
	testutil.AssertGoldenJSON(t, "front_flow_vs_risk", pts)
}

func TestPipeline_ProgressGolden(t *testing.T) {
	p := mustNew(t, Options{X: "createdSolutions", Y: "quality", XFactor: 2})
	assert.Equal(t, ModeProgress, p.Mode())
	assert.Equal(t, "~createdSolutions", p.XTitle())

	pts := p.Project(progressFixture())
	assert.Equal(t, []int{1, 2, 3, 5}, seqs(pts))
	testutil.AssertGoldenJSON(t, "progress_quality", pts)
}

func TestPipeline_ProgressIndexMode(t *testing.T) {
	p := mustNew(t, Options{Y: "quality", UseSolutionIndex: true})
	assert.Equal(t, ModeProgress, p.Mode())
	assert.Equal(t, "solution #", p.XTitle())

	pts := p.Project(progressFixture())
	for i, pt := range pts {
		assert.Equal(t, float64(i), pt.X)
		assert.Equal(t, float64(1), pt.Size)
	}
}

func TestPipeline_FrontIndexMode(t *testing.T) {
	p := mustNew(t, Options{X: "flowDistance", Y: "failureRisk", UseSolutionIndex: true})
	pts := p.Project(frontFixture())
	require.Len(t, pts, 2)
	assert.Equal(t, float64(0), pts[0].X)
	assert.Equal(t, float64(1), pts[1].X)
	assert.Equal(t, float64(5), pts[0].Y)
	assert.Equal(t, float64(0), pts[0].Size)
}

func TestPipeline_SameMetricIsProgress(t *testing.T) {
	for _, pair := range [][2]string{{"failureRisk", "failureRisk"}, {"flowDistanceSum", "flowDistance"}, {"solution.quality", "quality"}} {
		p := mustNew(t, Options{X: pair[0], Y: pair[1]})
		assert.Equal(t, ModeProgress, p.Mode(), pair)
		assert.Equal(t, "~createdSolutions", p.XTitle())
	}
}

func TestPipeline_ProgressBy(t *testing.T) {
	solutions := []solutionlog.SolutionRecord{
		rec(0, 1, map[string]float64{"quality": 9, "flowDistance": 1}),
		rec(1, 2, map[string]float64{"quality": 7, "flowDistance": 5}),
		rec(2, 3, map[string]float64{"quality": 8, "flowDistance": 0}),
	}

	byY := mustNew(t, Options{X: "createdSolutions", Y: "flowDistance"})
	assert.Equal(t, []int{0, 2}, seqs(byY.Project(solutions)))

	byQuality := mustNew(t, Options{X: "createdSolutions", Y: "flowDistance", ProgressBy: "quality"})
	pts := byQuality.Project(solutions)
	assert.Equal(t, []int{0, 1}, seqs(pts))
	assert.Equal(t, float64(5), pts[1].Y, "y still plots the requested metric")
}

func TestPipeline_MissingValues(t *testing.T) {
	solutions := []solutionlog.SolutionRecord{
		rec(0, 1, map[string]float64{"failureRisk": 2}),
		rec(1, 2, map[string]float64{"flowDistance": 1, "failureRisk": 9}),
		rec(2, 3, map[string]float64{"flowDistance": 5, "failureRisk": 9}),
		rec(3, 4, map[string]float64{"flowDistance": 0}),
	}
	p := mustNew(t, Options{X: "flowDistance", Y: "failureRisk"})
	pts := p.Project(solutions)

	// Missing x sorts last; neither incomplete record is dominated.
	assert.Equal(t, []int{3, 1, 0}, seqs(pts))
	assert.True(t, math.IsNaN(pts[0].Y))
	assert.True(t, math.IsNaN(pts[2].X))
	assert.True(t, pts[0].Missing())
	assert.False(t, pts[1].Missing())

	data, err := json.Marshal(pts[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"y":null`)
	assert.Contains(t, string(data), `"x":0`)
}

func TestPipeline_Empty(t *testing.T) {
	for _, opts := range []Options{{Y: "quality"}, {X: "flowDistance", Y: "failureRisk"}} {
		pts := mustNew(t, opts).Project(nil)
		assert.NotNil(t, pts)
		assert.Empty(t, pts)
	}
}

func TestPipeline_DoesNotReorderInput(t *testing.T) {
	solutions := progressFixture()
	mustNew(t, Options{Y: "quality"}).Project(solutions)
	for i := range solutions {
		assert.Equal(t, i, solutions[i].Seq)
	}
}

func TestPipeline_StableTies(t *testing.T) {
	solutions := []solutionlog.SolutionRecord{
		rec(0, 1, map[string]float64{"flowDistance": 2, "failureRisk": 2}),
		rec(1, 1, map[string]float64{"flowDistance": 1, "failureRisk": 3}),
		rec(2, 1, map[string]float64{"flowDistance": 2, "failureRisk": 2}),
		rec(3, 1, map[string]float64{"flowDistance": 1, "failureRisk": 3}),
	}
	pts := mustNew(t, Options{X: "flowDistance", Y: "failureRisk"}).Project(solutions)
	assert.Equal(t, []int{1, 3, 0, 2}, seqs(pts))
}

func TestPipeline_Maximize(t *testing.T) {
	p := mustNew(t, Options{X: "flowDistance", Y: "failureRisk", Orientation: pareto.Maximize})
	assert.Equal(t, []int{1, 0, 3}, seqs(p.Project(frontFixture())))
}

func TestPipeline_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	solutions := make([]solutionlog.SolutionRecord, 400)
	for i := range solutions {
		solutions[i] = rec(i, float64(rng.Intn(100)), map[string]float64{
			"flowDistance": float64(rng.Intn(30)),
			"failureRisk":  float64(rng.Intn(30)),
			"quality":      float64(rng.Intn(1000)),
		})
	}

	for _, opts := range []Options{{X: "flowDistance", Y: "failureRisk"}, {Y: "quality", XFactor: 3}} {
		p := mustNew(t, opts)
		first, err := json.Marshal(p.Project(solutions))
		require.NoError(t, err)
		second, err := json.Marshal(p.Project(solutions))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	}

	seq := mustNew(t, Options{X: "flowDistance", Y: "failureRisk"}).Project(solutions)
	par, err := mustNew(t, Options{X: "flowDistance", Y: "failureRisk", Workers: 4}).ProjectContext(context.Background(), solutions)
	require.NoError(t, err)
	assert.Equal(t, seqs(seq), seqs(par))
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := mustNew(t, Options{X: "flowDistance", Y: "failureRisk", Workers: 2}).ProjectContext(ctx, frontFixture())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_InvalidMetric(t *testing.T) {
	_, err := New(Options{X: "a.b", Y: "quality"})
	assert.ErrorContains(t, err, "x metric")
	_, err = New(Options{X: "quality", Y: "solution."})
	assert.ErrorContains(t, err, "y metric")
	_, err = New(Options{Y: "quality", ProgressBy: "x.y"})
	assert.ErrorContains(t, err, "progress metric")
}
