package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/frontier/internal/solutionlog"
)

func record(created float64, top, nested map[string]float64) *solutionlog.SolutionRecord {
	if top == nil {
		top = map[string]float64{}
	}
	if nested == nil {
		nested = map[string]float64{}
	}
	return &solutionlog.SolutionRecord{
		CreatedSolutions: created,
		Fields:           top,
		Solution:         solutionlog.Solution{Objectives: nested},
	}
}

func TestResolve_Trajectory(t *testing.T) {
	for _, name := range []string{"", "createdSolutions", "  createdSolutions "} {
		m, err := Resolve(name)
		require.NoError(t, err)
		assert.True(t, IsTrajectory(m), name)
		assert.Equal(t, TrajectoryName, m.Name())
	}

	v, ok := TrajectoryIndex{}.Value(record(12, nil, nil))
	assert.True(t, ok)
	assert.Equal(t, float64(12), v)

	_, ok = TrajectoryIndex{}.Value(record(math.NaN(), nil, nil))
	assert.False(t, ok)
}

func TestResolve_Aliases(t *testing.T) {
	m := MustResolve("flowDistance")
	v, ok := m.Value(record(1, nil, map[string]float64{"flowDistanceSum": 99}))
	assert.True(t, ok)
	assert.Equal(t, float64(99), v)

	m = MustResolve("flowDistanceSum")
	v, ok = m.Value(record(1, nil, map[string]float64{"flowDistance": 4, "flowDistanceSum": 5}))
	assert.True(t, ok)
	assert.Equal(t, float64(5), v, "the requested name wins over its alias")

	assert.True(t, Same(MustResolve("failureRisk"), MustResolve("failureRiskSum")))
	assert.False(t, Same(MustResolve("failureRisk"), MustResolve("flowDistance")))
	assert.True(t, Same(MustResolve(""), MustResolve("createdSolutions")))
	assert.False(t, Same(MustResolve(""), MustResolve("quality")))
}

func TestResolve_GenericField(t *testing.T) {
	m := MustResolve("makespan")
	f, ok := m.(Field)
	require.True(t, ok)
	assert.Equal(t, "makespan", f.Family())

	v, ok := m.Value(record(1, map[string]float64{"makespan": 3}, nil))
	assert.True(t, ok)
	assert.Equal(t, float64(3), v)

	_, ok = m.Value(record(1, nil, nil))
	assert.False(t, ok)
}

func TestResolve_NestedOnly(t *testing.T) {
	m := MustResolve("solution.quality")
	_, ok := m.Value(record(1, map[string]float64{"quality": 1}, nil))
	assert.False(t, ok, "top-level field must not satisfy a solution. path")

	v, ok := m.Value(record(1, nil, map[string]float64{"quality": 2}))
	assert.True(t, ok)
	assert.Equal(t, float64(2), v)
	assert.True(t, Same(m, MustResolve("quality")))
	assert.True(t, Same(m, MustResolve("solution.quality")))
	assert.False(t, Same(m, MustResolve("solution.flowDistance")))
}

func TestResolve_Invalid(t *testing.T) {
	for _, name := range []string{"solution.", "a.b", "solution.a.b"} {
		_, err := Resolve(name)
		assert.ErrorIs(t, err, ErrInvalidMetric, name)
	}
	assert.Panics(t, func() { MustResolve("a.b") })
}

func TestKnown(t *testing.T) {
	assert.Equal(t, []string{"quality", "flowDistance", "failureRisk", "singleFactoryFailure"}, Known())
}
