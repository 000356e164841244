// Package metric resolves the objective names a chart asks for into typed
// accessors over solution records.
//
// A name is resolved once, when a projection is built, never per comparison.
// Two variants exist: Field reads a numeric field of the flattened record,
// and TrajectoryIndex stands for the creation counter that orders the search
// in time. Both report a missing value as ok=false rather than zero.
package metric

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/frontier/internal/solutionlog"
)

// TrajectoryName is the sentinel that always selects TrajectoryIndex.
const TrajectoryName = "createdSolutions"

// nestedPrefix restricts a lookup to the nested solution object.
const nestedPrefix = "solution."

var (
	// ErrInvalidMetric is returned for names Resolve cannot turn into an accessor.
	ErrInvalidMetric = errors.New("invalid metric")
)

// Metric reads one numeric value from a solution record.
type Metric interface {
	// Name is the metric name as requested.
	Name() string
	// Value returns the metric for r, or ok=false when r does not carry it.
	Value(r *solutionlog.SolutionRecord) (v float64, ok bool)
}

// families groups field names different log schemas use for one objective.
// The first entry is the family key.
var families = [][]string{
	{"quality"},
	{"flowDistance", "flowDistanceSum"},
	{"failureRisk", "failureRiskSum"},
	{"singleFactoryFailure", "singleFactoryFailureScore"},
}

// Field reads a numeric field by name, trying schema aliases in order.
type Field struct {
	name       string
	family     string
	candidates []string
	nestedOnly bool
}

// Name implements Metric.
func (f Field) Name() string { return f.name }

// Family returns the key shared by all aliases of the field.
func (f Field) Family() string { return f.family }

// Value implements Metric. The first alias present on r wins.
func (f Field) Value(r *solutionlog.SolutionRecord) (float64, bool) {
	for _, c := range f.candidates {
		var v float64
		var ok bool
		if f.nestedOnly {
			v, ok = r.Solution.Objectives[c]
		} else {
			v, ok = r.Lookup(c)
		}
		if ok && !math.IsNaN(v) {
			return v, true
		}
	}
	return math.NaN(), false
}

// TrajectoryIndex is the creation counter used as the time axis.
type TrajectoryIndex struct{}

// Name implements Metric.
func (TrajectoryIndex) Name() string { return TrajectoryName }

// Value implements Metric.
func (TrajectoryIndex) Value(r *solutionlog.SolutionRecord) (float64, bool) {
	if math.IsNaN(r.CreatedSolutions) {
		return math.NaN(), false
	}
	return r.CreatedSolutions, true
}

// Resolve turns a metric name into an accessor.
//
// An empty name or "createdSolutions" yields TrajectoryIndex. A "solution."
// prefix restricts the lookup to the nested solution object. Known objective
// names also match their schema aliases (flowDistance finds flowDistanceSum
// and the reverse). Any other single-segment name reads that field.
func Resolve(name string) (Metric, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == TrajectoryName {
		return TrajectoryIndex{}, nil
	}

	field := name
	nested := false
	if strings.HasPrefix(field, nestedPrefix) {
		field = strings.TrimPrefix(field, nestedPrefix)
		nested = true
	}
	if field == "" || strings.Contains(field, ".") {
		return nil, fmt.Errorf("%w: %q: only top-level and solution.<field> paths are supported", ErrInvalidMetric, name)
	}

	for _, fam := range families {
		for _, alias := range fam {
			if alias == field {
				return Field{name: name, family: fam[0], candidates: withFirst(fam, field), nestedOnly: nested}, nil
			}
		}
	}
	return Field{name: name, family: field, candidates: []string{field}, nestedOnly: nested}, nil
}

// MustResolve is Resolve for names known at compile time. It panics on error.
func MustResolve(name string) Metric {
	m, err := Resolve(name)
	if err != nil {
		panic(err)
	}
	return m
}

// IsTrajectory reports whether m is the trajectory index.
func IsTrajectory(m Metric) bool {
	_, ok := m.(TrajectoryIndex)
	return ok
}

// Same reports whether a and b name the same objective family. A
// "solution." path and its bare name are the same quantity.
func Same(a, b Metric) bool {
	if IsTrajectory(a) || IsTrajectory(b) {
		return IsTrajectory(a) && IsTrajectory(b)
	}
	fa, okA := a.(Field)
	fb, okB := b.(Field)
	if !okA || !okB {
		return a.Name() == b.Name()
	}
	return fa.family == fb.family
}

// Known returns the family key of every objective with schema aliases.
func Known() []string {
	out := make([]string, len(families))
	for i, fam := range families {
		out[i] = fam[0]
	}
	return out
}

// withFirst returns fam reordered so that first leads.
func withFirst(fam []string, first string) []string {
	out := make([]string, 0, len(fam))
	out = append(out, first)
	for _, f := range fam {
		if f != first {
			out = append(out, f)
		}
	}
	return out
}
