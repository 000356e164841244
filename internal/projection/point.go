package projection

import (
	"encoding/json"
	"math"

	"github.com/roach88/frontier/internal/solutionlog"
)

// Point is one plotted solution. X or Y is NaN when the record lacks the
// metric; the renderer decides how to show such points.
type Point struct {
	X    float64
	Y    float64
	Size float64
	// Record is the source record. It is shared, not copied.
	Record *solutionlog.SolutionRecord
}

// Missing reports whether either coordinate is absent.
func (p Point) Missing() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// MarshalJSON flattens the point into {x, y, ...record fields}. Fields keep
// their logged JSON type and nested solution fields win over top-level ones.
// Missing coordinates encode as null. Keys are sorted, so output is
// deterministic.
func (p Point) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if r := p.Record; r != nil {
		for k, raw := range r.Extra {
			m[k] = raw
		}
		for k, v := range r.Fields {
			m[k] = v
		}
		for k, raw := range r.Solution.Extra {
			m[k] = raw
		}
		for k, v := range r.Solution.Objectives {
			m[k] = v
		}
		if _, ok := m["workerId"]; !ok && r.WorkerID != "" {
			m["workerId"] = r.WorkerID
		}
		if r.Solution.Permutation != nil {
			m["permutation"] = r.Solution.Permutation
		}
		m["seq"] = r.Seq
	}
	m["x"] = nullable(p.X)
	m["y"] = nullable(p.Y)
	if p.Size > 0 {
		m["size"] = p.Size
	}
	return json.Marshal(m)
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
