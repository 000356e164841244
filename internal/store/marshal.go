package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/frontier/internal/solutionlog"
)

// marshalInstance stores the instance payload as JSON TEXT, or NULL when the
// log had none. The retained raw bytes are stored as is.
func marshalInstance(inst *solutionlog.Instance) (sql.NullString, error) {
	if inst == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(inst)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal instance: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func marshalParameters(p *solutionlog.Parameters) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal parameters: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// marshalFields stores numeric and raw members as one JSON object.
// Keys are sorted, so equal records store equal text.
func marshalFields(nums map[string]float64, extra map[string]json.RawMessage) (string, error) {
	if len(nums) == 0 && len(extra) == 0 {
		return "{}", nil
	}
	data, err := solutionlog.MergeFields(nums, extra)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(data), nil
}

func marshalPermutation(p solutionlog.Permutation) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal permutation: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// nullableFloat maps NaN, the in-memory marker for an absent counter, to NULL.
func nullableFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// unmarshalFields splits a stored object back into numbers and raw members.
// keepRaw names members that were raw when written even if numeric.
func unmarshalFields(data string, keepRaw ...string) (map[string]float64, map[string]json.RawMessage, error) {
	if data == "" || data == "{}" {
		return map[string]float64{}, nil, nil
	}
	nums, extra, err := solutionlog.SplitFields([]byte(data), keepRaw...)
	if err != nil {
		return nil, nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return nums, extra, nil
}

func unmarshalPermutation(data sql.NullString) (solutionlog.Permutation, error) {
	if !data.Valid {
		return nil, nil
	}
	var p solutionlog.Permutation
	if err := json.Unmarshal([]byte(data.String), &p); err != nil {
		return nil, fmt.Errorf("unmarshal permutation: %w", err)
	}
	return p, nil
}

func unmarshalInstance(data sql.NullString) (*solutionlog.Instance, error) {
	if !data.Valid {
		return nil, nil
	}
	var inst solutionlog.Instance
	if err := json.Unmarshal([]byte(data.String), &inst); err != nil {
		return nil, fmt.Errorf("unmarshal instance: %w", err)
	}
	return &inst, nil
}

func unmarshalParameters(data sql.NullString) (*solutionlog.Parameters, error) {
	if !data.Valid {
		return nil, nil
	}
	var p solutionlog.Parameters
	if err := json.Unmarshal([]byte(data.String), &p); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}
	return &p, nil
}
