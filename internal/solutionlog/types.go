package solutionlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Factory is a location machines can be assigned to.
type Factory struct {
	Capacity float64 `json:"capacity"`
	PFailure float64 `json:"pFailure"`
}

// Machine is an item placed into a factory.
type Machine struct {
	Size float64 `json:"size"`
}

// Matrix wraps a square matrix the way the optimizer serializes it.
type Matrix struct {
	Matrix [][]float64 `json:"matrix"`
}

// Size returns the row count of the matrix.
func (m Matrix) Size() int {
	return len(m.Matrix)
}

// square reports whether every row has as many columns as there are rows.
func (m Matrix) square() bool {
	for _, row := range m.Matrix {
		if len(row) != len(m.Matrix) {
			return false
		}
	}
	return true
}

// Instance is the static problem description. It is set once per log and
// shared read-only with downstream consumers; Raw keeps the exact payload so
// external renderers see fields this package does not model.
type Instance struct {
	Factories      []Factory `json:"factories"`
	Machines       []Machine `json:"machines"`
	FlowMatrix     Matrix    `json:"flowMatrix"`
	DistanceMatrix Matrix    `json:"distanceMatrix"`

	Raw json.RawMessage `json:"-"`
}

type instanceAlias Instance

// UnmarshalJSON decodes an instance payload and retains the raw bytes.
// Members of an unexpected type are left zero rather than failing the line;
// Validate reports the resulting shape problems.
func (inst *Instance) UnmarshalJSON(data []byte) error {
	var a instanceAlias
	if err := json.Unmarshal(data, &a); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return err
		}
	}
	*inst = Instance(a)
	inst.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the original payload when one was decoded.
func (inst Instance) MarshalJSON() ([]byte, error) {
	if len(inst.Raw) > 0 {
		return inst.Raw, nil
	}
	return json.Marshal(instanceAlias(inst))
}

// Validate checks that both matrices are square and agree with the factory
// and machine lists when those are present.
func (inst *Instance) Validate() error {
	if !inst.FlowMatrix.square() {
		return fmt.Errorf("flow matrix is not square")
	}
	if !inst.DistanceMatrix.square() {
		return fmt.Errorf("distance matrix is not square")
	}
	if n := inst.DistanceMatrix.Size(); n > 0 && len(inst.Factories) > 0 && n != len(inst.Factories) {
		return fmt.Errorf("distance matrix has %d rows, want %d factories", n, len(inst.Factories))
	}
	if n := inst.FlowMatrix.Size(); n > 0 && len(inst.Machines) > 0 && n != len(inst.Machines) {
		return fmt.Errorf("flow matrix has %d rows, want %d machines", n, len(inst.Machines))
	}
	return nil
}

// Parameters is the run configuration. Only the agent count is interpreted.
type Parameters struct {
	Agents float64 `json:"agents"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes a parameters payload and retains the raw bytes.
// agents may be a number or a numeric string; anything else leaves it 0.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	p.Agents = 0
	if raw, ok := fields["agents"]; ok {
		p.Agents = lenientNumber(raw)
	}
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the original payload when one was decoded.
func (p Parameters) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(map[string]float64{"agents": p.Agents})
}

// XFactor is the multiplier applied to createdSolutions on progress charts.
// Each agent reports its own counter, so the global count is roughly the
// counter times the agent count. Nil or non-positive agents yield 1.
func (p *Parameters) XFactor() float64 {
	if p == nil || p.Agents <= 0 {
		return 1
	}
	return p.Agents
}

// Permutation assigns machines to factories. Entry i lists the factory
// machine i is placed in as its first element.
type Permutation [][]int

// UnmarshalJSON accepts an array of arrays of integral numbers. Integral
// floats such as 1.0 are truncated to ints.
func (p *Permutation) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*p = nil
		return nil
	}
	perm, ok := decodePermutation(data)
	if !ok {
		return fmt.Errorf("permutation is not an array of integer arrays")
	}
	*p = perm
	return nil
}

func decodePermutation(data []byte) (Permutation, bool) {
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil || rows == nil {
		return nil, false
	}
	perm := make(Permutation, len(rows))
	for i, row := range rows {
		perm[i] = make([]int, len(row))
		for j, v := range row {
			if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
				return nil, false
			}
			perm[i][j] = int(v)
		}
	}
	return perm, true
}

// FactoryOf returns the factory assigned to machine, or false when the
// permutation has no entry for it.
func (p Permutation) FactoryOf(machine int) (int, bool) {
	if machine < 0 || machine >= len(p) || len(p[machine]) == 0 {
		return 0, false
	}
	return p[machine][0], true
}

// Solution is the nested objectives-bearing payload of a solution record.
type Solution struct {
	Permutation Permutation
	// Objectives holds every numeric field of the payload by name.
	Objectives map[string]float64
	// Extra keeps the raw JSON of the other fields, nil when there are none.
	// A permutation of an unexpected shape lands here instead of Permutation.
	Extra map[string]json.RawMessage
}

// UnmarshalJSON splits the payload into the permutation, numeric fields and
// raw fields. A payload that is not an object decodes as empty.
func (s *Solution) UnmarshalJSON(data []byte) error {
	*s = Solution{Objectives: map[string]float64{}}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// Not an object: nothing to flatten.
		return nil
	}
	var keepRaw []string
	if raw, ok := fields["permutation"]; ok {
		perm, ok := decodePermutation(raw)
		switch {
		case ok:
			s.Permutation = perm
			delete(fields, "permutation")
		case isNull(raw):
			delete(fields, "permutation")
		default:
			keepRaw = append(keepRaw, "permutation")
		}
	}
	s.Objectives, s.Extra = splitFields(fields, keepRaw...)
	return nil
}

// MarshalJSON writes the payload back as a flat object.
func (s Solution) MarshalJSON() ([]byte, error) {
	m := mergeFields(s.Objectives, s.Extra)
	if s.Permutation != nil {
		m["permutation"] = s.Permutation
	}
	return json.Marshal(m)
}

// SolutionRecord is one sample of the search trajectory. Records are never
// mutated after ingestion.
type SolutionRecord struct {
	// Seq is the arrival position within the loaded log, starting at 0.
	Seq int
	// Line is the 1-based source line the record was parsed from.
	Line int
	// CreatedSolutions approximates how many solutions the worker had
	// generated. NaN when the log omits it.
	CreatedSolutions float64
	WorkerID         string
	// Fields holds the numeric top-level fields, createdSolutions included.
	Fields map[string]float64
	// Extra keeps the raw JSON of the remaining top-level fields, workerId
	// included in its original type. Nil when there are none.
	Extra    map[string]json.RawMessage
	Solution Solution
}

// UnmarshalJSON decodes a solution line. The type discriminator is dropped.
func (r *SolutionRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = SolutionRecord{CreatedSolutions: math.NaN()}
	delete(fields, "type")
	if raw, ok := fields["solution"]; ok {
		delete(fields, "solution")
		if err := json.Unmarshal(raw, &r.Solution); err != nil {
			return fmt.Errorf("solution: %w", err)
		}
	}
	if r.Solution.Objectives == nil {
		r.Solution.Objectives = map[string]float64{}
	}
	if raw, ok := fields["workerId"]; ok {
		r.WorkerID = workerID(raw)
	}
	r.Fields, r.Extra = splitFields(fields, "workerId")
	if v, ok := r.Fields["createdSolutions"]; ok {
		r.CreatedSolutions = v
	}
	return nil
}

// MarshalJSON writes the record in log form, without the type discriminator.
func (r SolutionRecord) MarshalJSON() ([]byte, error) {
	m := mergeFields(r.Fields, r.Extra)
	if _, ok := m["workerId"]; !ok && r.WorkerID != "" {
		m["workerId"] = r.WorkerID
	}
	m["solution"] = r.Solution
	return json.Marshal(m)
}

// Lookup resolves a numeric field on the flattened record. Nested solution
// fields shadow top-level fields of the same name, non-numeric ones included.
func (r *SolutionRecord) Lookup(name string) (float64, bool) {
	if v, ok := r.Solution.Objectives[name]; ok {
		return v, true
	}
	if _, ok := r.Solution.Extra[name]; ok {
		return 0, false
	}
	v, ok := r.Fields[name]
	return v, ok
}

// Flat returns the flattened numeric view of the record.
func (r *SolutionRecord) Flat() map[string]float64 {
	out := make(map[string]float64, len(r.Fields)+len(r.Solution.Objectives))
	for k, v := range r.Fields {
		if _, shadowed := r.Solution.Extra[k]; !shadowed {
			out[k] = v
		}
	}
	for k, v := range r.Solution.Objectives {
		out[k] = v
	}
	return out
}

// FieldNames returns the sorted names Lookup can resolve.
func (r *SolutionRecord) FieldNames() []string {
	flat := r.Flat()
	names := make([]string, 0, len(flat))
	for k := range flat {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SplitFields decodes a JSON object into its numeric members and the raw
// JSON of the rest. Keys listed in keepRaw stay raw even when numeric.
// nums is never nil; extra is nil when every member is numeric.
func SplitFields(data []byte, keepRaw ...string) (map[string]float64, map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, nil, err
	}
	nums, extra := splitFields(fields, keepRaw...)
	return nums, extra, nil
}

// MergeFields encodes numeric and raw members as one JSON object, the
// inverse of SplitFields. Keys are sorted.
func MergeFields(nums map[string]float64, extra map[string]json.RawMessage) ([]byte, error) {
	return json.Marshal(mergeFields(nums, extra))
}

func splitFields(fields map[string]json.RawMessage, keepRaw ...string) (map[string]float64, map[string]json.RawMessage) {
	nums := make(map[string]float64, len(fields))
	var extra map[string]json.RawMessage
	for k, raw := range fields {
		if v, ok := numberValue(raw); ok && !slices.Contains(keepRaw, k) {
			nums[k] = v
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = append(json.RawMessage(nil), bytes.TrimSpace(raw)...)
	}
	return nums, extra
}

func mergeFields(nums map[string]float64, extra map[string]json.RawMessage) map[string]any {
	m := make(map[string]any, len(nums)+len(extra)+2)
	for k, raw := range extra {
		m[k] = raw
	}
	for k, v := range nums {
		m[k] = v
	}
	return m
}

// numberValue decodes raw as a JSON number. Null, strings and other values
// report false so they are never mistaken for zero.
func numberValue(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// lenientNumber reads a number or a numeric string. Anything else is 0.
func lenientNumber(raw json.RawMessage) float64 {
	if v, ok := numberValue(raw); ok {
		return v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// workerID accepts numeric and string worker identifiers.
func workerID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	return string(raw)
}
