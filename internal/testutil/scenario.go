package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is a log-format compatibility case: raw log text in, the
// expected load result and projections out. Scenarios live as YAML files so
// new log dialects can be pinned without writing Go.
type Scenario struct {
	// Name uniquely identifies the scenario.
	Name string `yaml:"name"`

	// Description says which log dialect or quirk the scenario pins.
	Description string `yaml:"description"`

	// Log is the solution log text, one JSON value per line.
	Log string `yaml:"log"`

	// KeepWarmup disables the warm-up filter for the load.
	KeepWarmup bool `yaml:"keep_warmup,omitempty"`

	// Expect describes the load result.
	Expect LoadExpect `yaml:"expect"`

	// Projections are charts to build from the loaded solutions.
	Projections []ProjectionExpect `yaml:"projections,omitempty"`
}

// LoadExpect describes the expected load result.
type LoadExpect struct {
	// ParseErrorLine, when set, is the line the load must fail at. The other
	// fields are ignored then.
	ParseErrorLine int `yaml:"parse_error_line,omitempty"`

	Solutions     int     `yaml:"solutions"`
	Skipped       int     `yaml:"skipped"`
	DroppedWarmup int     `yaml:"dropped_warmup"`
	Instance      bool    `yaml:"instance"`
	XFactor       float64 `yaml:"x_factor"`
}

// ProjectionExpect is one chart and the points it must contain.
type ProjectionExpect struct {
	X     string `yaml:"x"`
	Y     string `yaml:"y"`
	Index bool   `yaml:"index,omitempty"`

	// Mode is "progress" or "front".
	Mode string `yaml:"mode"`
	// Seqs are the record seqs of the points, in order.
	Seqs []int `yaml:"seqs"`
	// Xs are the x coordinates, in order. Omitted means unchecked.
	Xs []float64 `yaml:"xs,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown keys are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &sc, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[sc.Name]; ok {
			return nil, fmt.Errorf("scenario %q defined in %s and %s", sc.Name, prev, path)
		}
		seen[sc.Name] = path
		out = append(out, sc)
	}
	return out, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Log == "" {
		return fmt.Errorf("log is required")
	}
	if s.Expect.ParseErrorLine > 0 && len(s.Projections) > 0 {
		return fmt.Errorf("a scenario expecting a parse error cannot list projections")
	}
	for i, p := range s.Projections {
		if p.Y == "" {
			return fmt.Errorf("projections[%d]: y is required", i)
		}
		if p.Mode != "progress" && p.Mode != "front" {
			return fmt.Errorf("projections[%d]: mode must be progress or front, got %q", i, p.Mode)
		}
		if p.Xs != nil && len(p.Xs) != len(p.Seqs) {
			return fmt.Errorf("projections[%d]: %d xs for %d seqs", i, len(p.Xs), len(p.Seqs))
		}
	}
	return nil
}
