// Package config loads the view configuration: which panels to chart, how
// to ingest logs and which way the objectives point.
//
// Files are YAML. Every file is checked against an embedded CUE schema before
// it is decoded, so unknown keys and out-of-range values are rejected with
// the schema's error rather than silently ignored.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/frontier/internal/pareto"
	"github.com/roach88/frontier/internal/projection"
	"github.com/roach88/frontier/internal/solutionlog"
)

// Ingest controls how solution logs are read.
type Ingest struct {
	// DropWarmup keeps only records with createdSolutions > 0.
	DropWarmup bool `yaml:"drop_warmup"`
}

// Panel is one configured chart.
type Panel struct {
	Title            string  `yaml:"title"`
	X                string  `yaml:"x"`
	Y                string  `yaml:"y"`
	ScaleXByAgents   bool    `yaml:"scale_x_by_agents"`
	UseSolutionIndex bool    `yaml:"use_solution_index"`
	ProgressBy       string  `yaml:"progress_by"`
	XFactor          float64 `yaml:"x_factor"`
}

// Config is the root view configuration.
type Config struct {
	Ingest      Ingest  `yaml:"ingest"`
	Orientation string  `yaml:"orientation"`
	Workers     int     `yaml:"workers"`
	Panels      []Panel `yaml:"panels"`
}

// Default returns the configuration the reference viewer behaves as: warm-up
// records dropped, objectives minimised and the default panel grid.
func Default() *Config {
	return &Config{
		Ingest:      Ingest{DropWarmup: true},
		Orientation: pareto.Minimize.String(),
	}
}

// Load validates the YAML file at path and decodes it over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return Parse(path, data)
}

// Parse is Load for an in-memory document. name is used in error messages.
func Parse(name string, data []byte) (*Config, error) {
	if err := Validate(name, data); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return cfg, nil
}

// IngestOptions converts the ingest section for solutionlog.Load.
func (c *Config) IngestOptions() solutionlog.IngestOptions {
	return solutionlog.IngestOptions{DropWarmup: c.Ingest.DropWarmup}
}

// ProjectionOptions returns the options for one chart, carrying the
// configured orientation and worker count.
func (c *Config) ProjectionOptions(p Panel, agentsFactor float64) (projection.Options, error) {
	o, err := pareto.ParseOrientation(c.Orientation)
	if err != nil {
		return projection.Options{}, err
	}
	factor := p.XFactor
	if factor == 0 && p.ScaleXByAgents {
		factor = agentsFactor
	}
	return projection.Options{
		Title:            p.Title,
		X:                p.X,
		Y:                p.Y,
		UseSolutionIndex: p.UseSolutionIndex,
		XFactor:          factor,
		ProgressBy:       p.ProgressBy,
		Orientation:      o,
		Workers:          c.Workers,
	}, nil
}

// PanelOptions returns the options for every configured panel, or the
// default grid scaled by agentsFactor when none are configured.
func (c *Config) PanelOptions(agentsFactor float64) ([]projection.Options, error) {
	o, err := pareto.ParseOrientation(c.Orientation)
	if err != nil {
		return nil, err
	}
	if len(c.Panels) == 0 {
		panels := projection.DefaultPanels(agentsFactor)
		for i := range panels {
			panels[i].Orientation = o
			panels[i].Workers = c.Workers
		}
		return panels, nil
	}

	out := make([]projection.Options, 0, len(c.Panels))
	for _, p := range c.Panels {
		opts, err := c.ProjectionOptions(p, agentsFactor)
		if err != nil {
			return nil, err
		}
		out = append(out, opts)
	}
	return out, nil
}
