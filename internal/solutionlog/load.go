package solutionlog

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"sort"

	"github.com/roach88/frontier/internal/logging"
)

// WarmupThreshold is the createdSolutions value a record must exceed to
// survive ingestion when IngestOptions.DropWarmup is set. Records at or below
// it were emitted before the search loop started.
const WarmupThreshold = 0

// IngestOptions tunes how events are folded into a Log.
type IngestOptions struct {
	// DropWarmup discards solution records with createdSolutions <= WarmupThreshold.
	// A record without createdSolutions is dropped as well.
	DropWarmup bool
}

// Stats counts what a load saw.
type Stats struct {
	Lines         int `json:"lines"`
	Events        int `json:"events"`
	Skipped       int `json:"skipped"` // lines with no usable event
	Instances     int `json:"instances"`
	ParameterSets int `json:"parameterSets"`
	Solutions     int `json:"solutions"`
	DroppedWarmup int `json:"droppedWarmup"`
}

// Log is the result of loading one solution log.
//
// Instance and Parameters stay nil when the log has no such record. Solutions
// are in arrival order; any ordering used for display is computed on demand.
type Log struct {
	Instance   *Instance
	Parameters *Parameters
	Solutions  []SolutionRecord
	Stats      Stats
}

// Ingest folds an event stream into a Log. The first instance and the first
// parameters event win; later ones are counted but ignored. Solution records
// are appended in order and numbered by Seq. The first error aborts the
// ingestion and no Log is returned.
func Ingest(events iter.Seq2[Event, error], opts IngestOptions) (*Log, error) {
	l := &Log{Solutions: []SolutionRecord{}}
	for ev, err := range events {
		if err != nil {
			return nil, err
		}
		l.Stats.Events++

		switch ev.Kind {
		case KindInstance:
			l.Stats.Instances++
			if l.Instance == nil {
				l.Instance = ev.Instance
			}
		case KindParameters:
			l.Stats.ParameterSets++
			if l.Parameters == nil {
				l.Parameters = ev.Parameters
			}
		case KindSolution:
			rec := *ev.Solution
			// NaN fails the comparison, so records without a counter drop too.
			if opts.DropWarmup && !(rec.CreatedSolutions > WarmupThreshold) {
				l.Stats.DroppedWarmup++
				continue
			}
			rec.Seq = len(l.Solutions)
			l.Solutions = append(l.Solutions, rec)
		}
	}
	l.Stats.Solutions = len(l.Solutions)
	return l, nil
}

// Load parses r to the end and returns the resulting Log.
// Parse errors abort the load and are returned as *ParseError.
func Load(ctx context.Context, r io.Reader, opts IngestOptions) (*Log, error) {
	p := NewParser(r)
	l, err := Ingest(p.All(), opts)
	if err != nil {
		return nil, err
	}
	l.Stats.Lines = p.Line()
	l.Stats.Skipped = p.Skipped()

	logging.FromContext(ctx).Debug("solution log loaded",
		"lines", l.Stats.Lines,
		"solutions", l.Stats.Solutions,
		"dropped_warmup", l.Stats.DroppedWarmup,
		"skipped", l.Stats.Skipped,
		"has_instance", l.Instance != nil,
		"has_parameters", l.Parameters != nil,
	)
	return l, nil
}

// LoadFile opens path and loads it.
func LoadFile(ctx context.Context, path string, opts IngestOptions) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open solution log: %w", err)
	}
	defer f.Close()

	l, err := Load(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return l, nil
}

// XFactor returns the progress-chart multiplier derived from the parameters.
func (l *Log) XFactor() float64 {
	return l.Parameters.XFactor()
}

// FieldNames returns the sorted union of numeric field names across all
// solution records.
func (l *Log) FieldNames() []string {
	seen := make(map[string]struct{})
	for i := range l.Solutions {
		for _, name := range l.Solutions[i].FieldNames() {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
