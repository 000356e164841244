package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/frontier/internal/solutionlog"
)

// Run is an archived solution log.
type Run struct {
	ID     string
	Source string
	Log    *solutionlog.Log
}

// RunSummary describes an archived run without its solutions.
type RunSummary struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	// Solutions is the number of stored records.
	Solutions int `json:"solutions"`
	// DistinctSolutions counts distinct (workerId, permutation) pairs.
	DistinctSolutions int               `json:"distinctSolutions"`
	HasInstance       bool              `json:"hasInstance"`
	HasParameters     bool              `json:"hasParameters"`
	Stats             solutionlog.Stats `json:"stats"`
}

const summaryQuery = `
	SELECT r.id, r.source, r.instance IS NOT NULL, r.parameters IS NOT NULL, r.stats,
	       COUNT(s.seq), COUNT(DISTINCT s.digest)
	FROM runs r
	LEFT JOIN solutions s ON s.run_id = r.id
`

// ListRuns returns every run in the order it was written.
//
// Returns an empty slice (not nil) when the archive is empty.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, summaryQuery+`
		GROUP BY r.id, r.seq
		ORDER BY r.seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Summary returns the summary of one run.
func (s *Store) Summary(ctx context.Context, id string) (RunSummary, error) {
	row := s.db.QueryRowContext(ctx, summaryQuery+`
		WHERE r.id = ?
		GROUP BY r.id, r.seq
	`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("summary %s: %w", id, ErrRunNotFound)
	}
	return sum, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (RunSummary, error) {
	var (
		sum   RunSummary
		stats string
	)
	err := row.Scan(&sum.ID, &sum.Source, &sum.HasInstance, &sum.HasParameters, &stats,
		&sum.Solutions, &sum.DistinctSolutions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunSummary{}, err
		}
		return RunSummary{}, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(stats), &sum.Stats); err != nil {
		return RunSummary{}, fmt.Errorf("unmarshal stats: %w", err)
	}
	return sum, nil
}

// ReadRun loads an archived run. Solutions come back in arrival order.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	var (
		source           string
		instance, params sql.NullString
		stats            string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT source, instance, parameters, stats FROM runs WHERE id = ?
	`, id).Scan(&source, &instance, &params, &stats)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	log := &solutionlog.Log{}
	if log.Instance, err = unmarshalInstance(instance); err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}
	if log.Parameters, err = unmarshalParameters(params); err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(stats), &log.Stats); err != nil {
		return nil, fmt.Errorf("read run %s: unmarshal stats: %w", id, err)
	}
	if log.Solutions, err = s.readSolutions(ctx, id); err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	return &Run{ID: id, Source: source, Log: log}, nil
}

func (s *Store) readSolutions(ctx context.Context, runID string) ([]solutionlog.SolutionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, line, created_solutions, worker_id, permutation, fields, objectives
		FROM solutions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query solutions: %w", err)
	}
	defer rows.Close()

	solutions := []solutionlog.SolutionRecord{}
	for rows.Next() {
		rec, err := scanSolution(rows)
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solutions: %w", err)
	}
	return solutions, nil
}

func scanSolution(row scanner) (solutionlog.SolutionRecord, error) {
	var (
		created            sql.NullFloat64
		r                  solutionlog.SolutionRecord
		perm               sql.NullString
		fields, objectives string
	)
	if err := row.Scan(&r.Seq, &r.Line, &created, &r.WorkerID, &perm, &fields, &objectives); err != nil {
		return r, fmt.Errorf("scan solution: %w", err)
	}
	r.CreatedSolutions = floatOrNaN(created)

	var err error
	if r.Fields, r.Extra, err = unmarshalFields(fields, "workerId"); err != nil {
		return r, err
	}
	if r.Solution.Objectives, r.Solution.Extra, err = unmarshalFields(objectives, "permutation"); err != nil {
		return r, err
	}
	if r.Solution.Permutation, err = unmarshalPermutation(perm); err != nil {
		return r, err
	}
	return r, nil
}
