package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/frontier/internal/canon"
	"github.com/roach88/frontier/internal/solutionlog"
)

// WriteRun stores log under id in a single transaction. An existing run with
// the same id is deleted first, together with its solutions, and the new run
// is listed after every other run.
func (s *Store) WriteRun(ctx context.Context, id, source string, log *solutionlog.Log) error {
	if id == "" {
		return fmt.Errorf("write run: empty id")
	}
	if log == nil {
		return fmt.Errorf("write run %s: nil log", id)
	}

	instance, err := marshalInstance(log.Instance)
	if err != nil {
		return fmt.Errorf("write run %s: %w", id, err)
	}
	params, err := marshalParameters(log.Parameters)
	if err != nil {
		return fmt.Errorf("write run %s: %w", id, err)
	}
	stats, err := json.Marshal(log.Stats)
	if err != nil {
		return fmt.Errorf("write run %s: marshal stats: %w", id, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run %s: begin tx: %w", id, err)
	}
	defer tx.Rollback() // No-op if committed

	// foreign_keys=ON cascades the delete to solutions.
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("write run %s: delete previous: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, source, instance, parameters, stats)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?)
	`, id, source, instance, params, string(stats))
	if err != nil {
		return fmt.Errorf("write run %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO solutions
		(run_id, seq, line, created_solutions, worker_id, permutation, fields, objectives, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run %s: prepare: %w", id, err)
	}
	defer stmt.Close()

	for i := range log.Solutions {
		if err := writeSolution(ctx, stmt, id, &log.Solutions[i]); err != nil {
			return fmt.Errorf("write run %s: solution %d: %w", id, log.Solutions[i].Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", id, err)
	}
	return nil
}

func writeSolution(ctx context.Context, stmt *sql.Stmt, runID string, rec *solutionlog.SolutionRecord) error {
	fields, err := marshalFields(rec.Fields, rec.Extra)
	if err != nil {
		return err
	}
	objectives, err := marshalFields(rec.Solution.Objectives, rec.Solution.Extra)
	if err != nil {
		return err
	}
	perm, err := marshalPermutation(rec.Solution.Permutation)
	if err != nil {
		return err
	}
	digest, err := canon.SolutionDigest(rec.WorkerID, rec.Solution.Permutation)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		runID,
		rec.Seq,
		rec.Line,
		nullableFloat(rec.CreatedSolutions),
		rec.WorkerID,
		perm,
		fields,
		objectives,
		digest,
	)
	return err
}

// Import writes log under an ID drawn from gen and returns the ID.
func (s *Store) Import(ctx context.Context, gen IDGenerator, source string, log *solutionlog.Log) (string, error) {
	id := gen.Generate()
	if err := s.WriteRun(ctx, id, source, log); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteRun removes a run and its solutions.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
