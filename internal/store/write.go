package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// WriteRun inserts a run and its expectations in one transaction and returns
// the seq it was assigned. Writing an ID that already exists is a no-op that
// returns the existing seq.
func (s *Store) WriteRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&existing)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("write run: lookup: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, scenario, pass, digest, snapshot, engine_version, snapshot_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		seq,
		run.Scenario,
		boolToInt(run.Pass),
		run.Digest,
		run.Snapshot,
		run.EngineVersion,
		run.SnapshotVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	for _, e := range run.Expectations {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO expectations
			(run_id, idx, kind, source, pass, digest, actual, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			e.Index,
			e.Kind,
			e.Source,
			boolToInt(e.Pass),
			e.Digest,
			e.Actual,
			e.Error,
		)
		if err != nil {
			return 0, fmt.Errorf("write expectation %d: %w", e.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
