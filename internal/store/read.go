package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

const runColumns = `id, seq, scenario, pass, digest, snapshot, engine_version, snapshot_version`

// ReadRun returns the run with the given ID, including its expectations.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}

	run.Expectations, err = s.readExpectations(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns runs without their expectations, optionally filtered by
// scenario name. Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context, scenario string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if scenario != "" {
		query += ` WHERE scenario = ?`
		args = append(args, scenario)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run of a scenario. The boolean is false
// when the scenario has never been recorded.
func (s *Store) LatestRun(ctx context.Context, scenario string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE scenario = ?
		ORDER BY seq DESC
		LIMIT 1
	`, scenario)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("latest run %s: %w", scenario, err)
	}
	return run, true, nil
}

func (s *Store) readExpectations(ctx context.Context, runID string) ([]Expectation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, kind, source, pass, digest, actual, error
		FROM expectations
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query expectations: %w", err)
	}
	defer rows.Close()

	expectations := []Expectation{}
	for rows.Next() {
		var (
			e    Expectation
			pass int
		)
		if err := rows.Scan(&e.Index, &e.Kind, &e.Source, &pass, &e.Digest, &e.Actual, &e.Error); err != nil {
			return nil, fmt.Errorf("scan expectation: %w", err)
		}
		e.Pass = pass == 1
		expectations = append(expectations, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expectations: %w", err)
	}
	return expectations, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run  Run
		pass int
	)
	err := sc.Scan(&run.ID, &run.Seq, &run.Scenario, &pass, &run.Digest, &run.Snapshot,
		&run.EngineVersion, &run.SnapshotVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Pass = pass == 1
	return run, nil
}
