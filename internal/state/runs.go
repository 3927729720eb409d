package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/strata/pkg/core"
)

type runRow struct {
	ID          string         `db:"id"`
	Kind        string         `db:"kind"`
	Target      string         `db:"target"`
	Status      string         `db:"status"`
	StartedAt   time.Time      `db:"started_at"`
	CompletedAt sql.NullTime   `db:"completed_at"`
	Error       sql.NullString `db:"error"`
}

const runColumns = `id, kind, target, status, started_at, completed_at, error`

// CreateRun creates a new pipeline run in the running state.
func (s *SQLiteStore) CreateRun(kind core.RunKind, target string) (*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &core.Run{
		ID:        generateID(),
		Kind:      kind,
		Target:    target,
		Status:    core.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("kind", string(kind)))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, kind, target, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.Target, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var row runRow
	err := s.db.Get(&row, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return row.toCore(), nil
}

// CompleteRun marks a run as finished with the given status.
func (s *SQLiteStore) CompleteRun(id string, status core.RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var errVal sql.NullString
	if errMsg != "" {
		errVal = sql.NullString{String: errMsg, Valid: true}
	}

	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), time.Now().UTC(), errVal, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetLatestRun retrieves the most recent run of a kind.
// Returns nil without error when no run exists.
func (s *SQLiteStore) GetLatestRun(kind core.RunKind) (*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var row runRow
	err := s.db.Get(&row,
		`SELECT `+runColumns+` FROM runs WHERE kind = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		string(kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return row.toCore(), nil
}

// ListRuns retrieves the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var rows []runRow
	err := s.db.Select(&rows,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*core.Run, len(rows))
	for i := range rows {
		runs[i] = rows[i].toCore()
	}
	return runs, nil
}

func (r runRow) toCore() *core.Run {
	run := &core.Run{
		ID:        r.ID,
		Kind:      core.RunKind(r.Kind),
		Target:    r.Target,
		Status:    core.RunStatus(r.Status),
		StartedAt: r.StartedAt,
		Error:     r.Error.String,
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		run.CompletedAt = &t
	}
	return run
}
