package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/leapstack-labs/strata/pkg/core"
)

type tableRunRow struct {
	ID           string         `db:"id"`
	RunID        string         `db:"run_id"`
	Table        string         `db:"table_name"`
	Layer        string         `db:"layer"`
	Status       string         `db:"status"`
	RowsAffected int64          `db:"rows_affected"`
	Error        sql.NullString `db:"error"`
	ExecutionMS  int64          `db:"execution_ms"`
	RecordedAt   time.Time      `db:"recorded_at"`
}

// RecordTableRun stores the outcome of one table within a run.
// ID and RecordedAt are filled in when empty.
func (s *SQLiteStore) RecordTableRun(tr *core.TableRun) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if tr.ID == "" {
		tr.ID = generateID()
	}
	if tr.RecordedAt.IsZero() {
		tr.RecordedAt = time.Now().UTC()
	}

	var errVal sql.NullString
	if tr.Error != "" {
		errVal = sql.NullString{String: tr.Error, Valid: true}
	}

	_, err := s.db.NamedExec(`
		INSERT INTO table_runs (id, run_id, table_name, layer, status, rows_affected, error, execution_ms, recorded_at)
		VALUES (:id, :run_id, :table_name, :layer, :status, :rows_affected, :error, :execution_ms, :recorded_at)`,
		tableRunRow{
			ID:           tr.ID,
			RunID:        tr.RunID,
			Table:        tr.Table,
			Layer:        string(tr.Layer),
			Status:       string(tr.Status),
			RowsAffected: tr.RowsAffected,
			Error:        errVal,
			ExecutionMS:  tr.ExecutionMS,
			RecordedAt:   tr.RecordedAt,
		})
	if err != nil {
		return fmt.Errorf("failed to record table run for %s: %w", tr.Table, err)
	}
	return nil
}

// GetTableRunsForRun returns the table runs of a run in recording order.
func (s *SQLiteStore) GetTableRunsForRun(runID string) ([]*core.TableRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var rows []tableRunRow
	err := s.db.Select(&rows, `
		SELECT id, run_id, table_name, layer, status, rows_affected, error, execution_ms, recorded_at
		FROM table_runs
		WHERE run_id = ?
		ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get table runs: %w", err)
	}

	out := make([]*core.TableRun, len(rows))
	for i, r := range rows {
		out[i] = &core.TableRun{
			ID:           r.ID,
			RunID:        r.RunID,
			Table:        r.Table,
			Layer:        core.Layer(r.Layer),
			Status:       core.TableRunStatus(r.Status),
			RowsAffected: r.RowsAffected,
			Error:        r.Error.String,
			ExecutionMS:  r.ExecutionMS,
			RecordedAt:   r.RecordedAt,
		}
	}
	return out, nil
}
