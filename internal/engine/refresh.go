package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/leapstack-labs/strata/internal/cleanse"
	"github.com/leapstack-labs/strata/pkg/adapter"
	"github.com/leapstack-labs/strata/pkg/core"
)

// EntityResult is the outcome of refreshing one cleansed table.
type EntityResult struct {
	Table core.TableRef
	// Input is the number of raw rows read.
	Input int
	// Rows is the number of cleansed rows written.
	Rows     int64
	Dropped  int
	Duration time.Duration
}

// RefreshReport aggregates a cleansed refresh.
type RefreshReport struct {
	RunID    string
	LoadedAt time.Time
	Entities []EntityResult
	Duration time.Duration
}

// RefreshCleansed rebuilds every cleansed table from the current raw tables.
//
// Each cleansed table is replaced in full inside one transaction; there is
// no incremental merge. The first transform or write error aborts the
// remaining entities and is returned as a *TransformError. Entities
// refreshed before the error keep their new contents.
func (e *Engine) RefreshCleansed(ctx context.Context) (report *RefreshReport, err error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	if err := e.checkTables(ctx, append(rawTables(), cleansedTables()...)); err != nil {
		return nil, err
	}

	run, err := e.beginRun(core.RunKindLoadCleansed)
	if err != nil {
		return nil, err
	}
	defer func() { e.finishRun(run, runStatus(err, false), err) }()

	return e.refreshCleansed(ctx, run.ID)
}

func (e *Engine) refreshCleansed(ctx context.Context, runID string) (*RefreshReport, error) {
	start := time.Now()
	report := &RefreshReport{RunID: runID, LoadedAt: e.clock()}

	e.logger.Info("starting cleansed refresh", "entities", len(catalog.Entities()))

	for _, ent := range catalog.Entities() {
		res, err := e.refreshEntity(ctx, ent, report.LoadedAt)
		e.recordTable(runID, ent.Cleansed.Ref(), res.Rows, res.Duration, err)
		if err != nil {
			report.Duration = time.Since(start)
			e.logger.Error("cleansed refresh aborted", "table", ent.Cleansed.Qualified(), "error", err.Error())
			return report, err
		}
		report.Entities = append(report.Entities, res)

		e.logger.Info("refreshed table",
			"table", ent.Cleansed.Qualified(),
			"input", res.Input,
			"rows", res.Rows,
			"dropped", res.Dropped,
			"duration", res.Duration)
	}

	report.Duration = time.Since(start)
	e.logger.Info("cleansed refresh finished", "duration", report.Duration)
	return report, nil
}

func (e *Engine) refreshEntity(ctx context.Context, ent catalog.Entity, loadedAt time.Time) (res EntityResult, err error) {
	res.Table = ent.Cleansed.Ref()
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	tr, ok := cleanse.ForEntity(ent.Name)
	if !ok {
		return res, &TransformError{Entity: ent.Name, Err: fmt.Errorf("no transform registered")}
	}

	records, err := e.readTable(ctx, ent.Raw)
	if err != nil {
		return res, &TransformError{Entity: ent.Name, Err: err}
	}

	out, err := tr.Apply(records, loadedAt)
	if err != nil {
		return res, &TransformError{Entity: ent.Name, Err: err}
	}

	n, err := e.db.ReplaceRows(ctx, ent.Cleansed.Qualified(), ent.Cleansed.ColumnNames(), out.Rows)
	if err != nil {
		return res, &TransformError{Entity: ent.Name, Err: err}
	}

	res.Input = out.Input
	res.Rows = n
	res.Dropped = out.Dropped()
	return res, nil
}

// readTable selects every row of a table into column-keyed records.
func (e *Engine) readTable(ctx context.Context, t catalog.Table) ([]cleanse.Record, error) {
	cols := t.ColumnNames()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = adapter.QuoteIdent(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), adapter.QuoteQualified(t.Qualified()))

	rows, err := e.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.Qualified(), err)
	}
	defer func() { _ = rows.Close() }()

	var records []cleanse.Record
	for rows.Next() {
		rec := make(map[string]any, len(cols))
		if err := sqlx.MapScan(rows.Rows, rec); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.Qualified(), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.Qualified(), err)
	}
	return records, nil
}
