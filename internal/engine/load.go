package engine

import (
	"context"
	"time"

	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/leapstack-labs/strata/pkg/core"
)

// TableResult is the outcome of loading one raw table.
type TableResult struct {
	Table    core.TableRef
	File     string
	Rows     int64
	Duration time.Duration
	// Err is nil on success, otherwise a *LoadError.
	Err  error
	Kind LoadErrorKind
}

// OK reports whether the table loaded.
func (r TableResult) OK() bool {
	return r.Err == nil
}

// LoadReport aggregates the per-table outcomes of a raw load.
type LoadReport struct {
	RunID    string
	Tables   []TableResult
	Duration time.Duration
}

// Failed returns the tables that did not load.
func (r *LoadReport) Failed() []TableResult {
	var out []TableResult
	for _, t := range r.Tables {
		if !t.OK() {
			out = append(out, t)
		}
	}
	return out
}

// Rows returns the total number of rows loaded.
func (r *LoadReport) Rows() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}

// Strict returns a *StrictError when any table failed, nil otherwise.
func (r *LoadReport) Strict() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	errs := make([]*LoadError, len(failed))
	for i, f := range failed {
		errs[i] = f.Err.(*LoadError)
	}
	return &StrictError{Failed: errs}
}

// LoadRaw truncates and reloads every raw table from its CSV file.
//
// Raw tables are a full-refresh snapshot: previous contents are discarded
// on every call. A failure in one table (missing file, malformed row, type
// mismatch) is logged, recorded in the report and leaves that table empty;
// later tables still load. The returned error is reserved for fatal
// conditions: connection failure, missing raw tables, or cancellation.
func (e *Engine) LoadRaw(ctx context.Context) (report *LoadReport, err error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	if err := e.checkTables(ctx, rawTables()); err != nil {
		return nil, err
	}

	run, err := e.beginRun(core.RunKindLoadRaw)
	if err != nil {
		return nil, err
	}
	defer func() {
		degraded := report != nil && len(report.Failed()) > 0
		e.finishRun(run, runStatus(err, degraded), err)
	}()

	return e.loadRaw(ctx, run.ID)
}

func (e *Engine) loadRaw(ctx context.Context, runID string) (*LoadReport, error) {
	start := time.Now()
	ents := catalog.Entities()
	report := &LoadReport{RunID: runID, Tables: make([]TableResult, 0, len(ents))}

	e.logger.Info("starting raw load", "tables", len(ents))

	for _, ent := range ents {
		res := e.loadTable(ctx, ent)
		e.recordTable(runID, res.Table, res.Rows, res.Duration, res.Err)
		report.Tables = append(report.Tables, res)

		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	e.logger.Info("raw load finished",
		"loaded", len(report.Tables)-len(report.Failed()),
		"failed", len(report.Failed()),
		"rows", report.Rows(),
		"duration", report.Duration)
	return report, nil
}

func (e *Engine) loadTable(ctx context.Context, ent catalog.Entity) TableResult {
	path := e.sources.Path(ent)
	res := TableResult{Table: ent.Raw.Ref(), File: path}

	e.logger.Info("loading table", "table", ent.Raw.Qualified(), "file", path)

	start := time.Now()
	n, err := e.db.LoadCSV(ctx, ent.Raw.Qualified(), path)
	res.Duration = time.Since(start)

	if err != nil {
		res.Kind = classifyLoadError(err)
		res.Err = &LoadError{Table: ent.Raw.Qualified(), File: path, Kind: res.Kind, Err: err}
		e.logger.Error("failed to load table",
			"table", ent.Raw.Qualified(),
			"kind", res.Kind,
			"error", err.Error())
		return res
	}

	res.Rows = n
	e.logger.Info("loaded table",
		"table", ent.Raw.Qualified(),
		"rows", n,
		"duration", res.Duration)
	return res
}
