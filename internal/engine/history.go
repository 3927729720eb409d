package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/leapstack-labs/strata/pkg/adapter"
	"github.com/leapstack-labs/strata/pkg/core"
)

// RunHistory is a recorded run with its table outcomes.
type RunHistory struct {
	Run    *core.Run
	Tables []*core.TableRun
}

// History returns the most recent runs, newest first.
func (e *Engine) History(limit int) ([]RunHistory, error) {
	runs, err := e.store.ListRuns(limit)
	if err != nil {
		return nil, err
	}

	out := make([]RunHistory, len(runs))
	for i, r := range runs {
		tables, err := e.store.GetTableRunsForRun(r.ID)
		if err != nil {
			return nil, err
		}
		out[i] = RunHistory{Run: r, Tables: tables}
	}
	return out, nil
}

// TableStat is the current state of one pipeline table or view.
type TableStat struct {
	Table   core.TableRef
	Exists  bool
	Rows    int64
	Columns int
}

// TableStats reports row counts for every raw, cleansed and curated object.
// Missing objects are reported with Exists false.
func (e *Engine) TableStats(ctx context.Context) ([]TableStat, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	refs := make([]core.TableRef, 0, 2*len(catalog.Names())+3)
	for _, t := range rawTables() {
		refs = append(refs, t.Ref())
	}
	for _, t := range cleansedTables() {
		refs = append(refs, t.Ref())
	}
	views, err := catalog.Views()
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		refs = append(refs, v.Ref())
	}

	stats := make([]TableStat, 0, len(refs))
	for _, ref := range refs {
		meta, err := e.db.GetTableMetadata(ctx, ref.Qualified())
		var notFound *adapter.TableNotFoundError
		switch {
		case errors.As(err, &notFound):
			stats = append(stats, TableStat{Table: ref})
		case err != nil:
			return nil, fmt.Errorf("failed to inspect %s: %w", ref, err)
		default:
			stats = append(stats, TableStat{Table: ref, Exists: true, Rows: meta.RowCount, Columns: len(meta.Columns)})
		}
	}
	return stats, nil
}
