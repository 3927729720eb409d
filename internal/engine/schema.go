package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/leapstack-labs/strata/pkg/core"
)

// InitSchema creates the raw, cleansed and curated namespaces and the raw
// and cleansed tables when absent. It is safe to run repeatedly.
func (e *Engine) InitSchema(ctx context.Context) (err error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return err
	}

	run, err := e.beginRun(core.RunKindInit)
	if err != nil {
		return err
	}
	defer func() { e.finishRun(run, runStatus(err, false), err) }()

	e.logger.Info("initializing schemas", "layers", len(core.Layers()))

	for _, stmt := range catalog.SchemaStatements() {
		if err := e.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	for _, ent := range catalog.Entities() {
		for _, table := range []catalog.Table{ent.Raw, ent.Cleansed} {
			start := time.Now()
			if err := e.db.Exec(ctx, table.CreateStatement()); err != nil {
				e.recordTable(run.ID, table.Ref(), 0, time.Since(start), err)
				return fmt.Errorf("failed to create table %s: %w", table.Qualified(), err)
			}
			e.recordTable(run.ID, table.Ref(), 0, time.Since(start), nil)
		}
	}

	e.logger.Info("schemas ready")
	return nil
}

// checkTables fails when any table is missing from the target.
func (e *Engine) checkTables(ctx context.Context, tables []catalog.Table) error {
	for _, t := range tables {
		if _, err := e.db.GetTableMetadata(ctx, t.Qualified()); err != nil {
			return fmt.Errorf("%s layer is not ready: %w", t.Layer, err)
		}
	}
	return nil
}

func rawTables() []catalog.Table {
	ents := catalog.Entities()
	out := make([]catalog.Table, len(ents))
	for i, e := range ents {
		out[i] = e.Raw
	}
	return out
}

func cleansedTables() []catalog.Table {
	ents := catalog.Entities()
	out := make([]catalog.Table, len(ents))
	for i, e := range ents {
		out[i] = e.Cleansed
	}
	return out
}
