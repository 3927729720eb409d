package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/leapstack-labs/strata/pkg/core"
)

// ViewResult is the outcome of creating one curated view.
type ViewResult struct {
	View     core.TableRef
	Duration time.Duration
}

// CurateReport lists the curated views that were (re)created.
type CurateReport struct {
	RunID    string
	Views    []ViewResult
	Duration time.Duration
}

// BuildCurated creates or replaces the curated views over the cleansed tables.
func (e *Engine) BuildCurated(ctx context.Context) (report *CurateReport, err error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	if err := e.checkTables(ctx, cleansedTables()); err != nil {
		return nil, err
	}

	run, err := e.beginRun(core.RunKindBuildCurated)
	if err != nil {
		return nil, err
	}
	defer func() { e.finishRun(run, runStatus(err, false), err) }()

	return e.buildCurated(ctx, run.ID)
}

func (e *Engine) buildCurated(ctx context.Context, runID string) (*CurateReport, error) {
	views, err := catalog.Views()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := &CurateReport{RunID: runID}
	e.logger.Info("building curated views", "views", len(views))

	for _, v := range views {
		vStart := time.Now()
		err := e.db.Exec(ctx, v.CreateStatement())
		d := time.Since(vStart)
		e.recordTable(runID, v.Ref(), 0, d, err)
		if err != nil {
			report.Duration = time.Since(start)
			return report, fmt.Errorf("failed to build view %s: %w", v.Ref(), err)
		}
		report.Views = append(report.Views, ViewResult{View: v.Ref(), Duration: d})
		e.logger.Info("built view", "view", v.Ref().Qualified(), "duration", d)
	}

	report.Duration = time.Since(start)
	return report, nil
}
