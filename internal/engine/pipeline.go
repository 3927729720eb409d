package engine

import (
	"context"
	"time"

	"github.com/leapstack-labs/strata/pkg/core"
)

// RunOptions configures a full pipeline run.
type RunOptions struct {
	// Strict stops the pipeline after the raw load when any table failed.
	Strict bool
}

// PipelineReport collects the reports of every stage that ran.
// Stages that did not run are nil.
type PipelineReport struct {
	Run      *core.Run
	Load     *LoadReport
	Refresh  *RefreshReport
	Curate   *CurateReport
	Duration time.Duration
}

// Run executes the raw load, the cleansed refresh and the curated build in
// order, recorded as a single run. Schemas must already exist.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (report *PipelineReport, err error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	if err := e.checkTables(ctx, append(rawTables(), cleansedTables()...)); err != nil {
		return nil, err
	}

	run, err := e.beginRun(core.RunKindFullPipeline)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report = &PipelineReport{Run: run}
	defer func() {
		report.Duration = time.Since(start)
		degraded := report.Load != nil && len(report.Load.Failed()) > 0
		e.finishRun(run, runStatus(err, degraded), err)
	}()

	e.logger.Info("starting run", "run_id", run.ID, "target", e.dbConfig.Type)

	if report.Load, err = e.loadRaw(ctx, run.ID); err != nil {
		return report, err
	}
	if opts.Strict {
		if err = report.Load.Strict(); err != nil {
			return report, err
		}
	}

	if report.Refresh, err = e.refreshCleansed(ctx, run.ID); err != nil {
		return report, err
	}

	if report.Curate, err = e.buildCurated(ctx, run.ID); err != nil {
		return report, err
	}

	e.logger.Info("run completed", "run_id", run.ID)
	return report, nil
}
