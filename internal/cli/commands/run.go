package commands

import (
	"fmt"

	"github.com/leapstack-labs/strata/internal/cli/output"
	"github.com/leapstack-labs/strata/internal/engine"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Aliases: []string{"build"},
		Short:   "Load raw, refresh cleansed and build curated in one run",
		Long: `Execute the whole pipeline as a single recorded run:

  1. load-raw       truncate and reload the raw tables
  2. load-cleansed  rebuild the cleansed tables
  3. curate         create or replace the curated views

Isolated raw load failures mark the run degraded and the pipeline continues.
With --strict the run stops after the raw load instead.`,
		Example: `  # Run everything
  strata run

  # Run with JSON output for CI/CD integration
  strata run --output json

  # Stop if any raw table failed
  strata run --strict`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}

	cmd.Flags().Bool("strict", false, "Stop after the raw load when any table failed")
	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	report, runErr := cc.Engine.Run(cmd.Context(), engine.RunOptions{Strict: cc.Cfg.Strict})
	if report == nil {
		return fmt.Errorf("run failed: %w", runErr)
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		out := output.RunOutput{
			RunID:      report.Run.ID,
			Status:     string(report.Run.Status),
			Error:      report.Run.Error,
			DurationMS: ms(report.Duration),
		}
		if report.Load != nil {
			out.Load = loadOutput(report.Load)
		}
		if report.Refresh != nil {
			out.Refresh = refreshOutput(report.Refresh)
		}
		if report.Curate != nil {
			out.Curate = curateOutput(report.Curate)
		}
		if err := r.JSON(out); err != nil {
			return err
		}
		return runErr
	}

	if report.Load != nil {
		renderLoad(r, report.Load)
		r.Println("")
	}
	if report.Refresh != nil {
		renderRefresh(r, report.Refresh)
		r.Println("")
	}
	if report.Curate != nil {
		renderCurate(r, report.Curate)
	}
	renderRunFooter(r, report.Run.ID, string(report.Run.Status), report.Duration)

	if runErr != nil {
		return fmt.Errorf("run %s failed: %w", report.Run.ID, runErr)
	}
	return nil
}
