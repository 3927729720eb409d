package commands

import (
	"fmt"

	"github.com/leapstack-labs/strata/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewLoadRawCommand creates the load-raw command.
func NewLoadRawCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-raw",
		Short: "Reload the raw layer from the CSV exports",
		Long: `Truncate every raw table and bulk-load it from its CSV file.

A table whose file is missing or malformed is reported and left empty; the
remaining tables still load. Use --strict to exit with an error when any
table failed.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Load all six raw tables
  strata load-raw

  # Fail the command if any table could not be loaded
  strata load-raw --strict

  # Load from another export directory
  strata load-raw --sources-dir ./exports/2024-06-30`,
		Args: cobra.NoArgs,
		RunE: runLoadRaw,
	}

	cmd.Flags().Bool("strict", false, "Exit with an error when any table fails to load")
	return cmd
}

func runLoadRaw(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	report, err := cc.Engine.LoadRaw(cmd.Context())
	if err != nil {
		return fmt.Errorf("load-raw failed: %w", err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(loadOutput(report)); err != nil {
			return err
		}
	} else {
		renderLoad(r, report)
	}

	if failed := report.Failed(); len(failed) > 0 {
		if cc.Cfg.Strict {
			return report.Strict()
		}
		if r.EffectiveMode() != output.ModeJSON {
			r.Warning(fmt.Sprintf("%d of %d tables failed to load", len(failed), len(report.Tables)))
		}
	}
	return nil
}
