package commands

import (
	"fmt"

	"github.com/leapstack-labs/strata/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewCurateCommand creates the curate command.
func NewCurateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "curate",
		Short: "Create or replace the curated views",
		Long: `Create or replace curated.dim_customers, curated.dim_products and
curated.fact_sales over the cleansed tables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := cc.Engine.BuildCurated(cmd.Context())
			if err != nil {
				return fmt.Errorf("curate failed: %w", err)
			}

			if cc.Renderer.EffectiveMode() == output.ModeJSON {
				return cc.Renderer.JSON(curateOutput(report))
			}
			renderCurate(cc.Renderer, report)
			return nil
		},
	}
}
