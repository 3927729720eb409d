package commands

import (
	"fmt"

	"github.com/leapstack-labs/strata/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewLoadCleansedCommand creates the load-cleansed command.
func NewLoadCleansedCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "load-cleansed",
		Aliases: []string{"refresh"},
		Short:   "Rebuild the cleansed layer from the raw layer",
		Long: `Rewrite every cleansed table from the current raw contents.

Customers are deduplicated, codes are mapped to their labels, dates are
validated and sales amounts are repaired. Each table is replaced atomically;
the first failure stops the refresh and earlier tables keep their new contents.`,
		Example: `  # Refresh after a raw load
  strata load-raw && strata load-cleansed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := cc.Engine.RefreshCleansed(cmd.Context())
			if err != nil {
				return fmt.Errorf("load-cleansed failed: %w", err)
			}

			if cc.Renderer.EffectiveMode() == output.ModeJSON {
				return cc.Renderer.JSON(refreshOutput(report))
			}
			renderRefresh(cc.Renderer, report)
			return nil
		},
	}
}
