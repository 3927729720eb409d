package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/strata/internal/cli/output"
	"github.com/leapstack-labs/strata/internal/engine"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int
	Tables bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs and their per-table outcomes",
		Long: `List recorded runs, newest first, with the outcome of every table each run touched.

Use --tables to also show the current row count of every pipeline table and view.`,
		Example: `  # Last 10 runs
  strata history --limit 10

  # Runs plus current table sizes, as JSON
  strata history --tables --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&opts.Tables, "tables", false, "Show current row counts of every table and view")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	if opts.Limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", opts.Limit)
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cc.Engine.History(opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to read run history: %w", err)
	}

	var stats []engine.TableStat
	if opts.Tables {
		if stats, err = cc.Engine.TableStats(cmd.Context()); err != nil {
			return fmt.Errorf("failed to read table stats: %w", err)
		}
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(historyOutput(runs, stats))
	case output.ModeText:
		historyText(r, runs, stats)
	default:
		historyMarkdown(r, runs, stats)
	}
	return nil
}

func historyOutput(runs []engine.RunHistory, stats []engine.TableStat) output.HistoryOutput {
	out := output.HistoryOutput{Runs: make([]output.RunInfo, 0, len(runs))}
	for _, h := range runs {
		info := output.RunInfo{
			ID:          h.Run.ID,
			Kind:        string(h.Run.Kind),
			Target:      h.Run.Target,
			Status:      string(h.Run.Status),
			StartedAt:   h.Run.StartedAt,
			CompletedAt: h.Run.CompletedAt,
			Error:       h.Run.Error,
		}
		for _, tr := range h.Tables {
			info.Tables = append(info.Tables, output.TableRunInfo{
				Table:       tr.Table,
				Layer:       string(tr.Layer),
				Status:      string(tr.Status),
				Rows:        tr.RowsAffected,
				ExecutionMS: tr.ExecutionMS,
				Error:       tr.Error,
			})
		}
		out.Runs = append(out.Runs, info)
	}
	for _, s := range stats {
		out.Tables = append(out.Tables, output.TableInfo{
			Table:   s.Table.Qualified(),
			Exists:  s.Exists,
			Rows:    s.Rows,
			Columns: s.Columns,
		})
	}
	return out
}

func historyText(r *output.Renderer, runs []engine.RunHistory, stats []engine.TableStat) {
	r.Header(1, "run history")
	if len(runs) == 0 {
		r.Muted("No runs recorded yet. Try 'strata run'.")
	}

	for _, h := range runs {
		r.Println("")
		detail := fmt.Sprintf("%s · %s · %s", h.Run.Kind, h.Run.Target, h.Run.StartedAt.Local().Format(time.DateTime))
		r.StatusLine(h.Run.ID, string(h.Run.Status), detail)
		for _, tr := range h.Tables {
			line := fmt.Sprintf("%d rows · %dms", tr.RowsAffected, tr.ExecutionMS)
			if tr.Error != "" {
				line = tr.Error
			}
			r.StatusLine("  "+tr.Table, string(tr.Status), line)
		}
		if h.Run.Error != "" {
			r.Error(h.Run.Error)
		}
	}

	if len(stats) > 0 {
		r.Println("")
		r.Header(2, "tables")
		r.Table([]string{"Table", "Exists", "Rows", "Columns"}, statRows(stats))
	}
}

func historyMarkdown(r *output.Renderer, runs []engine.RunHistory, stats []engine.TableStat) {
	r.Println(output.FormatHeader(1, "run history"))
	r.Println("")
	if len(runs) == 0 {
		r.Println("No runs recorded yet.")
	}

	rows := make([][]any, 0, len(runs))
	for _, h := range runs {
		var failed []string
		for _, tr := range h.Tables {
			if tr.Error != "" {
				failed = append(failed, tr.Table)
			}
		}
		rows = append(rows, []any{
			h.Run.ID, h.Run.Kind, h.Run.Target, h.Run.Status,
			h.Run.StartedAt.UTC().Format(time.RFC3339), len(h.Tables), len(failed),
		})
	}
	if len(rows) > 0 {
		r.Table([]string{"Run", "Kind", "Target", "Status", "Started", "Tables", "Failed"}, rows)
	}

	if len(stats) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "tables"))
		r.Println("")
		r.Table([]string{"Table", "Exists", "Rows", "Columns"}, statRows(stats))
	}
}

func statRows(stats []engine.TableStat) [][]any {
	rows := make([][]any, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []any{s.Table.Qualified(), s.Exists, s.Rows, s.Columns})
	}
	return rows
}
