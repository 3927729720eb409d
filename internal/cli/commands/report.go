package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/strata/internal/cli/output"
	"github.com/leapstack-labs/strata/internal/engine"
)

func ms(d time.Duration) int64 {
	return d.Milliseconds()
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

// --- conversions to the JSON payloads ---

func loadOutput(rep *engine.LoadReport) *output.LoadOutput {
	out := &output.LoadOutput{
		RunID:  rep.RunID,
		Tables: make([]output.TableLoad, 0, len(rep.Tables)),
		Summary: output.LoadSummary{
			Tables:     len(rep.Tables),
			Failed:     len(rep.Failed()),
			Rows:       rep.Rows(),
			DurationMS: ms(rep.Duration),
		},
	}
	for _, t := range rep.Tables {
		tl := output.TableLoad{
			Table:      t.Table.Qualified(),
			File:       t.File,
			Status:     "success",
			Rows:       t.Rows,
			DurationMS: ms(t.Duration),
		}
		if !t.OK() {
			tl.Status = "failed"
			tl.Kind = string(t.Kind)
			tl.Error = t.Err.Error()
		}
		out.Tables = append(out.Tables, tl)
	}
	return out
}

func refreshOutput(rep *engine.RefreshReport) *output.RefreshOutput {
	out := &output.RefreshOutput{
		RunID:      rep.RunID,
		LoadedAt:   rep.LoadedAt,
		Entities:   make([]output.EntityRefresh, 0, len(rep.Entities)),
		DurationMS: ms(rep.Duration),
	}
	for _, e := range rep.Entities {
		out.Entities = append(out.Entities, output.EntityRefresh{
			Table:      e.Table.Qualified(),
			Input:      e.Input,
			Rows:       e.Rows,
			Dropped:    e.Dropped,
			DurationMS: ms(e.Duration),
		})
	}
	return out
}

func curateOutput(rep *engine.CurateReport) *output.CurateOutput {
	out := &output.CurateOutput{
		RunID:      rep.RunID,
		Views:      make([]output.ViewBuild, 0, len(rep.Views)),
		DurationMS: ms(rep.Duration),
	}
	for _, v := range rep.Views {
		out.Views = append(out.Views, output.ViewBuild{View: v.View.Qualified(), DurationMS: ms(v.Duration)})
	}
	return out
}

// --- text and markdown rendering ---

func renderLoad(r *output.Renderer, rep *engine.LoadReport) {
	r.Header(2, "load raw")
	failed := len(rep.Failed())

	if r.EffectiveMode() == output.ModeText {
		for _, t := range rep.Tables {
			if t.OK() {
				r.StatusLine(t.Table.Qualified(), "success", fmt.Sprintf("%d rows · %s", t.Rows, formatDuration(t.Duration)))
				continue
			}
			r.StatusLine(t.Table.Qualified(), "failed", fmt.Sprintf("%s: %v", t.Kind, t.Err))
		}
		r.Println("")
		r.Muted(fmt.Sprintf("Loaded %d rows into %d tables (%d failed) in %s",
			rep.Rows(), len(rep.Tables)-failed, failed, formatDuration(rep.Duration)))
		return
	}

	rows := make([][]any, 0, len(rep.Tables))
	for _, t := range rep.Tables {
		status, errText := "success", ""
		if !t.OK() {
			status, errText = "failed", fmt.Sprintf("%s: %v", t.Kind, t.Err)
		}
		rows = append(rows, []any{t.Table.Qualified(), t.File, status, t.Rows, formatDuration(t.Duration), errText})
	}
	r.Table([]string{"Table", "File", "Status", "Rows", "Duration", "Error"}, rows)
	r.Println("")
	r.Println(output.FormatKeyValue("Rows", fmt.Sprint(rep.Rows())))
	r.Println(output.FormatKeyValue("Failed", fmt.Sprint(failed)))
}

func renderRefresh(r *output.Renderer, rep *engine.RefreshReport) {
	r.Header(2, "load cleansed")

	if r.EffectiveMode() == output.ModeText {
		for _, e := range rep.Entities {
			detail := fmt.Sprintf("%d rows · %s", e.Rows, formatDuration(e.Duration))
			if e.Dropped > 0 {
				detail = fmt.Sprintf("%d rows (%d dropped) · %s", e.Rows, e.Dropped, formatDuration(e.Duration))
			}
			r.StatusLine(e.Table.Qualified(), "success", detail)
		}
		r.Println("")
		r.Muted("Audit timestamp " + rep.LoadedAt.Format(time.RFC3339))
		return
	}

	rows := make([][]any, 0, len(rep.Entities))
	for _, e := range rep.Entities {
		rows = append(rows, []any{e.Table.Qualified(), e.Input, e.Rows, e.Dropped, formatDuration(e.Duration)})
	}
	r.Table([]string{"Table", "Input", "Rows", "Dropped", "Duration"}, rows)
	r.Println("")
	r.Println(output.FormatKeyValue("Loaded At", rep.LoadedAt.Format(time.RFC3339)))
}

func renderCurate(r *output.Renderer, rep *engine.CurateReport) {
	r.Header(2, "curate")

	if r.EffectiveMode() == output.ModeText {
		for _, v := range rep.Views {
			r.StatusLine(v.View.Qualified(), "success", formatDuration(v.Duration))
		}
		return
	}

	rows := make([][]any, 0, len(rep.Views))
	for _, v := range rep.Views {
		rows = append(rows, []any{v.View.Qualified(), formatDuration(v.Duration)})
	}
	r.Table([]string{"View", "Duration"}, rows)
}

// renderRunFooter prints the run id and final status.
func renderRunFooter(r *output.Renderer, runID, status string, d time.Duration) {
	r.Println("")
	if r.EffectiveMode() == output.ModeText {
		r.StatusLine("run "+runID, status, formatDuration(d))
		return
	}
	r.Println(output.FormatKeyValue("Run ID", runID))
	r.Println(output.FormatKeyValue("Status", status))
}
