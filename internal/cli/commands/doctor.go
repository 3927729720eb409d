package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/leapstack-labs/strata/internal/cli/config"
	"github.com/leapstack-labs/strata/internal/cli/output"
	"github.com/leapstack-labs/strata/internal/engine"
	"github.com/leapstack-labs/strata/pkg/core"
	"github.com/spf13/cobra"
)

// Health check status values.
const (
	checkPass  = "pass"
	checkWarn  = "warn"
	checkError = "error"
)

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ProjectSummary describes the project being checked.
type ProjectSummary struct {
	ConfigFile  string `json:"config_file,omitempty"`
	Target      string `json:"target"`
	SourcesDir  string `json:"sources_dir"`
	SourceFiles int    `json:"source_files"`
	Tables      int    `json:"tables"`
	Views       int    `json:"views"`
	Runs        int    `json:"runs"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"`
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the project is ready to run",
		Long: `Check the configuration, source exports, target database and run history.

The doctor command reports:
  - whether a strata.yaml was found
  - missing source files and CSV headers that do not match the raw tables
  - whether the target is reachable and every layer has been created
  - the outcome of the most recent run

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  strata doctor

  # Output as JSON
  strata doctor --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
	return cmd
}

func runDoctor(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out := buildDoctorOutput(cmd, cc)

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}
	return nil
}

func buildDoctorOutput(cmd *cobra.Command, cc *CommandContext) *DoctorOutput {
	sources := engine.Sources{Dir: cc.Cfg.Sources.Dir, Files: cc.Cfg.Sources.Files}
	summary := ProjectSummary{
		ConfigFile: config.GetConfigFileUsed(),
		Target:     cc.Cfg.Target.Type,
		SourcesDir: sources.Dir,
	}

	checks := []HealthCheck{checkConfigFile(summary.ConfigFile)}

	present, missing := checkSourceFiles(sources, &summary)
	checks = append(checks, missing, checkSourceHeaders(sources, present))

	stats, statErr := cc.Engine.TableStats(cmd.Context())
	checks = append(checks, checkTarget(statErr))
	if statErr == nil {
		checks = append(checks, checkLayers(stats, &summary)...)
	}

	runs, histErr := cc.Engine.History(1)
	checks = append(checks, checkLastRun(runs, histErr))
	if histErr == nil {
		summary.Runs = len(runs)
	}

	sort.SliceStable(checks, func(i, j int) bool {
		return checks[i].Group < checks[j].Group
	})

	issues := 0
	for _, c := range checks {
		issues += c.IssueCount
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issues,
	}
}

func newCheck(id, name, group string, severity string, details []string) HealthCheck {
	status := checkPass
	if len(details) > 0 {
		status = severity
	}
	return HealthCheck{ID: id, Name: name, Group: group, Status: status, IssueCount: len(details), Details: details}
}

func checkConfigFile(path string) HealthCheck {
	var details []string
	if path == "" {
		details = append(details, "no strata.yaml found, using defaults")
	}
	return newCheck("CF01", "Config file", "config", checkWarn, details)
}

// checkSourceFiles returns the entities whose export exists and a check
// listing the ones that do not.
func checkSourceFiles(sources engine.Sources, summary *ProjectSummary) ([]catalog.Entity, HealthCheck) {
	var present []catalog.Entity
	var details []string
	for _, e := range catalog.Entities() {
		path := sources.Path(e)
		info, err := os.Stat(path)
		switch {
		case err != nil:
			details = append(details, fmt.Sprintf("%s: %s not found", e.Name, path))
		case info.IsDir():
			details = append(details, fmt.Sprintf("%s: %s is a directory", e.Name, path))
		default:
			present = append(present, e)
		}
	}
	summary.SourceFiles = len(present)
	return present, newCheck("SR01", "Source files present", "sources", checkWarn, details)
}

func checkSourceHeaders(sources engine.Sources, entities []catalog.Entity) HealthCheck {
	var details []string
	for _, e := range entities {
		if msg := headerMismatch(sources.Path(e), e.Raw); msg != "" {
			details = append(details, fmt.Sprintf("%s: %s", e.Name, msg))
		}
	}
	return newCheck("SR02", "Source headers match raw tables", "sources", checkWarn, details)
}

// headerMismatch compares the first CSV record with the raw table columns.
// It returns an empty string when they agree.
func headerMismatch(path string, t catalog.Table) string {
	f, err := os.Open(path) //nolint:gosec // path comes from project config
	if err != nil {
		return err.Error()
	}
	defer func() { _ = f.Close() }()

	header, err := csv.NewReader(f).Read()
	if errors.Is(err, io.EOF) {
		return "file is empty"
	}
	if err != nil {
		return fmt.Sprintf("unreadable header: %v", err)
	}

	want := t.ColumnNames()
	if len(header) != len(want) {
		return fmt.Sprintf("header has %d columns, %s expects %d", len(header), t.Qualified(), len(want))
	}
	for i, col := range header {
		col = strings.TrimPrefix(strings.TrimSpace(col), "\ufeff")
		if !strings.EqualFold(col, want[i]) {
			return fmt.Sprintf("column %d is %q, expected %q", i+1, col, want[i])
		}
	}
	return ""
}

func checkTarget(err error) HealthCheck {
	var details []string
	if err != nil {
		details = append(details, err.Error())
	}
	return newCheck("TG01", "Target reachable", "target", checkError, details)
}

func checkLayers(stats []engine.TableStat, summary *ProjectSummary) []HealthCheck {
	var tables, views []string
	for _, s := range stats {
		if s.Table.Layer == core.LayerCurated {
			if s.Exists {
				summary.Views++
			} else {
				views = append(views, s.Table.Qualified()+" has not been built")
			}
			continue
		}
		if s.Exists {
			summary.Tables++
		} else {
			tables = append(tables, s.Table.Qualified()+" does not exist")
		}
	}
	return []HealthCheck{
		newCheck("TG02", "Raw and cleansed tables created", "target", checkError, tables),
		newCheck("TG03", "Curated views built", "target", checkWarn, views),
	}
}

func checkLastRun(runs []engine.RunHistory, err error) HealthCheck {
	var details []string
	switch {
	case err != nil:
		details = append(details, err.Error())
	case len(runs) == 1:
		run := runs[0].Run
		switch run.Status {
		case core.RunStatusFailed:
			details = append(details, fmt.Sprintf("last %s run %s failed: %s", run.Kind, run.ID, run.Error))
		case core.RunStatusDegraded:
			details = append(details, fmt.Sprintf("last %s run %s was degraded: %s", run.Kind, run.ID, run.Error))
		case core.RunStatusRunning:
			details = append(details, fmt.Sprintf("last %s run %s never finished", run.Kind, run.ID))
		}
	}
	return newCheck("ST01", "Last run succeeded", "state", checkWarn, details)
}

// calculateHealthScore computes a health score from 0-100.
// Errors cost twice as much as warnings.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100
	for _, c := range checks {
		switch c.Status {
		case checkError:
			score -= 20 * c.IssueCount
		case checkWarn:
			score -= 5 * c.IssueCount
		}
	}
	return max(score, 0)
}

func generateRecommendations(checks []HealthCheck) []string {
	var recs []string
	for _, c := range checks {
		if c.IssueCount == 0 {
			continue
		}
		if rec := getRecommendation(c.ID); rec != "" {
			recs = append(recs, rec)
		}
	}
	return recs
}

func getRecommendation(id string) string {
	switch id {
	case "CF01":
		return "Run 'strata init' to write a strata.yaml"
	case "SR01":
		return "Copy the CRM and ERP exports into the sources directory or set sources.files"
	case "SR02":
		return "Re-export the mismatched files with the expected header row"
	case "TG01":
		return "Check the target settings and credentials in strata.yaml"
	case "TG02":
		return "Run 'strata init' to create the layer schemas"
	case "TG03":
		return "Run 'strata curate' to build the curated views"
	case "ST01":
		return "Inspect 'strata history --tables' and rerun the pipeline"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	r.Header(1, "strata project health report")
	r.Muted(strings.Repeat("=", 55))
	r.Println("")

	r.Printf("   Target: %s | Sources: %d/%d files\n", out.Summary.Target, out.Summary.SourceFiles, len(catalog.Entities()))
	r.Printf("   Tables: %d | Views: %d\n", out.Summary.Tables, out.Summary.Views)
	r.Println("")

	group := ""
	for _, c := range out.HealthChecks {
		if c.Group != group {
			group = c.Group
			r.Println(r.Styles.Bold.Render("   " + output.Title(group)))
			r.Muted("   " + strings.Repeat("-", 40))
		}

		status := "success"
		switch c.Status {
		case checkWarn:
			status = "degraded"
		case checkError:
			status = "failed"
		}
		detail := ""
		if c.IssueCount > 0 {
			detail = fmt.Sprintf("(%d issues)", c.IssueCount)
		}
		r.StatusLine("   "+c.ID+": "+c.Name, status, detail)

		for i, d := range c.Details {
			if i >= 3 {
				r.Muted(output.Indent(fmt.Sprintf("... and %d more", len(c.Details)-3), 7))
				break
			}
			r.Muted(output.Indent("- "+d, 7))
		}
	}
	r.Println("")

	r.Muted(strings.Repeat("=", 55))
	scoreStyle := r.Styles.Success
	if out.Score < 70 {
		scoreStyle = r.Styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = r.Styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Header(2, "recommendations")
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println(output.FormatHeader(1, "strata project health report"))
	r.Println("")

	r.Println(output.FormatHeader(2, "project summary"))
	r.Println("")
	r.Printf("- **Target**: %s\n", out.Summary.Target)
	r.Printf("- **Sources**: %s (%d files)\n", out.Summary.SourcesDir, out.Summary.SourceFiles)
	r.Printf("- **Tables**: %d\n", out.Summary.Tables)
	r.Printf("- **Views**: %d\n", out.Summary.Views)
	r.Println("")

	r.Println(output.FormatHeader(2, "health checks"))
	r.Println("")

	group := ""
	for _, c := range out.HealthChecks {
		if c.Group != group {
			group = c.Group
			r.Println(output.FormatHeader(3, group))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(c.Status), c.ID, c.Name)
		if c.IssueCount > 0 {
			r.Printf(" (%d issues)", c.IssueCount)
		}
		r.Println("")
		for _, d := range c.Details {
			r.Printf("  - %s\n", d)
		}
	}
	r.Println("")

	r.Println(output.FormatHeader(2, "health score"))
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(output.FormatHeader(2, "recommendations"))
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}
