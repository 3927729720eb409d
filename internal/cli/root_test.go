package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/strata/internal/cli/commands"
	"github.com/leapstack-labs/strata/internal/cli/config"
	"github.com/leapstack-labs/strata/internal/cli/output"
	"github.com/leapstack-labs/strata/internal/cli/testutil"
	"github.com/leapstack-labs/strata/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func executeJSON(t *testing.T, v any, args ...string) error {
	t.Helper()
	stdout, _, err := execute(t, append(args, "--output", "json")...)
	require.NoError(t, json.Unmarshal([]byte(stdout), v), "stdout: %s", stdout)
	return err
}

func setupProject(t *testing.T) string {
	t.Helper()
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	t.Cleanup(config.ResetConfig)
	return dir
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"init", "load-raw", "load-cleansed", "curate", "run", "history", "doctor", "version"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "target-type", "database", "sources-dir", "state", "log-level", "log-format", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strata.yaml"), []byte("target:\n  type: oracle\n"), 0600))
	t.Chdir(dir)
	t.Cleanup(config.ResetConfig)

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "strata v"+Version)

	_, _, err = execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown adapter type")
}

func TestPipelineBeforeInit(t *testing.T) {
	setupProject(t)

	_, _, err := execute(t, "load-raw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strata init")
}

func TestEndToEnd(t *testing.T) {
	dir := setupProject(t)

	var initOut output.InitOutput
	require.NoError(t, executeJSON(t, &initOut, "init"))
	assert.False(t, initOut.ConfigCreated, "existing strata.yaml must be kept")
	assert.Equal(t, "duckdb", initOut.Target)
	assert.Len(t, initOut.Tables, 12)
	assert.FileExists(t, filepath.Join(dir, "warehouse.duckdb"))

	var runOut output.RunOutput
	require.NoError(t, executeJSON(t, &runOut, "run"))
	assert.Equal(t, "completed", runOut.Status)
	require.NotNil(t, runOut.Load)
	assert.Equal(t, int64(27), runOut.Load.Summary.Rows)
	assert.Zero(t, runOut.Load.Summary.Failed)
	require.NotNil(t, runOut.Refresh)
	assert.Len(t, runOut.Refresh.Entities, 6)
	require.NotNil(t, runOut.Curate)
	assert.Len(t, runOut.Curate.Views, 3)

	var hist output.HistoryOutput
	require.NoError(t, executeJSON(t, &hist, "history", "--tables"))
	require.Len(t, hist.Runs, 2)
	assert.Equal(t, "run", hist.Runs[0].Kind)
	assert.Equal(t, "init", hist.Runs[1].Kind)
	assert.Len(t, hist.Runs[0].Tables, 15)
	require.Len(t, hist.Tables, 15)
	for _, tbl := range hist.Tables {
		assert.True(t, tbl.Exists, "%s should exist", tbl.Table)
	}
	assert.FileExists(t, filepath.Join(dir, ".strata", "state.db"))

	var doc commands.DoctorOutput
	require.NoError(t, executeJSON(t, &doc, "doctor"))
	assert.Equal(t, 100, doc.Score, "checks: %+v", doc.HealthChecks)
	assert.Equal(t, 6, doc.Summary.SourceFiles)
	assert.Equal(t, 12, doc.Summary.Tables)
	assert.Equal(t, 3, doc.Summary.Views)
}

func TestDoctorBeforeInit(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "datasets", "source_crm", "prd_info.csv")))

	var doc commands.DoctorOutput
	require.NoError(t, executeJSON(t, &doc, "doctor"))
	assert.Less(t, doc.Score, 50)
	assert.Equal(t, 5, doc.Summary.SourceFiles)
	assert.Zero(t, doc.Summary.Tables)
	assert.NotEmpty(t, doc.Recommendations)
}

func TestLoadRaw_IsolatedFailure(t *testing.T) {
	dir := setupProject(t)
	_, _, err := execute(t, "init")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "datasets", "source_erp", "LOC_A101.csv")))

	t.Run("reported without strict", func(t *testing.T) {
		stdout, stderr, err := execute(t, "load-raw", "--output", "markdown")
		require.NoError(t, err)
		testutil.AssertNoANSI(t, stdout)
		assert.Contains(t, stdout, "missing_file")
		assert.Contains(t, stderr, "1 of 6 tables failed to load")
		assert.Contains(t, stderr, "failed to load table")
	})

	t.Run("strict flag fails the command", func(t *testing.T) {
		var out output.LoadOutput
		err := executeJSON(t, &out, "load-raw", "--strict")
		require.Error(t, err)

		var strictErr *engine.StrictError
		require.True(t, errors.As(err, &strictErr))
		require.Len(t, strictErr.Failed, 1)
		assert.Equal(t, engine.LoadMissingFile, strictErr.Failed[0].Kind)
		assert.Equal(t, 1, out.Summary.Failed)
	})

	t.Run("strict from environment stops run", func(t *testing.T) {
		t.Setenv("STRATA_STRICT", "true")

		var out output.RunOutput
		err := executeJSON(t, &out, "run")
		require.Error(t, err)
		assert.Equal(t, "failed", out.Status)
		assert.NotNil(t, out.Load)
		assert.Nil(t, out.Refresh, "strict run stops after the raw load")
	})

	t.Run("degraded run continues", func(t *testing.T) {
		var out output.RunOutput
		require.NoError(t, executeJSON(t, &out, "run"))
		assert.Equal(t, "degraded", out.Status)
		assert.NotNil(t, out.Curate)
	})
}

func TestLogFormatJSON(t *testing.T) {
	setupProject(t)

	_, stderr, err := execute(t, "init", "--no-schema", "--log-format", "json", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"using config file"`)
}

func TestGetConfigFallsBackToDefaults(t *testing.T) {
	cfg := GetConfig(context.Background())
	require.NotNil(t, cfg)
	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.NotNil(t, GetRenderer(context.Background()))
}
