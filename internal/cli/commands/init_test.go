package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/leapstack-labs/strata/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	_ "github.com/leapstack-labs/strata/pkg/adapters/duckdb"
)

func TestWriteScaffold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strata.yaml")
	require.NoError(t, writeScaffold(path))

	raw, err := os.ReadFile(path) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# strata project configuration.")

	var got config.Config
	require.NoError(t, yaml.Unmarshal(raw, &got))
	require.NotNil(t, got.Target)
	assert.Equal(t, "duckdb", got.Target.Type)
	assert.Equal(t, "strata.duckdb", got.Target.Database)
	assert.Equal(t, "datasets", got.Sources.Dir)
	assert.Equal(t, ".strata/state.db", got.StatePath)
	assert.Len(t, got.Sources.Files, len(catalog.Entities()))
	assert.Equal(t, "source_erp/CUST_AZ12.csv", got.Sources.Files[catalog.ERPDemographics])
}

func TestScaffoldLoadsBack(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, writeScaffold(filepath.Join(dir, "strata.yaml")))

	t.Chdir(dir)
	t.Cleanup(config.ResetConfig)

	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "strata.duckdb"), cfg.Target.Database)
	assert.Equal(t, filepath.Join(dir, "datasets"), cfg.Sources.Dir)
}

func TestCreateSourceDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "datasets")
	require.NoError(t, createSourceDirs(dir))

	for _, sub := range []string{"source_crm", "source_erp"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.NoError(t, createSourceDirs(""))
}
