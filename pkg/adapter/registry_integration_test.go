package adapter_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/strata/pkg/adapter"
	"github.com/leapstack-labs/strata/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/strata/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/strata/pkg/adapters/postgres"
)

func TestBuiltinAdaptersRegistered(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
	}{
		{"duckdb", "duckdb"},
		{"postgres", "postgres"},
		{"DuckDB", "duckdb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adp, err := adapter.NewAdapter(core.AdapterConfig{Type: tt.name}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, adp.DialectName())
		})
	}

	assert.Subset(t, adapter.ListAdapters(), []string{"duckdb", "postgres"})
}

func TestNewAdapter_UnknownTypeListsBuiltins(t *testing.T) {
	_, err := adapter.NewAdapter(core.AdapterConfig{Type: "oracle"}, nil)

	var unknownErr *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "oracle", unknownErr.Type)
	assert.Contains(t, unknownErr.Available, "duckdb")
}

// TestRegisteredDuckDB_LoadThenReplace drives a registered adapter through the
// two write paths the pipeline relies on.
func TestRegisteredDuckDB_LoadThenReplace(t *testing.T) {
	ctx := context.Background()
	cfg := core.AdapterConfig{Type: "duckdb", Path: ":memory:"}

	adp, err := adapter.NewAdapter(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, adp.Connect(ctx, cfg))
	defer func() { _ = adp.Close() }()

	require.NoError(t, adp.Exec(ctx, `CREATE SCHEMA raw`))
	require.NoError(t, adp.Exec(ctx, `CREATE SCHEMA cleansed`))
	require.NoError(t, adp.Exec(ctx, `CREATE TABLE raw.erp_px_cat_g1v2 (id VARCHAR, cat VARCHAR, subcat VARCHAR, maintenance VARCHAR)`))
	require.NoError(t, adp.Exec(ctx, `CREATE TABLE cleansed.erp_px_cat_g1v2 (id VARCHAR, cat VARCHAR, subcat VARCHAR, maintenance VARCHAR)`))

	csvPath := filepath.Join(t.TempDir(), "PX_CAT_G1V2.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("ID,CAT,SUBCAT,MAINTENANCE\nAC_BR,Accessories,Bike Racks,Yes\nAC_BS,Accessories,Bike Stands,No\n"), 0600))

	n, err := adp.LoadCSV(ctx, "raw.erp_px_cat_g1v2", csvPath)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = adp.ReplaceRows(ctx, "cleansed.erp_px_cat_g1v2",
		[]string{"id", "cat", "subcat", "maintenance"},
		[][]any{{"AC_BR", "Accessories", "Bike Racks", "Yes"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	meta, err := adp.GetTableMetadata(ctx, "cleansed.erp_px_cat_g1v2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.RowCount)
	assert.Len(t, meta.Columns, 4)
}
