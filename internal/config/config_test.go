package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/strata/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Register adapters via init()
	_ "github.com/leapstack-labs/strata/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/strata/pkg/adapters/postgres"
)

func TestDefaultSchemaForType(t *testing.T) {
	tests := []struct {
		dbType   string
		expected string
	}{
		{"duckdb", "main"},
		{"DuckDB", "main"},
		{"postgres", "public"},
		{"POSTGRES", "public"},
		{"unknown", "main"},
		{"", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultSchemaForType(tt.dbType))
		})
	}
}

func TestApplyTargetDefaults(t *testing.T) {
	tests := []struct {
		name   string
		target core.TargetConfig
		want   core.TargetConfig
	}{
		{
			name:   "empty target becomes local duckdb",
			target: core.TargetConfig{},
			want:   core.TargetConfig{Type: "duckdb", Database: DefaultDatabase, Schema: "main"},
		},
		{
			name:   "type is lowercased",
			target: core.TargetConfig{Type: "DuckDB", Database: "w.duckdb"},
			want:   core.TargetConfig{Type: "duckdb", Database: "w.duckdb", Schema: "main"},
		},
		{
			name:   "postgres gets port and schema",
			target: core.TargetConfig{Type: "postgres", Database: "dwh"},
			want:   core.TargetConfig{Type: "postgres", Database: "dwh", Schema: "public", Port: 5432},
		},
		{
			name:   "alias resolves to postgres",
			target: core.TargetConfig{Type: "PostgreSQL", Database: "dwh"},
			want:   core.TargetConfig{Type: "postgres", Database: "dwh", Schema: "public", Port: 5432},
		},
		{
			name:   "explicit values are kept",
			target: core.TargetConfig{Type: "postgres", Database: "dwh", Schema: "etl", Port: 6543},
			want:   core.TargetConfig{Type: "postgres", Database: "dwh", Schema: "etl", Port: 6543},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.target
			ApplyTargetDefaults(&target)
			assert.Equal(t, tt.want, target)
		})
	}

	assert.NotPanics(t, func() { ApplyTargetDefaults(nil) })
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name      string
		target    *core.TargetConfig
		errSubstr string
	}{
		{name: "nil target", target: nil, errSubstr: "target configuration is required"},
		{name: "empty type", target: &core.TargetConfig{}, errSubstr: "target type is required"},
		{name: "duckdb", target: &core.TargetConfig{Type: "duckdb"}},
		{name: "duckdb uppercase", target: &core.TargetConfig{Type: "DuckDB"}},
		{name: "postgres", target: &core.TargetConfig{Type: "postgres", Database: "dwh"}},
		{name: "postgres without database", target: &core.TargetConfig{Type: "postgres"}, errSubstr: "target.database is required"},
		{name: "unknown mysql", target: &core.TargetConfig{Type: "mysql"}, errSubstr: "unknown adapter type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.target)
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestValidateTarget_ErrorListsAdapters(t *testing.T) {
	err := ValidateTarget(&core.TargetConfig{Type: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duckdb")
	assert.Contains(t, err.Error(), "postgres")
	assert.Contains(t, err.Error(), "strata.yaml")
}

func TestFindConfigFile(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{name: "none", files: nil, want: ""},
		{name: "yaml", files: []string{"strata.yaml"}, want: "strata.yaml"},
		{name: "yml", files: []string{"strata.yml"}, want: "strata.yml"},
		{name: "yaml wins over yml", files: []string{"strata.yml", "strata.yaml"}, want: "strata.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("target:\n  type: duckdb\n"), 0600))
			}

			got := FindConfigFile(dir)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("{}\n"), 0600))
	nested := filepath.Join(root, "datasets", "source_crm")
	require.NoError(t, os.MkdirAll(nested, 0750))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, root, FindProjectRoot(root))
	assert.Empty(t, FindProjectRoot(t.TempDir()))
}
