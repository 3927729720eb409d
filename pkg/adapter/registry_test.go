package adapter

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres"},
	}

	msg := err.Error()

	assert.Contains(t, msg, "fake_db", "error should mention the unknown type")
	assert.Contains(t, msg, "strata.yaml", "error should point at the config file")
}

func TestRegister(t *testing.T) {
	Register("Test_Adapter_Internal", func(_ *slog.Logger) Adapter { return nil })

	assert.True(t, IsRegistered("test_adapter_internal"), "registration is case-insensitive")

	factory, ok := Get("TEST_ADAPTER_INTERNAL")
	assert.True(t, ok)
	assert.NotNil(t, factory)
	assert.Contains(t, ListAdapters(), "test_adapter_internal")
}

func TestRegister_Aliases(t *testing.T) {
	Register("test_alias_target", func(_ *slog.Logger) Adapter { return nil }, "TAT", "alias-target")

	tests := []struct {
		name string
		want string
	}{
		{name: "tat", want: "test_alias_target"},
		{name: "Alias-Target", want: "test_alias_target"},
		{name: "test_alias_target", want: "test_alias_target"},
		{name: "unknown_db", want: "unknown_db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.name))
		})
	}

	assert.True(t, IsRegistered("tat"))
	assert.NotContains(t, ListAdapters(), "tat", "aliases are not listed")
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("no_such_db")
	require.Error(t, err)

	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_db", unknown.Type)
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.Error(t, err, "NewAdapter with empty type should fail")
	assert.Equal(t, "adapter type not specified", err.Error())
}
