// Package adapter provides the database adapter contract for the strata
// pipeline.
//
// The engine never talks to a driver directly: schema DDL, bulk CSV imports and
// full-refresh table replacement all go through an Adapter. Concrete
// implementations live in pkg/adapters/ subdirectories and register themselves
// with the registry in their init() functions.
package adapter

import (
	"context"
	"errors"

	"github.com/leapstack-labs/strata/pkg/core"
)

// ErrMalformedData is wrapped by LoadCSV errors caused by the file contents
// (bad CSV structure, values that do not convert to the column type).
var ErrMalformedData = errors.New("malformed data")

type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows (e.g., CREATE SCHEMA).
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a SQL statement that returns rows.
	// The caller must close the returned rows.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// GetTableMetadata retrieves metadata for a schema-qualified table.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// LoadCSV empties an existing table and bulk-imports filePath into it.
	// The file must have a header row and columns in table order.
	// The import is all-or-nothing: on error the table is left empty.
	LoadCSV(ctx context.Context, table string, filePath string) (int64, error)

	// ReplaceRows empties table and inserts rows in one transaction.
	// Each row holds values in the order given by columns.
	ReplaceRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// DialectName returns the engine name ("duckdb", "postgres").
	DialectName() string
}
