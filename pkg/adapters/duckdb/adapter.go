// Package duckdb provides the DuckDB database adapter, the default engine
// for strata.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/strata/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// defaultSchema is the schema DuckDB uses for unqualified names.
const defaultSchema = "main"

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" or an empty path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", cfg.Path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	for _, stmt := range params.setupStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply duckdb param %q: %w", stmt, err)
		}
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return a.GetTableMetadataCommon(ctx, table, defaultSchema)
}

// LoadCSV empties table and bulk-imports the CSV file with DuckDB's COPY.
// COPY is all-or-nothing, so a malformed row or a type mismatch leaves the
// table empty.
func (a *Adapter) LoadCSV(ctx context.Context, table string, filePath string) (int64, error) {
	if a.DB == nil {
		return 0, fmt.Errorf("database connection not established")
	}

	if err := a.Truncate(ctx, table); err != nil {
		return 0, err
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}

	query := fmt.Sprintf(
		"COPY %s FROM '%s' (FORMAT csv, HEADER true, DELIMITER ',')",
		adapter.QuoteQualified(table),
		strings.ReplaceAll(absPath, "'", "''"),
	)

	a.Logger.Debug("copying csv", slog.String("table", table), slog.String("path", absPath))

	res, err := a.DB.ExecContext(ctx, query)
	if err != nil {
		if isDataError(err) {
			return 0, fmt.Errorf("failed to load CSV: %w: %w", adapter.ErrMalformedData, err)
		}
		return 0, fmt.Errorf("failed to load CSV: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		return n, nil
	}
	return a.CountRows(ctx, table)
}

// isDataError reports whether a COPY failure was caused by the file contents.
func isDataError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"Conversion Error", "CSV Error", "Invalid Input Error"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
