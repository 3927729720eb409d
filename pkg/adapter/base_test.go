package adapter

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name    string
		setupDB bool
	}{
		{name: "close with nil DB", setupDB: false},
		{name: "close with open DB", setupDB: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			assert.NoError(t, base.Close())
		})
	}
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		args      []any
		expectErr bool
		errMsg    string
	}{
		{
			name:      "exec without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "exec success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS raw").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			sql: "CREATE SCHEMA IF NOT EXISTS raw",
		},
		{
			name:    "exec with args",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM t").WithArgs(42).WillReturnResult(sqlmock.NewResult(0, 1))
			},
			sql:  "DELETE FROM t WHERE id = $1",
			args: []any{42},
		},
		{
			name:    "exec with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INVALID SQL").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				base.DB = db
			}

			err := base.Exec(ctx, tt.sql, tt.args...)
			if tt.expectErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		expectErr bool
		errMsg    string
	}{
		{
			name:      "query without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "query success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"cid", "cntry"}).
					AddRow("AW00011000", "DE").
					AddRow("AW00011001", "USA")
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			sql: "SELECT cid, cntry FROM raw.erp_loc_a101",
		},
		{
			name:    "query with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INVALID").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				base.DB = db
			}

			rows, err := base.Query(ctx, tt.sql)
			if tt.expectErr {
				require.Error(t, err)
				assert.Nil(t, rows)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				require.NoError(t, err)
				assert.NotNil(t, rows)
				defer func() { _ = rows.Close() }()
			}
		})
	}
}

func TestBaseSQLAdapter_ReplaceRows(t *testing.T) {
	truncateSQL := regexp.QuoteMeta(`TRUNCATE TABLE "cleansed"."erp_loc_a101"`)
	insertSQL := regexp.QuoteMeta(`INSERT INTO "cleansed"."erp_loc_a101" ("cid", "cntry") VALUES ($1, $2)`)
	columns := []string{"cid", "cntry"}

	tests := []struct {
		name      string
		rows      [][]any
		setupMock func(mock sqlmock.Sqlmock)
		wantRows  int64
		errMsg    string
	}{
		{
			name: "truncate and insert in one transaction",
			rows: [][]any{{"AW00011000", "Germany"}, {"AW00011001", "United States"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(truncateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
				prep := mock.ExpectPrepare(insertSQL)
				prep.ExpectExec().WithArgs("AW00011000", "Germany").WillReturnResult(sqlmock.NewResult(0, 1))
				prep.ExpectExec().WithArgs("AW00011001", "United States").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantRows: 2,
		},
		{
			name: "empty input still truncates",
			rows: nil,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(truncateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectPrepare(insertSQL)
				mock.ExpectCommit()
			},
			wantRows: 0,
		},
		{
			name: "insert failure rolls back",
			rows: [][]any{{"AW00011000", "Germany"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(truncateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectPrepare(insertSQL).ExpectExec().WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			errMsg: "failed to insert row 0",
		},
		{
			name: "row width mismatch rolls back",
			rows: [][]any{{"AW00011000"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(truncateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectPrepare(insertSQL)
				mock.ExpectRollback()
			},
			errMsg: "row 0 has 1 values, want 2",
		},
		{
			name: "truncate failure rolls back",
			rows: [][]any{{"AW00011000", "Germany"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(truncateSQL).WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			errMsg: "failed to truncate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			base := &BaseSQLAdapter{DB: db}
			n, err := base.ReplaceRows(context.Background(), "cleansed.erp_loc_a101", columns, tt.rows)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantRows, n)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBaseSQLAdapter_ReplaceRowsWithoutColumns(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	base := &BaseSQLAdapter{DB: db}
	_, err = base.ReplaceRows(context.Background(), "cleansed.x", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns")
}

func TestBaseSQLAdapter_Truncate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "raw"."crm_cust_info"`)).WillReturnResult(sqlmock.NewResult(0, 0))

	base := &BaseSQLAdapter{DB: db}
	require.NoError(t, base.Truncate(context.Background(), "raw.crm_cust_info"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_GetTableMetadataCommon(t *testing.T) {
	t.Run("table found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("information_schema.columns").
			WithArgs("raw", "erp_loc_a101").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
				AddRow("cid", "VARCHAR", "YES", 1).
				AddRow("cntry", "VARCHAR", "YES", 2))
		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		base := &BaseSQLAdapter{DB: db}
		meta, err := base.GetTableMetadataCommon(context.Background(), "raw.erp_loc_a101", "main")
		require.NoError(t, err)
		assert.Equal(t, "raw", meta.Schema)
		assert.Equal(t, "erp_loc_a101", meta.Name)
		require.Len(t, meta.Columns, 2)
		assert.True(t, meta.Columns[0].Nullable)
		assert.Equal(t, int64(7), meta.RowCount)
	})

	t.Run("table missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("information_schema.columns").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}))

		base := &BaseSQLAdapter{DB: db}
		_, err = base.GetTableMetadataCommon(context.Background(), "raw.missing", "main")
		var notFound *TableNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "raw.missing", notFound.Table)
	})
}

func TestSQLHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"quote ident", QuoteIdent("cst_id"), `"cst_id"`},
		{"quote ident escapes quotes", QuoteIdent(`a"b`), `"a""b"`},
		{"quote qualified", QuoteQualified("raw.crm_cust_info"), `"raw"."crm_cust_info"`},
		{"insert statement", InsertStatement("cleansed.t", []string{"a", "b", "c"}),
			`INSERT INTO "cleansed"."t" ("a", "b", "c") VALUES ($1, $2, $3)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestParseQualifiedName(t *testing.T) {
	schema, name := ParseQualifiedName("raw.crm_prd_info", "main")
	assert.Equal(t, "raw", schema)
	assert.Equal(t, "crm_prd_info", name)

	schema, name = ParseQualifiedName("crm_prd_info", "public")
	assert.Equal(t, "public", schema)
	assert.Equal(t, "crm_prd_info", name)
}
