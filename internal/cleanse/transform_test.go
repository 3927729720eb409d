package cleanse

import (
	"testing"
	"time"

	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loadedAt = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func sampleRecords() map[string][]Record {
	return map[string][]Record{
		catalog.CRMCustomers: {
			{"cst_id": int32(11000), "cst_key": "AW00011000", "cst_firstname": " Jon", "cst_lastname": "Yang ", "cst_marital_status": "M", "cst_gndr": "M", "cst_create_date": *date("2025-10-06")},
			{"cst_id": int32(11000), "cst_key": "AW00011000", "cst_firstname": "Jon", "cst_lastname": "Yang", "cst_marital_status": "S", "cst_gndr": "M", "cst_create_date": *date("2025-01-01")},
			{"cst_id": nil, "cst_key": "SF566", "cst_firstname": nil, "cst_lastname": nil, "cst_marital_status": nil, "cst_gndr": nil, "cst_create_date": nil},
		},
		catalog.CRMProducts: {
			{"prd_id": int32(210), "prd_key": "CO-RF-FR-R92B-58", "prd_nm": "HL Road Frame", "prd_cost": nil, "prd_line": "R", "prd_start_dt": *date("2003-07-01"), "prd_end_dt": nil},
		},
		catalog.CRMSales: {
			{"sls_ord_num": "SO43697", "sls_prd_key": "BK-R93R-62", "sls_cust_id": int32(21768), "sls_order_dt": int32(20101229), "sls_ship_dt": int32(20110105), "sls_due_dt": int32(20110110), "sls_sales": int32(3578), "sls_quantity": int32(1), "sls_price": int32(3578)},
		},
		catalog.ERPDemographics: {
			{"cid": "NASAW00011000", "bdate": *date("1971-10-06"), "gen": "Male"},
		},
		catalog.ERPLocations: {
			{"cid": "AW-00011000", "cntry": "Australia"},
		},
		catalog.ERPCategories: {
			{"id": "AC_BR", "cat": "Accessories", "subcat": "Bike Racks", "maintenance": "Yes"},
		},
	}
}

func TestTransforms_CoverCatalog(t *testing.T) {
	var names []string
	for _, tr := range Transforms() {
		names = append(names, tr.Entity)
	}
	assert.Equal(t, catalog.Names(), names)
}

func TestTransforms_RowsMatchCleansedColumns(t *testing.T) {
	records := sampleRecords()

	for _, entity := range catalog.Entities() {
		t.Run(entity.Name, func(t *testing.T) {
			tr, ok := ForEntity(entity.Name)
			require.True(t, ok)

			res, err := tr.Apply(records[entity.Name], loadedAt)
			require.NoError(t, err)
			require.NotEmpty(t, res.Rows)

			width := len(entity.Cleansed.Columns)
			for _, row := range res.Rows {
				require.Len(t, row, width)
				assert.Equal(t, loadedAt, row[width-1], "audit column")
			}
		})
	}
}

func TestTransforms_CustomerDropCount(t *testing.T) {
	tr, ok := ForEntity(catalog.CRMCustomers)
	require.True(t, ok)

	res, err := tr.Apply(sampleRecords()[catalog.CRMCustomers], loadedAt)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Input)
	assert.Len(t, res.Rows, 1)
	assert.Equal(t, 2, res.Dropped())
	assert.Equal(t, []any{
		int64(11000), "AW00011000", "Jon", "Yang", "Married", "Male",
		*date("2025-10-06"), loadedAt,
	}, res.Rows[0])
}

func TestTransforms_Deterministic(t *testing.T) {
	records := sampleRecords()
	for _, tr := range Transforms() {
		first, err := tr.Apply(records[tr.Entity], loadedAt)
		require.NoError(t, err)
		second, err := tr.Apply(records[tr.Entity], loadedAt)
		require.NoError(t, err)
		assert.Equal(t, first, second, tr.Entity)
	}
}

func TestTransforms_NullsBecomeUntypedNil(t *testing.T) {
	tr, _ := ForEntity(catalog.CRMProducts)
	res, err := tr.Apply(sampleRecords()[catalog.CRMProducts], loadedAt)
	require.NoError(t, err)

	row := res.Rows[0]
	assert.Equal(t, int64(0), row[4], "null cost becomes zero")
	assert.Nil(t, row[7], "end date")
	assert.Equal(t, any(nil), row[7])
}

func TestTransforms_RowError(t *testing.T) {
	tr, ok := ForEntity(catalog.CRMSales)
	require.True(t, ok)

	records := sampleRecords()[catalog.CRMSales]
	bad := Record{}
	for k, v := range records[0] {
		bad[k] = v
	}
	bad["sls_quantity"] = "many"

	_, err := tr.Apply([]Record{records[0], bad}, loadedAt)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 1, rowErr.Row)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "sls_quantity", fieldErr.Column)
}

func TestForEntity_Unknown(t *testing.T) {
	_, ok := ForEntity("nope")
	assert.False(t, ok)
}
