package catalog

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/strata/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntities(t *testing.T) {
	ents := Entities()
	require.Len(t, ents, 6)

	assert.Equal(t, []string{
		CRMCustomers, CRMProducts, CRMSales,
		ERPDemographics, ERPLocations, ERPCategories,
	}, Names())

	for _, e := range ents {
		t.Run(e.Name, func(t *testing.T) {
			assert.Equal(t, core.LayerRaw, e.Raw.Layer)
			assert.Equal(t, core.LayerCleansed, e.Cleansed.Layer)
			assert.Equal(t, "raw."+e.Name, e.Raw.Qualified())
			assert.Equal(t, "cleansed."+e.Name, e.Cleansed.Qualified())
			assert.NotEmpty(t, e.SourceFile)

			last := e.Cleansed.Columns[len(e.Cleansed.Columns)-1]
			assert.Equal(t, Column{AuditColumn, "TIMESTAMP"}, last)
			assert.NotContains(t, e.Raw.ColumnNames(), AuditColumn)
		})
	}
}

func TestEntities_ReturnsCopy(t *testing.T) {
	ents := Entities()
	ents[0].Name = "mutated"
	assert.Equal(t, CRMCustomers, Entities()[0].Name)
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(CRMProducts)
	require.True(t, ok)
	assert.Equal(t, "source_crm/prd_info.csv", e.SourceFile)
	assert.Equal(t,
		[]string{"prd_id", "cat_id", "prd_key", "prd_nm", "prd_cost", "prd_line", "prd_start_dt", "prd_end_dt", AuditColumn},
		e.Cleansed.ColumnNames())

	_, ok = Lookup("crm_unknown")
	assert.False(t, ok)
}

func TestCreateStatement(t *testing.T) {
	e, ok := Lookup(ERPLocations)
	require.True(t, ok)

	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS \"raw\".\"erp_loc_a101\" (\n\t\"cid\" VARCHAR,\n\t\"cntry\" VARCHAR\n)",
		e.Raw.CreateStatement())
}

func TestDDL(t *testing.T) {
	stmts := DDL()
	require.Len(t, stmts, 3+6+6)

	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "raw"`, stmts[0])
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "cleansed"`, stmts[1])
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "curated"`, stmts[2])

	for _, s := range stmts[3:] {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"), s)
	}
}

func TestViews(t *testing.T) {
	views, err := Views()
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, "dim_customers", views[0].Name)
	assert.Equal(t, "dim_products", views[1].Name)
	assert.Equal(t, "fact_sales", views[2].Name)

	for _, v := range views {
		assert.True(t, strings.HasPrefix(v.Query, "SELECT"), v.Name)
		assert.True(t, strings.HasPrefix(v.CreateStatement(), `CREATE OR REPLACE VIEW "curated"."`+v.Name+`" AS`))
	}
	assert.Contains(t, views[2].Query, "curated.dim_products")
}
