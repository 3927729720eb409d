// Package catalog declares the tables of every pipeline layer and the
// source file each raw table is loaded from.
//
// The catalog is static: the set of entities is fixed and the engine walks
// it in declaration order.
package catalog

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/strata/pkg/adapter"
	"github.com/leapstack-labs/strata/pkg/core"
)

// AuditColumn is appended to every cleansed table.
const AuditColumn = "dwh_create_date"

// Column is a column name with its SQL type.
type Column struct {
	Name string
	Type string
}

// Table describes one physical table in a layer.
type Table struct {
	Layer   core.Layer
	Name    string
	Columns []Column
}

// Ref returns the table identity.
func (t Table) Ref() core.TableRef {
	return core.TableRef{Layer: t.Layer, Name: t.Name}
}

// Qualified returns the schema-qualified name.
func (t Table) Qualified() string {
	return t.Ref().Qualified()
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// CreateStatement returns an idempotent CREATE TABLE statement.
func (t Table) CreateStatement() string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = fmt.Sprintf("%s %s", adapter.QuoteIdent(c.Name), c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		adapter.QuoteQualified(t.Qualified()), strings.Join(defs, ",\n\t"))
}

// Entity pairs a raw table with its cleansed counterpart and source file.
type Entity struct {
	// Name is the table name shared by both layers, e.g. "crm_cust_info".
	Name string
	// SourceFile is the default path of the CSV export, relative to the
	// sources directory.
	SourceFile string
	Raw        Table
	Cleansed   Table
}

// Entity names.
const (
	CRMCustomers    = "crm_cust_info"
	CRMProducts     = "crm_prd_info"
	CRMSales        = "crm_sales_details"
	ERPDemographics = "erp_cust_az12"
	ERPLocations    = "erp_loc_a101"
	ERPCategories   = "erp_px_cat_g1v2"
)

var entities = []Entity{
	newEntity(CRMCustomers, "source_crm/cust_info.csv",
		[]Column{
			{"cst_id", "INTEGER"},
			{"cst_key", "VARCHAR"},
			{"cst_firstname", "VARCHAR"},
			{"cst_lastname", "VARCHAR"},
			{"cst_marital_status", "VARCHAR"},
			{"cst_gndr", "VARCHAR"},
			{"cst_create_date", "DATE"},
		},
		[]Column{
			{"cst_id", "INTEGER"},
			{"cst_key", "VARCHAR"},
			{"cst_firstname", "VARCHAR"},
			{"cst_lastname", "VARCHAR"},
			{"cst_marital_status", "VARCHAR"},
			{"cst_gndr", "VARCHAR"},
			{"cst_create_date", "DATE"},
		}),
	newEntity(CRMProducts, "source_crm/prd_info.csv",
		[]Column{
			{"prd_id", "INTEGER"},
			{"prd_key", "VARCHAR"},
			{"prd_nm", "VARCHAR"},
			{"prd_cost", "INTEGER"},
			{"prd_line", "VARCHAR"},
			{"prd_start_dt", "TIMESTAMP"},
			{"prd_end_dt", "TIMESTAMP"},
		},
		[]Column{
			{"prd_id", "INTEGER"},
			{"cat_id", "VARCHAR"},
			{"prd_key", "VARCHAR"},
			{"prd_nm", "VARCHAR"},
			{"prd_cost", "INTEGER"},
			{"prd_line", "VARCHAR"},
			{"prd_start_dt", "DATE"},
			{"prd_end_dt", "DATE"},
		}),
	newEntity(CRMSales, "source_crm/sales_details.csv",
		[]Column{
			{"sls_ord_num", "VARCHAR"},
			{"sls_prd_key", "VARCHAR"},
			{"sls_cust_id", "INTEGER"},
			{"sls_order_dt", "INTEGER"},
			{"sls_ship_dt", "INTEGER"},
			{"sls_due_dt", "INTEGER"},
			{"sls_sales", "INTEGER"},
			{"sls_quantity", "INTEGER"},
			{"sls_price", "INTEGER"},
		},
		[]Column{
			{"sls_ord_num", "VARCHAR"},
			{"sls_prd_key", "VARCHAR"},
			{"sls_cust_id", "INTEGER"},
			{"sls_order_dt", "DATE"},
			{"sls_ship_dt", "DATE"},
			{"sls_due_dt", "DATE"},
			{"sls_sales", "INTEGER"},
			{"sls_quantity", "INTEGER"},
			{"sls_price", "INTEGER"},
		}),
	newEntity(ERPDemographics, "source_erp/CUST_AZ12.csv",
		[]Column{
			{"cid", "VARCHAR"},
			{"bdate", "DATE"},
			{"gen", "VARCHAR"},
		},
		nil),
	newEntity(ERPLocations, "source_erp/LOC_A101.csv",
		[]Column{
			{"cid", "VARCHAR"},
			{"cntry", "VARCHAR"},
		},
		nil),
	newEntity(ERPCategories, "source_erp/PX_CAT_G1V2.csv",
		[]Column{
			{"id", "VARCHAR"},
			{"cat", "VARCHAR"},
			{"subcat", "VARCHAR"},
			{"maintenance", "VARCHAR"},
		},
		nil),
}

// newEntity builds an entity. A nil cleansed column list reuses the raw
// columns. The audit column is always appended to the cleansed table.
func newEntity(name, source string, raw, cleansed []Column) Entity {
	if cleansed == nil {
		cleansed = raw
	}
	cols := make([]Column, 0, len(cleansed)+1)
	cols = append(cols, cleansed...)
	cols = append(cols, Column{AuditColumn, "TIMESTAMP"})

	return Entity{
		Name:       name,
		SourceFile: source,
		Raw:        Table{Layer: core.LayerRaw, Name: name, Columns: raw},
		Cleansed:   Table{Layer: core.LayerCleansed, Name: name, Columns: cols},
	}
}

// Entities returns all entities in load order (CRM first, then ERP).
func Entities() []Entity {
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}

// Lookup finds an entity by name.
func Lookup(name string) (Entity, bool) {
	for _, e := range entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// Names returns the entity names in load order.
func Names() []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}

// SchemaStatements returns CREATE SCHEMA statements for every layer.
func SchemaStatements() []string {
	layers := core.Layers()
	stmts := make([]string, len(layers))
	for i, l := range layers {
		stmts[i] = "CREATE SCHEMA IF NOT EXISTS " + adapter.QuoteIdent(string(l))
	}
	return stmts
}

// DDL returns every statement needed to create the namespaces and the raw
// and cleansed tables. All statements are idempotent.
func DDL() []string {
	stmts := SchemaStatements()
	for _, e := range entities {
		stmts = append(stmts, e.Raw.CreateStatement())
	}
	for _, e := range entities {
		stmts = append(stmts, e.Cleansed.CreateStatement())
	}
	return stmts
}
