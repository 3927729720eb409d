package catalog

import (
	"embed"
	"fmt"
	"strings"

	"github.com/leapstack-labs/strata/pkg/adapter"
	"github.com/leapstack-labs/strata/pkg/core"
)

//go:embed curated/*.sql
var curatedFS embed.FS

// viewOrder lists curated views so that every view comes after the views it reads.
var viewOrder = []string{"dim_customers", "dim_products", "fact_sales"}

// View is a curated view definition.
type View struct {
	Name  string
	Query string
}

// Ref returns the view identity.
func (v View) Ref() core.TableRef {
	return core.TableRef{Layer: core.LayerCurated, Name: v.Name}
}

// CreateStatement returns a CREATE OR REPLACE VIEW statement.
func (v View) CreateStatement() string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS\n%s",
		adapter.QuoteQualified(v.Ref().Qualified()), v.Query)
}

// Views returns the curated views in creation order.
func Views() ([]View, error) {
	views := make([]View, 0, len(viewOrder))
	for _, name := range viewOrder {
		data, err := curatedFS.ReadFile("curated/" + name + ".sql")
		if err != nil {
			return nil, fmt.Errorf("failed to read view %s: %w", name, err)
		}
		views = append(views, View{
			Name:  name,
			Query: strings.TrimSpace(string(data)),
		})
	}
	return views, nil
}
