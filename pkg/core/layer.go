package core

import "fmt"

// Layer is one of the three storage tiers of the pipeline.
// Each layer maps to a database schema of the same name.
type Layer string

// Pipeline layers in build order.
const (
	LayerRaw      Layer = "raw"
	LayerCleansed Layer = "cleansed"
	LayerCurated  Layer = "curated"
)

// Layers returns all layers in build order.
func Layers() []Layer {
	return []Layer{LayerRaw, LayerCleansed, LayerCurated}
}

// TableRef identifies a table or view inside a layer.
type TableRef struct {
	Layer Layer
	Name  string
}

// Qualified returns the schema-qualified name (e.g. "raw.crm_cust_info").
func (r TableRef) Qualified() string {
	return fmt.Sprintf("%s.%s", r.Layer, r.Name)
}

func (r TableRef) String() string {
	return r.Qualified()
}
