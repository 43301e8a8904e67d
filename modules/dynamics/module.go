// Package dynamics registers the level control node types.
package dynamics

import "github.com/gridsound/audiograph/internal/catalog"

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Register registers the level recipes with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.Register(&catalog.Recipe{
		Type: "Gain",
		Defaults: map[string]any{
			"value": 1.0,
		},
		Rewrites: map[string]string{
			"gain": "value",
		},
	})
}
