// Package output registers the terminal node types of a graph.
package output

import "github.com/gridsound/audiograph/internal/catalog"

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Register registers the terminal recipes with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	// Output is a unity gain stage hard-wired to the engine destination,
	// so presets have an explicit place to hang the final level.
	c.Register(&catalog.Recipe{
		Type: "Output",
		Defaults: map[string]any{
			"value": 1.0,
		},
		Rewrites: map[string]string{
			"gain": "value",
		},
		Build:                catalog.EngineBuild("Gain"),
		ConnectToDestination: true,
	})

	c.Register(&catalog.Recipe{
		Type: "PassThrough",
	})
}
