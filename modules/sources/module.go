// Package sources registers the free-running signal generator node types.
package sources

import "github.com/gridsound/audiograph/internal/catalog"

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Register registers the generator recipes with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.Register(&catalog.Recipe{
		Type: "Oscillator",
		Defaults: map[string]any{
			"frequency": 440.0,
		},
		Rewrites: map[string]string{
			"oscillatorType": "type",
		},
	})

	c.Register(&catalog.Recipe{
		Type: "LFO",
		Defaults: map[string]any{
			"frequency": 5.0,
			"depth":     1.0,
		},
	})
}
