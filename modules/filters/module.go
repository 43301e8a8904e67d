// Package filters registers the spectral shaping node types.
package filters

import "github.com/gridsound/audiograph/internal/catalog"

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Register registers the filter recipes with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.Register(&catalog.Recipe{
		Type: "Filter",
		Defaults: map[string]any{
			"frequency":  1000.0,
			"Q":          1.0,
			"filterType": "lowpass",
		},
		// Public presets say "cutoff"; the engine parameter is "frequency".
		Rewrites: map[string]string{
			"cutoff": "frequency",
			"type":   "filterType",
		},
	})
}
