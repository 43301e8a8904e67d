// Package catalog holds the node type catalog: the immutable mapping from a
// node type tag to the recipe used to construct its processing unit.
//
// Recipes are registered once at startup by the packages under modules/ and
// looked up by the node manager at materialization time. Registration
// mistakes (duplicate tags) are programmer errors and panic, matching the
// fail-fast policy for mismatches between code and configuration.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gridsound/audiograph/internal/synth"
)

// BuildFunc constructs a processing unit for a recipe. Most recipes delegate
// straight to the engine's factory via EngineBuild.
type BuildFunc func(ctx context.Context, eng synth.Engine, settings map[string]any) (synth.Unit, error)

// Recipe describes how to construct and configure units of one node type.
type Recipe struct {
	// Type is the public tag node definitions refer to, e.g. "Synth".
	Type string

	// Defaults are merged under a node's declared settings when its
	// placeholder is created.
	Defaults map[string]any

	// Rewrites maps public flat field names to the engine's nested
	// parameter paths, e.g. "oscillatorType" -> "oscillator.type". The
	// public settings shape is intentionally flatter than the engine's
	// native shape; this table is the single place the difference lives.
	Rewrites map[string]string

	// ConnectToDestination links freshly materialized units straight to the
	// engine's final output. Set on sound-producing types so a minimal
	// configuration is audible without declared connections.
	ConnectToDestination bool

	// Build constructs the unit. Nil recipes use EngineBuild(Type).
	Build BuildFunc
}

// EngineBuild returns a BuildFunc that asks the engine factory for the given
// native type tag.
func EngineBuild(typeTag string) BuildFunc {
	return func(ctx context.Context, eng synth.Engine, settings map[string]any) (synth.Unit, error) {
		return eng.CreateUnit(ctx, typeTag, settings)
	}
}

// Module is the interface node-type packages implement to be registered.
type Module interface {
	Register(c *Catalog)
}

// Catalog is the registry of node type recipes for one application instance.
type Catalog struct {
	recipes map[string]*Recipe
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{recipes: make(map[string]*Recipe)}
}

// Register adds a recipe to the catalog. Registering the same tag twice
// panics.
func (c *Catalog) Register(r *Recipe) {
	if _, exists := c.recipes[r.Type]; exists {
		panic(fmt.Sprintf("node type %q already registered", r.Type))
	}
	if r.Build == nil {
		r.Build = EngineBuild(r.Type)
	}
	slog.Debug("Registering node type recipe.", "type", r.Type)
	c.recipes[r.Type] = r
}

// Lookup returns the recipe for a type tag.
func (c *Catalog) Lookup(typeTag string) (*Recipe, bool) {
	r, ok := c.recipes[typeTag]
	return r, ok
}

// Types returns the registered type tags in sorted order.
func (c *Catalog) Types() []string {
	tags := make([]string, 0, len(c.recipes))
	for tag := range c.recipes {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
