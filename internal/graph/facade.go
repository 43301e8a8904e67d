package graph

import (
	"context"
	"errors"

	"github.com/gridsound/audiograph/internal/modmatrix"
	"github.com/gridsound/audiograph/internal/nodes"
	"github.com/gridsound/audiograph/internal/preset"
	"github.com/gridsound/audiograph/internal/wiring"
)

// The methods below are the read-mostly surface consumed by front ends
// (CLI, TUI, status endpoint). They snapshot state rather than exposing
// internals.

// SessionID identifies the current initialization epoch. It changes on
// every Initialize and Reconfigure.
func (g *Graph) SessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID
}

// Config returns the configuration the graph was last initialized with,
// or nil when uninitialized.
func (g *Graph) Config() *preset.GraphConfig {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// IsPlaying reports the current play state.
func (g *Graph) IsPlaying() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playing
}

// Nodes returns the live node instances sorted by id.
func (g *Graph) Nodes() []*nodes.Instance {
	return g.nodes.All()
}

// Connections returns the established connections.
func (g *Graph) Connections() []wiring.Connection {
	return g.wiring.Connections()
}

// ModulationRoutes returns the registered modulation routes.
func (g *Graph) ModulationRoutes() []modmatrix.Route {
	return g.matrix.Routes()
}

// WaveformData returns the cached waveform preview, or nil when no
// preview has been rendered yet. The returned slice is a copy.
func (g *Graph) WaveformData() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.wave == nil {
		return nil
	}
	out := make([]float64, len(g.wave))
	copy(out, g.wave)
	return out
}

// UpdateConfig clones the current configuration, lets mutate reshape the
// clone, validates it and reconfigures the graph onto it. The running
// configuration is never mutated in place.
func (g *Graph) UpdateConfig(ctx context.Context, mutate func(cfg *preset.GraphConfig)) error {
	g.mu.Lock()
	cur := g.cfg
	g.mu.Unlock()
	if cur == nil {
		return errors.New("graph: no configuration to update")
	}

	next := cur.Clone()
	mutate(next)
	if err := next.Validate(); err != nil {
		return err
	}
	return g.Reconfigure(ctx, next)
}
