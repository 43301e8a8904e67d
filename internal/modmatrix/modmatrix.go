// Package modmatrix records parameter-to-parameter modulation routes and
// recomputes their effective values when a destination node's settings
// change.
//
// Routes are declarative and advisory: adding one does not create a live
// engine-level connection. The sparse, settings-change-driven update model
// of the runtime means routes are applied on demand, not continuously
// streamed.
package modmatrix

import (
	"context"
	"sync"

	"github.com/gridsound/audiograph/internal/ctxlog"
	"github.com/gridsound/audiograph/internal/nodes"
	"github.com/gridsound/audiograph/internal/pathref"
	"github.com/gridsound/audiograph/internal/preset"
	"github.com/gridsound/audiograph/internal/synth"
)

// DefaultProperty is the canonical parameter a route path addresses when
// its property segment is omitted.
const DefaultProperty = "value"

// Route is one registered modulation route.
type Route struct {
	Source      pathref.Ref
	Destination pathref.Ref
	Amount      float64
	Scale       *[2]float64

	// EffectiveValue is the result of the last recomputation, if any.
	EffectiveValue *float64
}

// Matrix owns the route list for one graph.
type Matrix struct {
	mu     sync.Mutex
	nodes  *nodes.Manager
	routes []*Route
}

// NewMatrix creates a modulation matrix over the given node manager.
func NewMatrix(n *nodes.Manager) *Matrix {
	return &Matrix{nodes: n}
}

// AddRoute registers a declared route. Duplicates (same source and
// destination) and routes whose endpoints do not resolve to live nodes are
// rejected.
func (m *Matrix) AddRoute(ctx context.Context, declared *preset.ModulationRoute) bool {
	logger := ctxlog.FromContext(ctx)
	if !pathref.IsValid(declared.Source) || !pathref.IsValid(declared.Destination) {
		logger.Warn("Modulation route has malformed paths.", "source", declared.Source, "destination", declared.Destination)
		return false
	}

	source := pathref.Parse(declared.Source, DefaultProperty)
	destination := pathref.Parse(declared.Destination, DefaultProperty)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ref := range []pathref.Ref{source, destination} {
		inst, ok := m.nodes.Get(ref.NodeID)
		if !ok || inst.Disposed {
			logger.Warn("Modulation route references unresolvable node.", "node", ref.NodeID)
			return false
		}
	}
	for _, route := range m.routes {
		if route.Source == source && route.Destination == destination {
			logger.Warn("Duplicate modulation route rejected.", "source", source.String(), "destination", destination.String())
			return false
		}
	}

	var scale *[2]float64
	if declared.Scale != nil {
		s := *declared.Scale
		scale = &s
	}
	m.routes = append(m.routes, &Route{
		Source:      source,
		Destination: destination,
		Amount:      declared.Amount,
		Scale:       scale,
	})
	logger.Debug("Modulation route added.", "source", source.String(), "destination", destination.String(), "amount", declared.Amount)
	return true
}

// Apply recomputes every route targeting the given node: the current source
// parameter value is read, scaled by the route amount, and mapped into the
// route's range when one is declared. The recomputation is best-effort
// advisory; it is not wired into the engine's continuous signal path.
func (m *Matrix) Apply(ctx context.Context, nodeID string) []Route {
	logger := ctxlog.FromContext(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	var applied []Route
	for _, route := range m.routes {
		if route.Destination.NodeID != nodeID {
			continue
		}
		value, ok := m.sourceValueLocked(route.Source)
		if !ok {
			logger.Warn("Modulation source value unavailable.", "source", route.Source.String())
			continue
		}

		effective := value * route.Amount
		if route.Scale != nil {
			effective = mapToRange(effective, route.Scale[0], route.Scale[1])
		}
		route.EffectiveValue = &effective
		applied = append(applied, *route)
		logger.Debug("Modulation route recomputed.", "source", route.Source.String(), "destination", route.Destination.String(), "value", effective)
	}
	return applied
}

// sourceValueLocked reads the current value of a route's source parameter:
// from the materialized unit's parameter object when available, otherwise
// from the node's stored settings bag.
func (m *Matrix) sourceValueLocked(source pathref.Ref) (float64, bool) {
	inst, ok := m.nodes.Get(source.NodeID)
	if !ok || inst.Disposed {
		return 0, false
	}
	if inst.Unit != nil {
		if p, ok := inst.Unit.Param(source.Property); ok {
			return p.Value(), true
		}
	}
	return synth.AsFloat(inst.Settings[source.Property])
}

// RemoveRoute drops one route by its source and destination paths.
func (m *Matrix) RemoveRoute(sourcePath, destinationPath string) bool {
	source := pathref.Parse(sourcePath, DefaultProperty)
	destination := pathref.Parse(destinationPath, DefaultProperty)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, route := range m.routes {
		if route.Source == source && route.Destination == destination {
			m.routes = append(m.routes[:i], m.routes[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveRoutesForNode drops every route touching the given node.
func (m *Matrix) RemoveRoutesForNode(nodeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.routes[:0]
	for _, route := range m.routes {
		if route.Source.NodeID != nodeID && route.Destination.NodeID != nodeID {
			kept = append(kept, route)
		}
	}
	m.routes = kept
}

// ClearAll drops every route.
func (m *Matrix) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = nil
}

// Routes returns a snapshot of the registered routes.
func (m *Matrix) Routes() []Route {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Route, 0, len(m.routes))
	for _, route := range m.routes {
		out = append(out, *route)
	}
	return out
}

// mapToRange linearly maps a normalized value into [min, max], clamping
// the input to [0, 1] first.
func mapToRange(v, min, max float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return min + v*(max-min)
}
