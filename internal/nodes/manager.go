package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gridsound/audiograph/internal/catalog"
	"github.com/gridsound/audiograph/internal/ctxlog"
	"github.com/gridsound/audiograph/internal/preset"
	"github.com/gridsound/audiograph/internal/synth"
)

// PassThroughType is the neutral fallback recipe used when the engine does
// not recognize a node's type. Keeping a silent pass-through in place keeps
// the rest of the graph usable.
const PassThroughType = "PassThrough"

// Manager owns all node instances of one graph. It is the sole mutator of
// each instance's stored settings, which serializes settings updates per
// node.
type Manager struct {
	mu      sync.Mutex
	engine  synth.Engine
	catalog *catalog.Catalog
	nodes   map[string]*Instance
}

// NewManager creates a node manager backed by the given engine and catalog.
func NewManager(engine synth.Engine, cat *catalog.Catalog) *Manager {
	return &Manager{
		engine:  engine,
		catalog: cat,
		nodes:   make(map[string]*Instance),
	}
}

// CreatePlaceholder registers a node instance with no processing unit. The
// audio engine is never touched here. Re-registering an existing id
// overwrites the record with a fresh placeholder; any in-flight unit on the
// old record is disposed first so it cannot leak.
func (m *Manager) CreatePlaceholder(ctx context.Context, id string, def *preset.NodeDefinition) *Instance {
	logger := ctxlog.FromContext(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.nodes[id]; ok {
		logger.Warn("Duplicate node definition found, it will be overwritten.", "id", id)
		if existing.Unit != nil {
			existing.Unit.Dispose()
		}
		existing.Disposed = true
	}

	recipe, ok := m.catalog.Lookup(def.Type)
	if !ok {
		logger.Warn("Node declares a type with no catalog recipe.", "id", id, "type", def.Type)
	}

	settings := map[string]any{}
	if recipe != nil {
		mergeSettings(settings, recipe.Defaults)
	}
	mergeSettings(settings, applyRewrites(def.Settings, recipe))

	inst := &Instance{
		ID:         id,
		Type:       def.Type,
		Settings:   settings,
		Trigger:    def.Trigger,
		SignalType: def.SignalType,
		Inputs:     make(map[string]string),
		Outputs:    make(map[string]string),
		recipe:     recipe,
	}
	m.nodes[id] = inst
	logger.Debug("Node placeholder created.", "id", id, "type", def.Type)
	return inst
}

// Materialize constructs the instance's processing unit if it does not
// exist yet. It is idempotent: a materialized instance returns true without
// side effects, a disposed instance returns false. Construction failure
// for an unknown type falls back to a neutral pass-through unit; any other
// failure leaves the instance unmaterialized and returns false.
func (m *Manager) Materialize(ctx context.Context, inst *Instance) bool {
	logger := ctxlog.FromContext(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.materializeLocked(ctx, logger, inst)
}

func (m *Manager) materializeLocked(ctx context.Context, logger *slog.Logger, inst *Instance) bool {
	if inst.Disposed {
		return false
	}
	if inst.Unit != nil {
		return true
	}

	build := catalog.EngineBuild(inst.Type)
	if inst.recipe != nil {
		build = inst.recipe.Build
	}

	unit, err := build(ctx, m.engine, preset.CloneSettings(inst.Settings))
	if err != nil {
		logger.Warn("Unit construction failed, falling back to pass-through.", "id", inst.ID, "type", inst.Type, "error", err)
		unit, err = m.engine.CreateUnit(ctx, PassThroughType, nil)
		if err != nil {
			logger.Warn("Pass-through fallback failed, node stays unmaterialized.", "id", inst.ID, "error", err)
			return false
		}
	}
	inst.Unit = unit

	if inst.recipe != nil && inst.recipe.ConnectToDestination {
		if err := unit.Connect(m.engine.Destination()); err != nil {
			logger.Warn("Failed to link unit to destination.", "id", inst.ID, "error", err)
		}
	}

	logger.Debug("Node materialized.", "id", inst.ID, "type", inst.Type)
	return true
}

// UpdateSettings merges partialSettings into the node's stored settings and
// pushes the changed keys to the unit. The per-type rewrite table is
// applied first, then the merge (shallow at the top level, one extra level
// for nested structures), then parameter assignment. An unmaterialized
// node is materialized first; if that fails the update is aborted and
// reported, not retried.
func (m *Manager) UpdateSettings(ctx context.Context, id string, partialSettings map[string]any) error {
	logger := ctxlog.FromContext(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("update for unknown node %q: %w", id, synth.ErrStaleNode)
	}
	if inst.Disposed {
		return fmt.Errorf("update for disposed node %q: %w", id, synth.ErrStaleNode)
	}

	changed := applyRewrites(partialSettings, inst.recipe)
	mergeSettings(inst.Settings, changed)

	if !m.materializeLocked(ctx, logger, inst) {
		return fmt.Errorf("cannot apply settings to node %q: materialization failed", id)
	}

	applyToUnit(ctx, inst.Unit, changed)
	logger.Debug("Node settings updated.", "id", id, "keys", topLevelKeys(changed))
	return nil
}

// Dispose releases a node's unit and removes the record. Disposing an
// unknown id is a warning, not a failure.
func (m *Manager) Dispose(ctx context.Context, id string) {
	logger := ctxlog.FromContext(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.nodes[id]
	if !ok {
		logger.Warn("Dispose requested for unknown node.", "id", id)
		return
	}
	m.disposeLocked(inst)
	logger.Debug("Node disposed.", "id", id)
}

// DisposeAll releases every live node; used on graph teardown.
func (m *Manager) DisposeAll(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.nodes)
	for _, inst := range m.nodes {
		m.disposeLocked(inst)
	}
	logger.Debug("All nodes disposed.", "count", count)
}

func (m *Manager) disposeLocked(inst *Instance) {
	if inst.Unit != nil {
		inst.Unit.Dispose()
		inst.Unit = nil
	}
	inst.Disposed = true
	delete(m.nodes, inst.ID)
}

// Get returns the live instance registered under id.
func (m *Manager) Get(id string) (*Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.nodes[id]
	return inst, ok
}

// All returns the live instances sorted by id.
func (m *Manager) All() []*Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Instance, 0, len(m.nodes))
	for _, inst := range m.nodes {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live instances.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes)
}

func topLevelKeys(bag map[string]any) []string {
	keys := make([]string, 0, len(bag))
	for k := range bag {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
