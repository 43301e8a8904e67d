// Package graph contains the audio graph orchestrator: it composes the node
// manager, connection manager and modulation matrix, drives graph
// (re)initialization from a configuration, and owns the cross-cutting state
// (initialization flag, play flag, cached waveform preview).
package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gridsound/audiograph/internal/catalog"
	"github.com/gridsound/audiograph/internal/ctxlog"
	"github.com/gridsound/audiograph/internal/modmatrix"
	"github.com/gridsound/audiograph/internal/nodes"
	"github.com/gridsound/audiograph/internal/preset"
	"github.com/gridsound/audiograph/internal/synth"
	"github.com/gridsound/audiograph/internal/wiring"
)

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
)

// Graph is the audio graph runtime for one instrument session.
//
// All mutable shared state (node mapping, connection list, route list) is
// owned exclusively by the three collaborator managers; the orchestrator
// owns the play-state and initialization flags. Callers mutate the graph
// only through the exposed operations.
type Graph struct {
	engine  synth.Engine
	catalog *catalog.Catalog
	nodes   *nodes.Manager
	wiring  *wiring.Manager
	matrix  *modmatrix.Matrix

	mu            sync.Mutex
	cfg           *preset.GraphConfig
	sessionID     string
	state         state
	wired         bool
	playing       bool
	wave          []float64
	releaseTimers map[string]*time.Timer

	momentary        time.Duration
	previewPoints    int
	initWaitDelay    time.Duration
	initWaitAttempts int
	settleDelay      time.Duration
}

// Option adjusts orchestrator tuning knobs.
type Option func(*Graph)

// WithMomentaryDuration overrides the fixed attack-then-release window used
// by momentary trigger mode.
func WithMomentaryDuration(d time.Duration) Option {
	return func(g *Graph) { g.momentary = d }
}

// WithPreviewPoints overrides the waveform preview target point count.
func WithPreviewPoints(points int) Option {
	return func(g *Graph) { g.previewPoints = points }
}

// WithInitWait overrides the bounded wait loop used by Trigger while an
// initialization is in flight.
func WithInitWait(delay time.Duration, attempts int) Option {
	return func(g *Graph) {
		g.initWaitDelay = delay
		g.initWaitAttempts = attempts
	}
}

// WithSettleDelay overrides the pause Reconfigure allows for in-flight
// operations to settle between teardown and re-initialization.
func WithSettleDelay(d time.Duration) Option {
	return func(g *Graph) { g.settleDelay = d }
}

// New creates an orchestrator over the given engine and node type catalog.
func New(engine synth.Engine, cat *catalog.Catalog, opts ...Option) *Graph {
	nm := nodes.NewManager(engine, cat)
	g := &Graph{
		engine:  engine,
		catalog: cat,
		nodes:   nm,
		wiring:  wiring.NewManager(nm),
		matrix:  modmatrix.NewMatrix(nm),

		releaseTimers: make(map[string]*time.Timer),

		momentary:        300 * time.Millisecond,
		previewPoints:    1024,
		initWaitDelay:    25 * time.Millisecond,
		initWaitAttempts: 40,
		settleDelay:      10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Initialize builds the graph for the given configuration: all node
// placeholders are created first, then modulation routes are registered.
// Connection wiring is deliberately deferred to the first trigger, because
// establishing engine-level links before the audio context runs would
// require starting it outside a play request. Initialize is idempotent for
// the configuration currently loaded; handing it a different configuration
// tears the previous graph down first, so nodes from two configurations
// never coexist.
func (g *Graph) Initialize(ctx context.Context, cfg *preset.GraphConfig) error {
	if cfg == nil {
		return errors.New("graph: nil configuration")
	}

	g.mu.Lock()
	if g.state == stateInitializing {
		g.mu.Unlock()
		return nil
	}
	if g.state == stateReady && g.cfg == cfg {
		g.mu.Unlock()
		return nil
	}
	if g.state == stateReady {
		if g.playing {
			g.releaseLocked(ctx)
		}
		g.cancelTimersLocked()
		g.teardownLocked(ctx)
	}
	g.state = stateInitializing
	g.cfg = cfg
	g.wired = false
	g.sessionID = uuid.NewString()
	sessionID := g.sessionID
	g.mu.Unlock()

	logger := ctxlog.FromContext(ctx).With("session", sessionID, "preset", cfg.Name)

	ids := make([]string, 0, len(cfg.Nodes))
	for id := range cfg.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		g.nodes.CreatePlaceholder(ctx, id, cfg.Nodes[id])
	}

	for _, route := range cfg.Modulation {
		if !g.matrix.AddRoute(ctx, route) {
			logger.Warn("Declared modulation route was rejected.", "source", route.Source, "destination", route.Destination)
		}
	}

	g.mu.Lock()
	g.state = stateReady
	g.mu.Unlock()
	logger.Debug("Graph initialized.", "nodes", len(cfg.Nodes), "connections", len(cfg.Connections))
	return nil
}

// Trigger starts playback. It waits (bounded) for an in-flight
// initialization, ensures the audio engine is running, wires the declared
// connections on first use, materializes the trigger nodes and issues the
// attack appropriate for the configuration's trigger mode. note may be nil,
// a frequency in Hz, or a pitch name string.
func (g *Graph) Trigger(ctx context.Context, note any) error {
	logger := ctxlog.FromContext(ctx)

	if err := g.awaitReady(ctx); err != nil {
		return err
	}

	if !g.engine.Running() {
		// Starting the engine outside an explicit play request is
		// disallowed by the host platform, so failure here is reported to
		// the caller, never retried silently.
		if err := g.engine.Start(ctx); err != nil {
			return fmt.Errorf("graph: audio engine failed to start: %w", err)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cfg := g.cfg
	if cfg == nil || g.state != stateReady {
		return errors.New("graph: not initialized")
	}

	if !g.wired {
		for _, conn := range cfg.Connections {
			if !g.wiring.Connect(ctx, conn.From, conn.To, conn.SignalType) {
				logger.Warn("Declared connection could not be established.", "from", conn.From, "to", conn.To)
			}
		}
		g.wired = true
	}

	triggerIDs := cfg.TriggerNodeIDs()
	if len(triggerIDs) == 0 {
		return errors.New("graph: configuration has no trigger node")
	}

	if cfg.TriggerMode == preset.TriggerSustained && g.playing {
		// Release the previous note first so sustained notes never overlap.
		g.releaseLocked(ctx)
	}

	triggered := false
	for _, id := range triggerIDs {
		inst, ok := g.nodes.Get(id)
		if !ok {
			logger.Warn("Trigger node has no live instance.", "id", id)
			continue
		}
		if !g.nodes.Materialize(ctx, inst) {
			logger.Warn("Trigger node failed to materialize.", "id", id)
			continue
		}
		trig, ok := inst.Triggerable()
		if !ok {
			logger.Warn("Trigger node's unit cannot initiate sound.", "id", id, "type", inst.Type)
			continue
		}

		freq := noteFrequency(note, inst.Settings)
		if cfg.TriggerMode == preset.TriggerMomentary {
			trig.TriggerAttackRelease(freq, g.momentary.Seconds())
			g.armReleaseTimer(id)
		} else {
			trig.TriggerAttack(freq)
		}
		triggered = true
	}
	if !triggered {
		return errors.New("graph: no trigger node could be triggered")
	}

	g.playing = true
	if g.wave == nil {
		g.refreshPreviewLocked(ctx)
	}
	return nil
}

// Release stops playback. When not playing it is a no-op and performs no
// engine calls.
func (g *Graph) Release(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.playing {
		return
	}
	g.releaseLocked(ctx)
}

func (g *Graph) releaseLocked(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	released := false
	if g.cfg != nil {
		for _, id := range g.cfg.TriggerNodeIDs() {
			inst, ok := g.nodes.Get(id)
			if !ok {
				continue
			}
			trig, ok := inst.Triggerable()
			if !ok {
				continue
			}
			trig.TriggerRelease()
			released = true
		}
	}
	if !released {
		// Stale trigger nodes after a configuration swap: fall back to the
		// coarse transport stop so no note can stick.
		logger.Warn("No trigger node accepted the release; stopping the transport.")
		g.engine.CancelAll()
	}

	g.cancelTimersLocked()
	g.playing = false
}

// UpdateNode merges settings into the node, reapplies modulation routes
// targeting it and regenerates the cached waveform preview.
func (g *Graph) UpdateNode(ctx context.Context, nodeID string, settings map[string]any) error {
	logger := ctxlog.FromContext(ctx)

	if err := g.nodes.UpdateSettings(ctx, nodeID, settings); err != nil {
		return err
	}

	applied := g.matrix.Apply(ctx, nodeID)
	if len(applied) > 0 {
		logger.Debug("Modulation routes reapplied.", "node", nodeID, "count", len(applied))
	}

	g.mu.Lock()
	g.refreshPreviewLocked(ctx)
	g.mu.Unlock()
	return nil
}

// Reconfigure swaps the graph to a new configuration: a forced release
// first if playing, full disposal of the old graph, then initialization of
// the new one. Nodes from two configurations never coexist.
func (g *Graph) Reconfigure(ctx context.Context, newCfg *preset.GraphConfig) error {
	g.mu.Lock()
	if g.playing {
		g.releaseLocked(ctx)
	}
	g.cancelTimersLocked()
	g.teardownLocked(ctx)
	g.mu.Unlock()

	// Let in-flight operations observe the torn-down state before the new
	// graph appears.
	time.Sleep(g.settleDelay)

	return g.Initialize(ctx, newCfg)
}

// Teardown disposes all nodes, clears connection and route state and
// resets the orchestrator to uninitialized.
func (g *Graph) Teardown(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.playing {
		g.releaseLocked(ctx)
	}
	g.cancelTimersLocked()
	g.teardownLocked(ctx)
	g.wave = nil
}

func (g *Graph) teardownLocked(ctx context.Context) {
	g.nodes.DisposeAll(ctx)
	g.wiring.Clear()
	g.matrix.ClearAll()
	g.cfg = nil
	g.state = stateUninitialized
	g.wired = false
}

// awaitReady waits, bounded, for an in-flight initialization instead of
// re-entering it. The loop uses a fixed small delay and a fixed attempt
// budget; exceeding it surfaces a warning and an error rather than
// hanging.
func (g *Graph) awaitReady(ctx context.Context) error {
	for attempt := 0; attempt < g.initWaitAttempts; attempt++ {
		g.mu.Lock()
		st := g.state
		g.mu.Unlock()

		switch st {
		case stateReady:
			return nil
		case stateUninitialized:
			return errors.New("graph: not initialized")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.initWaitDelay):
		}
	}
	ctxlog.FromContext(ctx).Warn("Timed out waiting for graph initialization.")
	return errors.New("graph: timed out waiting for initialization")
}

// armReleaseTimer schedules the play flag to clear after the momentary
// window. Timers are keyed by node id and cancellable, so a second trigger
// re-arms cleanly and a reconfiguration cancels them positively.
func (g *Graph) armReleaseTimer(id string) {
	if prev, ok := g.releaseTimers[id]; ok {
		prev.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(g.momentary, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.releaseTimers[id] != t {
			return
		}
		delete(g.releaseTimers, id)
		if len(g.releaseTimers) == 0 {
			g.playing = false
		}
	})
	g.releaseTimers[id] = t
}

func (g *Graph) cancelTimersLocked() {
	for id, t := range g.releaseTimers {
		t.Stop()
		delete(g.releaseTimers, id)
	}
}

// noteFrequency resolves the frequency for an attack: an explicit note
// argument wins, then the node's current frequency setting, then A4.
func noteFrequency(note any, settings map[string]any) float64 {
	if freq, ok := synth.ResolveNote(note); ok {
		return freq
	}
	if freq, ok := synth.ResolveNote(settings["frequency"]); ok {
		return freq
	}
	return 440
}
