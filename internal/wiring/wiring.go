// Package wiring validates and establishes directed signal links between
// node output points and input points, and tracks per-node adjacency.
package wiring

import (
	"context"
	"sync"

	"github.com/gridsound/audiograph/internal/ctxlog"
	"github.com/gridsound/audiograph/internal/nodes"
	"github.com/gridsound/audiograph/internal/pathref"
	"github.com/gridsound/audiograph/internal/preset"
	"github.com/gridsound/audiograph/internal/synth"
)

// Default port names when a connection path omits the port segment.
const (
	DefaultOutputPort = "output"
	DefaultInputPort  = "input"
)

// Connection is one established link.
type Connection struct {
	From       pathref.Ref
	To         pathref.Ref
	SignalType string
}

// Manager owns the connection list for one graph.
type Manager struct {
	mu          sync.Mutex
	nodes       *nodes.Manager
	connections []Connection
}

// NewManager creates a connection manager over the given node manager.
func NewManager(n *nodes.Manager) *Manager {
	return &Manager{nodes: n}
}

// Validate reports whether a connection between the two paths would be
// accepted: both endpoints must resolve to live nodes, the endpoints must
// be different nodes, and the identical connection must not already exist.
func (m *Manager) Validate(fromPath, toPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateLocked(fromPath, toPath)
}

func (m *Manager) validateLocked(fromPath, toPath string) bool {
	if !pathref.IsValid(fromPath) || !pathref.IsValid(toPath) {
		return false
	}
	from := pathref.Parse(fromPath, DefaultOutputPort)
	to := pathref.Parse(toPath, DefaultInputPort)

	for _, ref := range []pathref.Ref{from, to} {
		inst, ok := m.nodes.Get(ref.NodeID)
		if !ok || inst.Disposed {
			return false
		}
	}
	if from.NodeID == to.NodeID {
		return false
	}
	for _, conn := range m.connections {
		if conn.From == from && conn.To == to {
			return false
		}
	}
	return true
}

// Connect validates, materializes both endpoints, resolves each path to a
// concrete connection point and links source to destination at the engine
// level. On success the connection is recorded and both nodes' adjacency
// maps are updated; on any failure no state changes are made.
func (m *Manager) Connect(ctx context.Context, fromPath, toPath, signalType string) bool {
	logger := ctxlog.FromContext(ctx)
	if signalType == "" {
		signalType = preset.SignalAudio
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.validateLocked(fromPath, toPath) {
		logger.Warn("Connection rejected.", "from", fromPath, "to", toPath)
		return false
	}

	from := pathref.Parse(fromPath, DefaultOutputPort)
	to := pathref.Parse(toPath, DefaultInputPort)
	src, _ := m.nodes.Get(from.NodeID)
	dst, _ := m.nodes.Get(to.NodeID)

	if !m.nodes.Materialize(ctx, src) || !m.nodes.Materialize(ctx, dst) {
		logger.Warn("Connection endpoints failed to materialize.", "from", fromPath, "to", toPath)
		return false
	}

	srcPoint := resolvePoint(src.Unit, from.Property)
	dstPoint := resolvePoint(dst.Unit, to.Property)
	if err := srcPoint.Connect(dstPoint); err != nil {
		logger.Warn("Engine-level link failed.", "from", fromPath, "to", toPath, "error", err)
		return false
	}

	m.connections = append(m.connections, Connection{From: from, To: to, SignalType: signalType})
	src.Outputs[from.Property] = to.NodeID
	dst.Inputs[to.Property] = from.NodeID
	logger.Debug("Connection established.", "from", from.String(), "to", to.String(), "signal", signalType)
	return true
}

// Disconnect reverses one specific connection, removing the engine-level
// link and the tracked adjacency. A connection that is not found is logged
// and reported as false; callers may treat that as a no-op success.
func (m *Manager) Disconnect(ctx context.Context, fromPath, toPath string) bool {
	logger := ctxlog.FromContext(ctx)
	from := pathref.Parse(fromPath, DefaultOutputPort)
	to := pathref.Parse(toPath, DefaultInputPort)

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, conn := range m.connections {
		if conn.From != from || conn.To != to {
			continue
		}
		m.unlinkLocked(conn)
		m.connections = append(m.connections[:i], m.connections[i+1:]...)
		logger.Debug("Connection removed.", "from", from.String(), "to", to.String())
		return true
	}

	logger.Warn("Disconnect requested for unknown connection.", "from", fromPath, "to", toPath)
	return false
}

// DisconnectAll removes every connection touching the given node; used
// before disposal.
func (m *Manager) DisconnectAll(ctx context.Context, nodeID string) {
	logger := ctxlog.FromContext(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.connections[:0]
	removed := 0
	for _, conn := range m.connections {
		if conn.From.NodeID != nodeID && conn.To.NodeID != nodeID {
			kept = append(kept, conn)
			continue
		}
		m.unlinkLocked(conn)
		removed++
	}
	m.connections = kept
	logger.Debug("Connections removed for node.", "id", nodeID, "count", removed)
}

// Connections returns a snapshot of the established connections.
func (m *Manager) Connections() []Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Connection(nil), m.connections...)
}

// Clear drops all tracked connections without touching the engine; used on
// teardown after every unit has been disposed.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections = nil
}

func (m *Manager) unlinkLocked(conn Connection) {
	src, srcOK := m.nodes.Get(conn.From.NodeID)
	dst, dstOK := m.nodes.Get(conn.To.NodeID)
	if srcOK && dstOK && src.Unit != nil && dst.Unit != nil {
		resolvePoint(src.Unit, conn.From.Property).Disconnect(resolvePoint(dst.Unit, conn.To.Property))
	}
	if srcOK {
		delete(src.Outputs, conn.From.Property)
	}
	if dstOK {
		delete(dst.Inputs, conn.To.Property)
	}
}

// resolvePoint resolves a port name against a unit, falling back to the
// unit itself when the requested port is not a structured sub-object.
func resolvePoint(unit synth.Unit, port string) synth.Unit {
	if port == "" || port == DefaultOutputPort || port == DefaultInputPort {
		return unit
	}
	if sub, ok := unit.Port(port); ok {
		return sub
	}
	return unit
}
