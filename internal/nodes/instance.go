// Package nodes owns the mapping from node identifier to runtime node
// instance. It creates placeholder records from configuration, lazily
// materializes processing units, merges settings updates into units, and
// disposes units on teardown.
package nodes

import (
	"github.com/gridsound/audiograph/internal/catalog"
	"github.com/gridsound/audiograph/internal/synth"
)

// Instance is the runtime record for one declared node. Unit stays nil
// until the node is materialized; materialization happens at most once and
// only on the first trigger or settings update, because constructing engine
// units before the audio context runs is disallowed by the host platform.
type Instance struct {
	ID         string
	Type       string
	Unit       synth.Unit
	Settings   map[string]any
	Trigger    bool
	SignalType string

	// Inputs maps an input port name to the node id feeding it;
	// Outputs maps an output port name to the node id it feeds.
	Inputs  map[string]string
	Outputs map[string]string

	Disposed bool

	recipe *catalog.Recipe
}

// Materialized reports whether the instance has a live processing unit.
func (n *Instance) Materialized() bool {
	return n.Unit != nil
}

// CloneSettings returns a deep copy of the instance's current settings so
// callers can read or reshape them without racing concurrent merges.
func (n *Instance) CloneSettings() map[string]any {
	out := make(map[string]any, len(n.Settings))
	for k, v := range n.Settings {
		out[k] = cloneValue(v)
	}
	return out
}

// Triggerable returns the unit's trigger surface if the node is
// materialized and its unit can initiate sound.
func (n *Instance) Triggerable() (synth.Triggerable, bool) {
	if n.Unit == nil {
		return nil, false
	}
	trig, ok := n.Unit.(synth.Triggerable)
	return trig, ok
}
