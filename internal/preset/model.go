// Package preset defines the declarative instrument configuration and the
// loaders that read it from HCL, JSON and YAML preset files.
//
// A GraphConfig is immutable once handed to the orchestrator for a play
// session; changing configuration means building a new GraphConfig and
// reconfiguring, never mutating the one in use.
package preset

import "sort"

// Signal type tags for connections and node outputs.
const (
	SignalAudio   = "audio"
	SignalControl = "control"
)

// Trigger modes for a playable configuration.
const (
	TriggerMomentary = "momentary"
	TriggerSustained = "sustained"
)

// NodeDefinition declares one node of the instrument graph.
type NodeDefinition struct {
	Type       string         `json:"type" yaml:"type" validate:"required"`
	Settings   map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
	Trigger    bool           `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	SignalType string         `json:"signalType,omitempty" yaml:"signalType,omitempty" validate:"omitempty,oneof=audio control"`
}

// Connection declares a directed signal link between two node reference
// paths (`nodeId` or `nodeId.port`).
type Connection struct {
	From       string `json:"from" yaml:"from" validate:"required"`
	To         string `json:"to" yaml:"to" validate:"required"`
	SignalType string `json:"signalType,omitempty" yaml:"signalType,omitempty" validate:"omitempty,oneof=audio control"`
}

// ModulationRoute declares an advisory parameter-to-parameter modulation.
// Paths default their property segment to "value" when unspecified.
type ModulationRoute struct {
	Source      string      `json:"source" yaml:"source" validate:"required"`
	Destination string      `json:"destination" yaml:"destination" validate:"required"`
	Amount      float64     `json:"amount" yaml:"amount"`
	Scale       *[2]float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Metadata carries presentation-only preset information.
type Metadata struct {
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// GraphConfig is the full declarative unit describing one instrument.
type GraphConfig struct {
	Name        string                     `json:"name" yaml:"name" validate:"required"`
	Nodes       map[string]*NodeDefinition `json:"nodes" yaml:"nodes" validate:"required,min=1,dive,required"`
	Connections []*Connection              `json:"connections,omitempty" yaml:"connections,omitempty" validate:"dive,required"`
	Modulation  []*ModulationRoute         `json:"modulation,omitempty" yaml:"modulation,omitempty" validate:"dive,required"`
	TriggerMode string                     `json:"triggerMode" yaml:"triggerMode" validate:"required,oneof=momentary sustained"`
	Metadata    *Metadata                  `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// TriggerNodeIDs returns the ids of nodes marked as trigger entry points,
// in sorted order.
func (c *GraphConfig) TriggerNodeIDs() []string {
	return sortedKeys(c.Nodes, func(def *NodeDefinition) bool { return def.Trigger })
}

// Clone returns a deep copy of the configuration. The UI facade mutates a
// clone and reconfigures rather than editing the live config in place.
func (c *GraphConfig) Clone() *GraphConfig {
	if c == nil {
		return nil
	}
	out := &GraphConfig{
		Name:        c.Name,
		TriggerMode: c.TriggerMode,
		Nodes:       make(map[string]*NodeDefinition, len(c.Nodes)),
	}
	for id, def := range c.Nodes {
		out.Nodes[id] = &NodeDefinition{
			Type:       def.Type,
			Settings:   CloneSettings(def.Settings),
			Trigger:    def.Trigger,
			SignalType: def.SignalType,
		}
	}
	for _, conn := range c.Connections {
		dup := *conn
		out.Connections = append(out.Connections, &dup)
	}
	for _, route := range c.Modulation {
		dup := *route
		if route.Scale != nil {
			scale := *route.Scale
			dup.Scale = &scale
		}
		out.Modulation = append(out.Modulation, &dup)
	}
	if c.Metadata != nil {
		meta := *c.Metadata
		meta.Tags = append([]string(nil), c.Metadata.Tags...)
		out.Metadata = &meta
	}
	return out
}

// CloneSettings deep-copies a settings bag (maps nested to any depth,
// slices one level).
func CloneSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	out := make(map[string]any, len(settings))
	for k, v := range settings {
		switch nested := v.(type) {
		case map[string]any:
			out[k] = CloneSettings(nested)
		case []any:
			out[k] = append([]any(nil), nested...)
		default:
			out[k] = v
		}
	}
	return out
}

func sortedKeys(nodes map[string]*NodeDefinition, keep func(*NodeDefinition) bool) []string {
	var ids []string
	for id, def := range nodes {
		if keep(def) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
