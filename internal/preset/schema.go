package preset

import "github.com/hashicorp/hcl/v2"

// HCL schema for instrument preset files. The wire shape mirrors
// GraphConfig; translation into the format-agnostic model happens in
// loader.go.

// fileSchema is the top-level structure of a preset file.
type fileSchema struct {
	Instruments []*instrumentSchema `hcl:"instrument,block"`
}

// instrumentSchema represents one `instrument` block.
type instrumentSchema struct {
	Name        string              `hcl:"name,label"`
	TriggerMode string              `hcl:"trigger_mode"`
	Nodes       []*nodeSchema       `hcl:"node,block"`
	Connections []*connectionSchema `hcl:"connection,block"`
	Modulations []*modulationSchema `hcl:"modulation,block"`
	Metadata    *metadataSchema     `hcl:"metadata,block"`
}

// nodeSchema represents one `node` block. Settings stay an unevaluated
// expression so arbitrary nested objects survive decoding.
type nodeSchema struct {
	ID         string         `hcl:"id,label"`
	Type       string         `hcl:"type"`
	Trigger    bool           `hcl:"trigger,optional"`
	SignalType string         `hcl:"signal_type,optional"`
	Settings   hcl.Expression `hcl:"settings,optional"`
}

// connectionSchema represents one `connection` block.
type connectionSchema struct {
	From       string `hcl:"from"`
	To         string `hcl:"to"`
	SignalType string `hcl:"signal_type,optional"`
}

// modulationSchema represents one `modulation` block.
type modulationSchema struct {
	Source      string    `hcl:"source"`
	Destination string    `hcl:"destination"`
	Amount      float64   `hcl:"amount"`
	Scale       []float64 `hcl:"scale,optional"`
}

// metadataSchema represents the presentation-only `metadata` block.
type metadataSchema struct {
	Category    string   `hcl:"category,optional"`
	Tags        []string `hcl:"tags,optional"`
	Description string   `hcl:"description,optional"`
}
