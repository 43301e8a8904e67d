package preset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/gridsound/audiograph/internal/ctxlog"
)

// Loader reads an instrument configuration from a preset file.
type Loader interface {
	Load(ctx context.Context, path string) (*GraphConfig, error)
}

// FileLoader loads presets from disk, choosing the parser by file
// extension: .hcl, .json, .yaml/.yml.
type FileLoader struct{}

// NewLoader creates a file-based preset loader.
func NewLoader() *FileLoader {
	return &FileLoader{}
}

// Load reads, parses and validates the preset at path.
func (l *FileLoader) Load(ctx context.Context, path string) (*GraphConfig, error) {
	logger := ctxlog.FromContext(ctx)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}

	var cfg *GraphConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl":
		cfg, err = ParseHCL(path, src)
	case ".json":
		cfg, err = ParseJSON(src)
	case ".yaml", ".yml":
		cfg, err = ParseYAML(src)
	default:
		return nil, fmt.Errorf("unsupported preset format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Preset loaded.", "path", path, "name", cfg.Name, "nodes", len(cfg.Nodes))
	return cfg, nil
}

// ParseHCL decodes a native-HCL preset file into a GraphConfig.
func ParseHCL(filename string, src []byte) (*GraphConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse preset HCL: %w", diags)
	}
	return decodeHCLFile(file)
}

func decodeHCLFile(file *hcl.File) (*GraphConfig, error) {
	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode preset: %w", diags)
	}
	if len(schema.Instruments) != 1 {
		return nil, fmt.Errorf("preset must declare exactly one instrument, found %d", len(schema.Instruments))
	}
	return translate(schema.Instruments[0])
}

// ParseJSON decodes the JSON-compatible preset shape into a GraphConfig.
func ParseJSON(src []byte) (*GraphConfig, error) {
	var cfg GraphConfig
	if err := json.Unmarshal(src, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode JSON preset: %w", err)
	}
	return &cfg, nil
}

// ParseYAML decodes a YAML preset into a GraphConfig.
func ParseYAML(src []byte) (*GraphConfig, error) {
	var cfg GraphConfig
	if err := yaml.Unmarshal(src, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML preset: %w", err)
	}
	normalizeSettings(&cfg)
	return &cfg, nil
}

// normalizeSettings rewrites the interface-keyed maps the YAML decoder can
// produce inside settings bags into map[string]any.
func normalizeSettings(cfg *GraphConfig) {
	for _, def := range cfg.Nodes {
		def.Settings = normalizeBag(def.Settings)
	}
}

func normalizeBag(bag map[string]any) map[string]any {
	for k, v := range bag {
		bag[k] = normalizeValue(v)
	}
	return bag
}

func normalizeValue(v any) any {
	switch nested := v.(type) {
	case map[string]any:
		return normalizeBag(nested)
	case map[any]any:
		out := make(map[string]any, len(nested))
		for k, val := range nested {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		for i, item := range nested {
			nested[i] = normalizeValue(item)
		}
		return nested
	case int:
		return float64(nested)
	default:
		return v
	}
}

// translate converts the HCL schema form into the format-agnostic model.
func translate(inst *instrumentSchema) (*GraphConfig, error) {
	cfg := &GraphConfig{
		Name:        inst.Name,
		TriggerMode: inst.TriggerMode,
		Nodes:       make(map[string]*NodeDefinition, len(inst.Nodes)),
	}

	for _, node := range inst.Nodes {
		def := &NodeDefinition{
			Type:       node.Type,
			Trigger:    node.Trigger,
			SignalType: node.SignalType,
		}
		if node.Settings != nil {
			val, diags := node.Settings.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate settings for node %q: %w", node.ID, diags)
			}
			settings, err := settingsFromCty(val)
			if err != nil {
				return nil, fmt.Errorf("invalid settings for node %q: %w", node.ID, err)
			}
			def.Settings = settings
		}
		cfg.Nodes[node.ID] = def
	}

	for _, conn := range inst.Connections {
		cfg.Connections = append(cfg.Connections, &Connection{
			From:       conn.From,
			To:         conn.To,
			SignalType: conn.SignalType,
		})
	}

	for _, mod := range inst.Modulations {
		route := &ModulationRoute{
			Source:      mod.Source,
			Destination: mod.Destination,
			Amount:      mod.Amount,
		}
		if len(mod.Scale) == 2 {
			route.Scale = &[2]float64{mod.Scale[0], mod.Scale[1]}
		} else if len(mod.Scale) != 0 {
			return nil, fmt.Errorf("modulation scale must be [min, max], got %d values", len(mod.Scale))
		}
		cfg.Modulation = append(cfg.Modulation, route)
	}

	if inst.Metadata != nil {
		cfg.Metadata = &Metadata{
			Category:    inst.Metadata.Category,
			Tags:        inst.Metadata.Tags,
			Description: inst.Metadata.Description,
		}
	}

	return cfg, nil
}
