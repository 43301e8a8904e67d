package preset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kickHCL = `
instrument "kick-drum" {
  trigger_mode = "momentary"

  metadata {
    category = "drums"
    tags     = ["kick", "analog"]
  }

  node "kick" {
    type    = "MembraneSynth"
    trigger = true
    settings = {
      pitchDecay = 0.05
      octaves    = 10
      envelope = {
        attack          = 0.001
        decay           = 0.4
        sustain         = 0.01
        release         = 1.4
        sustainDuration = 0.1
      }
    }
  }

  node "output" {
    type = "Output"
  }

  connection {
    from = "kick"
    to   = "output"
  }
}
`

const kickJSON = `{
  "name": "kick-drum",
  "triggerMode": "momentary",
  "metadata": {"category": "drums", "tags": ["kick", "analog"]},
  "nodes": {
    "kick": {
      "type": "MembraneSynth",
      "trigger": true,
      "settings": {
        "pitchDecay": 0.05,
        "octaves": 10,
        "envelope": {"attack": 0.001, "decay": 0.4, "sustain": 0.01, "release": 1.4, "sustainDuration": 0.1}
      }
    },
    "output": {"type": "Output"}
  },
  "connections": [{"from": "kick", "to": "output"}]
}`

const kickYAML = `
name: kick-drum
triggerMode: momentary
metadata:
  category: drums
  tags: [kick, analog]
nodes:
  kick:
    type: MembraneSynth
    trigger: true
    settings:
      pitchDecay: 0.05
      octaves: 10
      envelope:
        attack: 0.001
        decay: 0.4
        sustain: 0.01
        release: 1.4
        sustainDuration: 0.1
  output:
    type: Output
connections:
  - from: kick
    to: output
`

func wantKick() *GraphConfig {
	return &GraphConfig{
		Name:        "kick-drum",
		TriggerMode: TriggerMomentary,
		Metadata:    &Metadata{Category: "drums", Tags: []string{"kick", "analog"}},
		Nodes: map[string]*NodeDefinition{
			"kick": {
				Type:    "MembraneSynth",
				Trigger: true,
				Settings: map[string]any{
					"pitchDecay": 0.05,
					"octaves":    10.0,
					"envelope": map[string]any{
						"attack":          0.001,
						"decay":           0.4,
						"sustain":         0.01,
						"release":         1.4,
						"sustainDuration": 0.1,
					},
				},
			},
			"output": {Type: "Output"},
		},
		Connections: []*Connection{{From: "kick", To: "output"}},
	}
}

func TestParseAllFormats(t *testing.T) {
	cases := []struct {
		name  string
		parse func() (*GraphConfig, error)
	}{
		{"hcl", func() (*GraphConfig, error) { return ParseHCL("kick.hcl", []byte(kickHCL)) }},
		{"json", func() (*GraphConfig, error) { return ParseJSON([]byte(kickJSON)) }},
		{"yaml", func() (*GraphConfig, error) { return ParseYAML([]byte(kickYAML)) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := tc.parse()
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())
			if diff := cmp.Diff(wantKick(), cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()

	t.Run("loads by extension", func(t *testing.T) {
		path := filepath.Join(dir, "kick.hcl")
		require.NoError(t, os.WriteFile(path, []byte(kickHCL), 0o644))

		cfg, err := NewLoader().Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "kick-drum", cfg.Name)
	})

	t.Run("rejects unknown extensions", func(t *testing.T) {
		path := filepath.Join(dir, "kick.toml")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "unsupported preset format")
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects zero trigger nodes", func(t *testing.T) {
		cfg := wantKick()
		cfg.Nodes["kick"].Trigger = false
		assert.ErrorContains(t, cfg.Validate(), "exactly one node")
	})

	t.Run("rejects two trigger nodes", func(t *testing.T) {
		cfg := wantKick()
		cfg.Nodes["output"].Trigger = true
		assert.ErrorContains(t, cfg.Validate(), "exactly one node")
	})

	t.Run("rejects unknown trigger mode", func(t *testing.T) {
		cfg := wantKick()
		cfg.TriggerMode = "latching"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects connections to unknown nodes", func(t *testing.T) {
		cfg := wantKick()
		cfg.Connections = append(cfg.Connections, &Connection{From: "kick", To: "ghost"})
		assert.ErrorContains(t, cfg.Validate(), "unknown node")
	})

	t.Run("rejects dotted node ids", func(t *testing.T) {
		cfg := wantKick()
		cfg.Nodes["bad.id"] = &NodeDefinition{Type: "Gain"}
		assert.ErrorContains(t, cfg.Validate(), "not a valid identifier")
	})
}

func TestClone(t *testing.T) {
	original := wantKick()
	clone := original.Clone()

	if diff := cmp.Diff(original, clone); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	clone.Nodes["kick"].Settings["pitchDecay"] = 0.9
	env := clone.Nodes["kick"].Settings["envelope"].(map[string]any)
	env["attack"] = 0.5

	assert.Equal(t, 0.05, original.Nodes["kick"].Settings["pitchDecay"])
	originalEnv := original.Nodes["kick"].Settings["envelope"].(map[string]any)
	assert.Equal(t, 0.001, originalEnv["attack"])
}
