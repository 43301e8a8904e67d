// Package synths registers the triggerable voice node types.
package synths

import (
	"github.com/gridsound/audiograph/internal/catalog"
	"github.com/gridsound/audiograph/internal/synth"
)

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Register registers the voice recipes with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.Register(&catalog.Recipe{
		Type: "Synth",
		Defaults: map[string]any{
			"envelope": map[string]any{
				"attack":          synth.DefaultAttack,
				"decay":           synth.DefaultDecay,
				"sustain":         synth.DefaultSustainLevel,
				"sustainDuration": synth.DefaultSustainDuration,
				"release":         synth.DefaultRelease,
			},
		},
		// The public shape is flat; the engine nests oscillator fields.
		Rewrites: map[string]string{
			"oscillatorType": "oscillator.type",
			"detune":         "oscillator.detune",
		},
		ConnectToDestination: true,
	})

	c.Register(&catalog.Recipe{
		Type: "MembraneSynth",
		Defaults: map[string]any{
			"pitchDecay": 0.05,
			"octaves":    10.0,
			"envelope": map[string]any{
				"attack":          0.001,
				"decay":           0.4,
				"sustain":         0.01,
				"sustainDuration": 0.1,
				"release":         1.4,
			},
		},
		ConnectToDestination: true,
	})

	c.Register(&catalog.Recipe{
		Type: "NoiseSynth",
		Defaults: map[string]any{
			"envelope": map[string]any{
				"attack":          synth.DefaultAttack,
				"decay":           synth.DefaultDecay,
				"sustain":         synth.DefaultSustainLevel,
				"sustainDuration": synth.DefaultSustainDuration,
				"release":         synth.DefaultRelease,
			},
		},
		Rewrites: map[string]string{
			"noiseType": "type",
		},
		ConnectToDestination: true,
	})
}
