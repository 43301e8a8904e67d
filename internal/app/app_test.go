package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsound/audiograph/internal/preset"
)

const padYAML = `
name: warm-pad
triggerMode: sustained
nodes:
  voice:
    type: Synth
    trigger: true
    settings:
      oscillatorType: sawtooth
  tone:
    type: Filter
    settings:
      cutoff: 1200
  out:
    type: Output
connections:
  - {from: voice, to: tone}
  - {from: tone, to: out}
`

func writePreset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfig(t *testing.T) {
	t.Run("requires a preset path", func(t *testing.T) {
		_, err := NewConfig(Config{})
		assert.Error(t, err)
	})

	t.Run("defaults the play duration", func(t *testing.T) {
		cfg, err := NewConfig(Config{PresetPath: "some.hcl"})
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.PlayFor)
	})
}

func TestNewAppPanicsOnBadPreset(t *testing.T) {
	cfg, err := NewConfig(Config{PresetPath: "does-not-exist.hcl", Headless: true})
	require.NoError(t, err)

	assert.Panics(t, func() {
		NewApp(&bytes.Buffer{}, cfg, preset.NewLoader())
	})
}

func TestRunHeadless(t *testing.T) {
	path := writePreset(t, "pad.yaml", padYAML)
	out := &bytes.Buffer{}

	cfg, err := NewConfig(Config{
		PresetPath: path,
		PlayFor:    20 * time.Millisecond,
		LogLevel:   "debug",
		Headless:   true,
	})
	require.NoError(t, err)

	a := NewApp(out, cfg, preset.NewLoader())
	require.NoError(t, a.Run(context.Background()))

	assert.False(t, a.Graph().IsPlaying())
	assert.Nil(t, a.Graph().Config(), "teardown leaves the graph uninitialized")
	assert.Contains(t, out.String(), "Playing")
}

func TestGraphAccessors(t *testing.T) {
	path := writePreset(t, "pad.yaml", padYAML)

	cfg, err := NewConfig(Config{PresetPath: path, Headless: true})
	require.NoError(t, err)

	a := NewApp(&bytes.Buffer{}, cfg, preset.NewLoader())
	assert.NotNil(t, a.Graph())
	require.NotNil(t, a.Preset())
	assert.Equal(t, "warm-pad", a.Preset().Name)
}
