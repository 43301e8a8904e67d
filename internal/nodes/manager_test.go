package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsound/audiograph/internal/catalog"
	"github.com/gridsound/audiograph/internal/preset"
	"github.com/gridsound/audiograph/internal/synth/synthtest"
)

func testCatalog() *catalog.Catalog {
	c := catalog.New()
	c.Register(&catalog.Recipe{
		Type: "Synth",
		Defaults: map[string]any{
			"volume": -6.0,
			"oscillator": map[string]any{
				"type": "sine",
			},
		},
		Rewrites: map[string]string{
			"oscillatorType": "oscillator.type",
		},
	})
	c.Register(&catalog.Recipe{Type: "Output", ConnectToDestination: true})
	c.Register(&catalog.Recipe{Type: PassThroughType})
	return c
}

func newTestManager(t *testing.T) (*Manager, *synthtest.Engine) {
	t.Helper()
	eng := synthtest.NewEngine()
	return NewManager(eng, testCatalog()), eng
}

func TestCreatePlaceholder(t *testing.T) {
	ctx := context.Background()

	t.Run("registers without touching the engine", func(t *testing.T) {
		m, eng := newTestManager(t)
		inst := m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})

		require.NotNil(t, inst)
		assert.False(t, inst.Materialized())
		assert.Empty(t, eng.Created())
	})

	t.Run("merges recipe defaults under declared settings", func(t *testing.T) {
		m, _ := newTestManager(t)
		inst := m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{
			Type:     "Synth",
			Settings: map[string]any{"volume": -12.0},
		})

		assert.Equal(t, -12.0, inst.Settings["volume"])
		osc := inst.Settings["oscillator"].(map[string]any)
		assert.Equal(t, "sine", osc["type"])
	})

	t.Run("rewrites flat fields on create", func(t *testing.T) {
		m, _ := newTestManager(t)
		inst := m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{
			Type:     "Synth",
			Settings: map[string]any{"oscillatorType": "square"},
		})

		osc := inst.Settings["oscillator"].(map[string]any)
		assert.Equal(t, "square", osc["type"])
	})

	t.Run("duplicate id overwrites and disposes the old unit", func(t *testing.T) {
		m, eng := newTestManager(t)
		first := m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})
		require.True(t, m.Materialize(ctx, first))
		firstUnit := eng.Created()[0]

		second := m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})
		assert.NotSame(t, first, second)
		assert.True(t, first.Disposed)
		assert.True(t, firstUnit.Disposed)
		assert.False(t, second.Materialized())
		assert.Equal(t, 1, m.Len())
	})
}

func TestMaterialize(t *testing.T) {
	ctx := context.Background()

	t.Run("is idempotent", func(t *testing.T) {
		m, eng := newTestManager(t)
		inst := m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})

		require.True(t, m.Materialize(ctx, inst))
		require.True(t, m.Materialize(ctx, inst))
		assert.Len(t, eng.Created(), 1, "second materialize must not construct")
	})

	t.Run("returns false for disposed instances", func(t *testing.T) {
		m, _ := newTestManager(t)
		inst := m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})
		m.Dispose(ctx, "lead")

		assert.False(t, m.Materialize(ctx, inst))
	})

	t.Run("falls back to pass-through on unknown engine type", func(t *testing.T) {
		m, eng := newTestManager(t)
		eng.UnknownTypes["Synth"] = true
		inst := m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})

		require.True(t, m.Materialize(ctx, inst))
		created := eng.Created()
		require.Len(t, created, 1)
		assert.Equal(t, PassThroughType, created[0].Tag)
	})

	t.Run("auto-links output recipes to the destination", func(t *testing.T) {
		m, eng := newTestManager(t)
		inst := m.CreatePlaceholder(ctx, "out", &preset.NodeDefinition{Type: "Output"})

		require.True(t, m.Materialize(ctx, inst))
		links := eng.Links()
		require.Len(t, links, 1)
		assert.Same(t, eng.Destination().(*synthtest.Unit), links[0].To)
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("materializes first, then applies params", func(t *testing.T) {
		m, eng := newTestManager(t)
		m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})

		require.NoError(t, m.UpdateSettings(ctx, "lead", map[string]any{"frequency": 220.0}))
		created := eng.Created()
		require.Len(t, created, 1)
		assert.Equal(t, 220.0, created[0].ParamValue("frequency"))
	})

	t.Run("merges nested structures one level deep", func(t *testing.T) {
		m, _ := newTestManager(t)
		m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{
			Type: "Synth",
			Settings: map[string]any{
				"envelope": map[string]any{"attack": 0.01, "decay": 0.2},
			},
		})

		require.NoError(t, m.UpdateSettings(ctx, "lead", map[string]any{
			"envelope": map[string]any{"attack": 0.5},
		}))

		inst, ok := m.Get("lead")
		require.True(t, ok)
		env := inst.Settings["envelope"].(map[string]any)
		assert.Equal(t, 0.5, env["attack"])
		assert.Equal(t, 0.2, env["decay"], "sibling keys must be preserved")
	})

	t.Run("applies nested values as dotted properties", func(t *testing.T) {
		m, eng := newTestManager(t)
		m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})

		require.NoError(t, m.UpdateSettings(ctx, "lead", map[string]any{"oscillatorType": "square"}))
		created := eng.Created()
		require.Len(t, created, 1)
		assert.Equal(t, "square", created[0].Props["oscillator.type"])
	})

	t.Run("read-only properties are skipped, not fatal", func(t *testing.T) {
		m, eng := newTestManager(t)
		m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})
		require.NoError(t, m.UpdateSettings(ctx, "lead", map[string]any{"volume": -3.0}))

		eng.Created()[0].ReadOnly["volume"] = true
		assert.NoError(t, m.UpdateSettings(ctx, "lead", map[string]any{"volume": -1.0}))
	})

	t.Run("unknown and disposed nodes are stale", func(t *testing.T) {
		m, _ := newTestManager(t)
		assert.Error(t, m.UpdateSettings(ctx, "ghost", map[string]any{"volume": 0.0}))

		m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})
		m.Dispose(ctx, "lead")
		assert.Error(t, m.UpdateSettings(ctx, "lead", map[string]any{"volume": 0.0}))
	})

	t.Run("aborts when materialization fails", func(t *testing.T) {
		m, eng := newTestManager(t)
		eng.UnknownTypes["Synth"] = true
		eng.UnknownTypes[PassThroughType] = true
		m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})

		assert.ErrorContains(t, m.UpdateSettings(ctx, "lead", map[string]any{"volume": 0.0}), "materialization failed")
	})
}

func TestDispose(t *testing.T) {
	ctx := context.Background()

	t.Run("releases the unit and removes the record", func(t *testing.T) {
		m, eng := newTestManager(t)
		inst := m.CreatePlaceholder(ctx, "lead", &preset.NodeDefinition{Type: "Synth"})
		require.True(t, m.Materialize(ctx, inst))

		m.Dispose(ctx, "lead")
		assert.True(t, eng.Created()[0].Disposed)
		assert.Equal(t, 0, m.Len())
		_, ok := m.Get("lead")
		assert.False(t, ok)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		m, _ := newTestManager(t)
		assert.NotPanics(t, func() { m.Dispose(ctx, "ghost") })
	})

	t.Run("DisposeAll empties the manager", func(t *testing.T) {
		m, _ := newTestManager(t)
		m.CreatePlaceholder(ctx, "a", &preset.NodeDefinition{Type: "Synth"})
		m.CreatePlaceholder(ctx, "b", &preset.NodeDefinition{Type: "Output"})

		m.DisposeAll(ctx)
		assert.Equal(t, 0, m.Len())
	})
}
