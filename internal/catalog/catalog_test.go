package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsound/audiograph/internal/synth/synthtest"
)

func TestRegisterAndLookup(t *testing.T) {
	c := New()
	c.Register(&Recipe{Type: "Synth"})
	c.Register(&Recipe{Type: "Filter"})

	r, ok := c.Lookup("Synth")
	require.True(t, ok)
	assert.Equal(t, "Synth", r.Type)
	assert.NotNil(t, r.Build, "Register should default the build func")

	_, ok = c.Lookup("Unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{"Filter", "Synth"}, c.Types())
}

func TestRegisterDuplicatePanics(t *testing.T) {
	c := New()
	c.Register(&Recipe{Type: "Synth"})
	assert.Panics(t, func() {
		c.Register(&Recipe{Type: "Synth"})
	})
}

func TestEngineBuild(t *testing.T) {
	eng := synthtest.NewEngine()
	build := EngineBuild("Synth")

	unit, err := build(context.Background(), eng, map[string]any{"volume": 0.5})
	require.NoError(t, err)
	require.NotNil(t, unit)

	created := eng.Created()
	require.Len(t, created, 1)
	assert.Equal(t, "Synth", created[0].Tag)
	assert.Equal(t, 0.5, created[0].Settings["volume"])
}
