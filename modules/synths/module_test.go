package synths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsound/audiograph/internal/catalog"
)

func TestRegister(t *testing.T) {
	c := catalog.New()
	(&Module{}).Register(c)

	assert.Equal(t, []string{"MembraneSynth", "NoiseSynth", "Synth"}, c.Types())

	r, ok := c.Lookup("Synth")
	require.True(t, ok)
	assert.True(t, r.ConnectToDestination)
	assert.Equal(t, "oscillator.type", r.Rewrites["oscillatorType"])

	drum, ok := c.Lookup("MembraneSynth")
	require.True(t, ok)
	env, ok := drum.Defaults["envelope"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.4, env["release"])
}
