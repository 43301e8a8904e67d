package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteToFreq(t *testing.T) {
	cases := []struct {
		note string
		want float64
	}{
		{"A4", 440},
		{"C4", 261.6255653005986},
		{"F#3", 184.9972113558172},
		{"Bb2", 116.54094037952248},
		{"a4", 440},
	}
	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			got, err := NoteToFreq(tc.note)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	for _, bad := range []string{"", "H4", "C", "C#", "Cx4"} {
		_, err := NoteToFreq(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestResolveNote(t *testing.T) {
	freq, ok := ResolveNote(220.0)
	require.True(t, ok)
	assert.Equal(t, 220.0, freq)

	freq, ok = ResolveNote("A3")
	require.True(t, ok)
	assert.InDelta(t, 220.0, freq, 1e-9)

	_, ok = ResolveNote(nil)
	assert.False(t, ok)

	_, ok = ResolveNote("not-a-note")
	assert.False(t, ok)
}

func TestEnvelopeTotal(t *testing.T) {
	t.Run("sums declared phases", func(t *testing.T) {
		settings := map[string]any{
			"envelope": map[string]any{
				"attack":          0.001,
				"decay":           0.4,
				"sustainDuration": 0.1,
				"release":         1.4,
			},
		}
		assert.InDelta(t, 1.901, EnvelopeTotal(settings), 1e-9)
	})

	t.Run("missing fields fall back to defaults", func(t *testing.T) {
		want := DefaultAttack + DefaultDecay + DefaultSustainDuration + DefaultRelease
		assert.InDelta(t, want, EnvelopeTotal(map[string]any{}), 1e-9)
	})
}

func TestParam(t *testing.T) {
	p := NewParam(440)
	assert.Equal(t, 440.0, p.Value())
	p.SetValue(880)
	assert.Equal(t, 880.0, p.Value())
}
