package dsp

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsound/audiograph/internal/synth"
)

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func peak(samples []float64) float64 {
	var p float64
	for _, s := range samples {
		if a := math.Abs(s); a > p {
			p = a
		}
	}
	return p
}

func TestCreateUnit(t *testing.T) {
	ctx := context.Background()
	eng := NewEngine(NullDevice{})

	t.Run("unknown type tag", func(t *testing.T) {
		_, err := eng.CreateUnit(ctx, "Theremin", nil)
		assert.ErrorIs(t, err, synth.ErrUnknownNodeType)
	})

	t.Run("initial settings reach parameters and ports", func(t *testing.T) {
		u, err := eng.CreateUnit(ctx, "Synth", map[string]any{
			"frequency":  220.0,
			"oscillator": map[string]any{"type": "square"},
			"envelope":   map[string]any{"attack": 0.02},
		})
		require.NoError(t, err)

		p, ok := u.Param("frequency")
		require.True(t, ok)
		assert.InDelta(t, 220, p.Value(), 1e-9)

		_, ok = u.Port("oscillator")
		assert.True(t, ok)
	})
}

func TestEngineLifecycle(t *testing.T) {
	ctx := context.Background()
	eng := NewEngine(NullDevice{})

	assert.False(t, eng.Running())
	require.NoError(t, eng.Start(ctx))
	assert.True(t, eng.Running())
	require.NoError(t, eng.Start(ctx), "starting a running engine is a no-op")

	require.NoError(t, eng.Close())
	assert.False(t, eng.Running())
}

func TestRenderSynthEnvelope(t *testing.T) {
	ctx := context.Background()
	eng := NewEngine(NullDevice{})

	buf, err := eng.RenderOffline(ctx, func(dest synth.Unit) error {
		u, err := eng.CreateUnit(ctx, "Synth", map[string]any{
			"envelope": map[string]any{
				"attack":  0.01,
				"decay":   0.05,
				"sustain": 0.5,
				"release": 0.1,
			},
		})
		if err != nil {
			return err
		}
		if err := u.Connect(dest); err != nil {
			return err
		}
		u.(synth.Triggerable).TriggerAttackRelease(440, 0.1)
		return nil
	}, 0.3)
	require.NoError(t, err)
	require.Len(t, buf, int(0.3*DefaultSampleRate))

	assert.InDelta(t, 0, buf[0], 0.01, "attack starts from silence")
	assert.Greater(t, peak(buf), 0.3, "render must not be silent")

	// Release ends at 0.2s; everything after is exact silence.
	tail := buf[int(0.25*DefaultSampleRate):]
	assert.Zero(t, peak(tail))
}

func TestRenderIsDeterministic(t *testing.T) {
	ctx := context.Background()
	render := func() []float64 {
		eng := NewEngine(NullDevice{})
		buf, err := eng.RenderOffline(ctx, func(dest synth.Unit) error {
			u, err := eng.CreateUnit(ctx, "Oscillator", map[string]any{"frequency": 330.0})
			if err != nil {
				return err
			}
			return u.Connect(dest)
		}, 0.05)
		require.NoError(t, err)
		return buf
	}
	assert.Equal(t, render(), render())
}

func TestGainUnit(t *testing.T) {
	ctx := context.Background()
	eng := NewEngine(NullDevice{})

	render := func(gain float64) []float64 {
		buf, err := eng.RenderOffline(ctx, func(dest synth.Unit) error {
			osc, err := eng.CreateUnit(ctx, "Oscillator", nil)
			if err != nil {
				return err
			}
			g, err := eng.CreateUnit(ctx, "Gain", map[string]any{"value": gain})
			if err != nil {
				return err
			}
			if err := osc.Connect(g); err != nil {
				return err
			}
			return g.Connect(dest)
		}, 0.02)
		require.NoError(t, err)
		return buf
	}

	assert.Zero(t, peak(render(0)), "zero gain silences the path")
	assert.Greater(t, peak(render(0.5)), 0.1)
}

func TestFilterAttenuatesNoise(t *testing.T) {
	ctx := context.Background()

	render := func(filtered bool) []float64 {
		eng := NewEngine(NullDevice{})
		buf, err := eng.RenderOffline(ctx, func(dest synth.Unit) error {
			noise, err := eng.CreateUnit(ctx, "NoiseSynth", nil)
			if err != nil {
				return err
			}
			noise.(synth.Triggerable).TriggerAttack(0)
			if !filtered {
				return noise.Connect(dest)
			}
			flt, err := eng.CreateUnit(ctx, "Filter", map[string]any{
				"frequency":  200.0,
				"filterType": "lowpass",
			})
			if err != nil {
				return err
			}
			if err := noise.Connect(flt); err != nil {
				return err
			}
			return flt.Connect(dest)
		}, 0.2)
		require.NoError(t, err)
		return buf
	}

	raw := rms(render(false))
	low := rms(render(true))
	assert.Less(t, low, raw/2, "a 200 Hz lowpass must strip most white-noise energy")
}

func TestMembraneDecays(t *testing.T) {
	ctx := context.Background()
	eng := NewEngine(NullDevice{})

	buf, err := eng.RenderOffline(ctx, func(dest synth.Unit) error {
		drum, err := eng.CreateUnit(ctx, "MembraneSynth", map[string]any{
			"pitchDecay": 0.05,
			"octaves":    6.0,
			"envelope":   map[string]any{"attack": 0.001, "decay": 0.2, "sustain": 0.01, "release": 0.1},
		})
		if err != nil {
			return err
		}
		if err := drum.Connect(dest); err != nil {
			return err
		}
		drum.(synth.Triggerable).TriggerAttackRelease(55, 0.1)
		return nil
	}, 0.5)
	require.NoError(t, err)

	quarter := len(buf) / 4
	head := rms(buf[:quarter])
	tail := rms(buf[3*quarter:])
	assert.Greater(t, head, 0.05, "the drum hit must be audible")
	assert.Less(t, tail, head/4, "the hit must decay away")
}

func TestDisposeUnlinks(t *testing.T) {
	ctx := context.Background()
	eng := NewEngine(NullDevice{})

	osc, err := eng.CreateUnit(ctx, "Oscillator", nil)
	require.NoError(t, err)
	g, err := eng.CreateUnit(ctx, "Gain", nil)
	require.NoError(t, err)
	require.NoError(t, osc.Connect(g))

	osc.Dispose()
	assert.Empty(t, g.(node).base().inputs)
	assert.ErrorIs(t, osc.Connect(g), synth.ErrInvalidConnection)
}

func TestCancelAllReleasesTriggerables(t *testing.T) {
	ctx := context.Background()
	eng := NewEngine(NullDevice{})

	u, err := eng.CreateUnit(ctx, "Synth", nil)
	require.NoError(t, err)
	u.(synth.Triggerable).TriggerAttack(440)

	eng.CancelAll()
	su := u.(*synthUnit)
	assert.GreaterOrEqual(t, su.env.relAt, 0.0, "release must be scheduled")
}
