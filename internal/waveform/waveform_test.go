package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestDownsample(t *testing.T) {
	t.Run("long buffers reduce to exactly the target count", func(t *testing.T) {
		out := Downsample(ramp(44100), DefaultPoints)
		assert.Len(t, out, DefaultPoints)
	})

	t.Run("stride sampling is uniform and deterministic", func(t *testing.T) {
		out := Downsample(ramp(1000), 10)
		require.Len(t, out, 10)
		assert.Equal(t, []float64{0, 100, 200, 300, 400, 500, 600, 700, 800, 900}, out)

		again := Downsample(ramp(1000), 10)
		assert.Equal(t, out, again)
	})

	t.Run("short buffers are copied unchanged", func(t *testing.T) {
		src := ramp(5)
		out := Downsample(src, 10)
		assert.Equal(t, src, out)

		out[0] = 99
		assert.Equal(t, 0.0, src[0], "result must not alias the input")
	})

	t.Run("degenerate inputs return nil", func(t *testing.T) {
		assert.Nil(t, Downsample(nil, 10))
		assert.Nil(t, Downsample(ramp(10), 0))
	})
}
