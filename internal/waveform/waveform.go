// Package waveform reduces rendered audio buffers to fixed-size preview
// data for display.
package waveform

// DefaultPoints is the preview size the orchestrator caches.
const DefaultPoints = 1024

// Downsample reduces samples to exactly points values by uniform stride
// sampling. Buffers shorter than points are returned as a copy, so the
// result length is deterministic for a given input length.
func Downsample(samples []float64, points int) []float64 {
	if len(samples) == 0 || points <= 0 {
		return nil
	}
	if len(samples) <= points {
		return append([]float64(nil), samples...)
	}
	out := make([]float64, points)
	for i := range out {
		out[i] = samples[i*len(samples)/points]
	}
	return out
}
