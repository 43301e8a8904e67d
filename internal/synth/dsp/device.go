package dsp

import "context"

// OutputDevice is the sound card boundary: Start begins pulling sample
// buffers through the given callback until Stop.
type OutputDevice interface {
	Start(ctx context.Context, sampleRate float64, pull func(out []float32)) error
	Stop() error
}

// NullDevice is an OutputDevice that never pulls. Offline rendering and
// tests run the engine against it; headless hosts can too.
type NullDevice struct{}

func (NullDevice) Start(ctx context.Context, sampleRate float64, pull func(out []float32)) error {
	return nil
}

func (NullDevice) Stop() error { return nil }
