// Package dsp is the built-in audio engine: a pull-based mono sample graph
// rendered at a fixed rate, behind the synth.Engine boundary. Units are
// constructed by type tag, linked into a signal graph feeding one
// destination mixer, and ticked once per frame either by the output device
// loop or by an offline render.
package dsp

import (
	"context"
	"fmt"
	"sync"

	"github.com/gridsound/audiograph/internal/ctxlog"
	"github.com/gridsound/audiograph/internal/synth"
)

// DefaultSampleRate is the render rate in frames per second.
const DefaultSampleRate = 44100

// Engine implements synth.Engine over an in-process signal graph.
type Engine struct {
	sampleRate float64
	device     OutputDevice

	mu      sync.Mutex // lifecycle state
	running bool

	graphMu sync.Mutex // topology and per-frame state
	frame   int64
	units   []node
	dest    *destinationUnit
}

// EngineOption adjusts engine construction.
type EngineOption func(*Engine)

// WithSampleRate overrides the render rate.
func WithSampleRate(rate float64) EngineOption {
	return func(e *Engine) { e.sampleRate = rate }
}

// NewEngine creates an engine that plays through the given output device.
func NewEngine(device OutputDevice, opts ...EngineOption) *Engine {
	e := &Engine{
		sampleRate: DefaultSampleRate,
		device:     device,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dest = newDestinationUnit(e)
	return e
}

// CreateUnit implements synth.Engine. The returned unit is live immediately
// but silent until linked toward the destination.
func (e *Engine) CreateUnit(ctx context.Context, typeTag string, settings map[string]any) (synth.Unit, error) {
	var u node
	switch typeTag {
	case "Oscillator":
		u = newOscillatorUnit(e)
	case "LFO":
		u = newLFOUnit(e)
	case "Gain":
		u = newGainUnit(e)
	case "PassThrough":
		u = newPassThroughUnit(e)
	case "Synth":
		u = newSynthUnit(e)
	case "MembraneSynth":
		u = newMembraneUnit(e)
	case "NoiseSynth":
		u = newNoiseUnit(e)
	case "Filter":
		u = newFilterUnit(e)
	default:
		return nil, fmt.Errorf("%w: %q", synth.ErrUnknownNodeType, typeTag)
	}

	e.graphMu.Lock()
	e.units = append(e.units, u)
	e.graphMu.Unlock()

	applySettings(u, settings)
	ctxlog.FromContext(ctx).Debug("Engine unit created.", "type", typeTag)
	return u, nil
}

// Start implements synth.Engine: it opens the output device and begins the
// pull loop. Idempotent while running.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}
	if err := e.device.Start(ctx, e.sampleRate, e.pull); err != nil {
		return fmt.Errorf("%w: %w", synth.ErrEngineNotReady, err)
	}
	e.running = true
	ctxlog.FromContext(ctx).Info("Audio engine started.", "sampleRate", e.sampleRate)
	return nil
}

// Running implements synth.Engine.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Destination implements synth.Engine.
func (e *Engine) Destination() synth.Unit {
	return e.dest
}

// CancelAll implements synth.Engine: the coarse transport stop releases
// every triggerable unit in the graph.
func (e *Engine) CancelAll() {
	e.graphMu.Lock()
	units := append([]node(nil), e.units...)
	e.graphMu.Unlock()
	for _, u := range units {
		if trig, ok := u.(synth.Triggerable); ok {
			trig.TriggerRelease()
		}
	}
}

// Close stops the output device. The graph stays intact and can be started
// again.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return nil
	}
	e.running = false
	return e.device.Stop()
}

// pull fills one device buffer from the live destination.
func (e *Engine) pull(out []float32) {
	e.graphMu.Lock()
	defer e.graphMu.Unlock()
	for i := range out {
		out[i] = float32(e.dest.tick(e.frame))
		e.frame++
	}
}

// RenderOffline implements synth.Engine. The build callback assembles a
// throwaway graph into a private destination; the graph is then ticked for
// the requested duration without touching the output device. Live playback
// pauses for the duration of the pull.
func (e *Engine) RenderOffline(ctx context.Context, build func(dest synth.Unit) error, seconds float64) ([]float64, error) {
	n := int(seconds * e.sampleRate)
	if n <= 0 {
		return nil, fmt.Errorf("%w: non-positive duration %g", synth.ErrRenderFailed, seconds)
	}

	offDest := newDestinationUnit(e)
	if err := build(offDest); err != nil {
		return nil, fmt.Errorf("%w: %w", synth.ErrRenderFailed, err)
	}

	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	buf := make([]float64, n)
	for i := range buf {
		if i%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		buf[i] = offDest.tick(int64(i))
	}
	return buf, nil
}

// applySettings pushes an initial settings bag into a freshly built unit:
// numeric fields matching a parameter set the parameter, nested bags go to
// the matching port or are flattened to dotted properties, everything else
// is a plain property assignment.
func applySettings(u synth.Unit, settings map[string]any) {
	for k, v := range settings {
		if nested, ok := v.(map[string]any); ok {
			if port, found := u.Port(k); found {
				applySettings(port, nested)
				continue
			}
			for sk, sv := range nested {
				_ = u.Set(k+"."+sk, sv)
			}
			continue
		}
		if p, ok := u.Param(k); ok {
			if f, okf := synth.AsFloat(v); okf {
				p.SetValue(f)
				continue
			}
		}
		_ = u.Set(k, v)
	}
}
