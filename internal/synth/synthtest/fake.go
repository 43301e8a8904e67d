// Package synthtest provides a recording fake of the synth.Engine boundary
// for component tests. Every unit it creates records parameter writes,
// property writes, links and trigger calls so tests can assert on exactly
// what the graph runtime asked the engine to do.
package synthtest

import (
	"context"
	"sync"

	"github.com/gridsound/audiograph/internal/synth"
)

// Link records one engine-level connection between two fake units.
type Link struct {
	From, To *Unit
}

// Engine is an in-memory fake of synth.Engine.
type Engine struct {
	mu sync.Mutex

	// UnknownTypes lists type tags CreateUnit should reject with
	// synth.ErrUnknownNodeType.
	UnknownTypes map[string]bool

	// ParamNames lists the parameter objects every created unit exposes.
	ParamNames []string

	// StartErr, when set, is returned by Start to simulate the host
	// refusing to run the audio context.
	StartErr error

	// RenderErr, when set, fails RenderOffline.
	RenderErr error

	// SampleRate drives the length of offline render buffers.
	SampleRate int

	running     bool
	dest        *Unit
	created     []*Unit
	links       []Link
	cancelCalls int
	renderCalls int
}

// NewEngine creates a fake engine with sensible defaults.
func NewEngine() *Engine {
	e := &Engine{
		UnknownTypes: map[string]bool{},
		ParamNames:   []string{"frequency", "value", "depth"},
		SampleRate:   4410,
	}
	e.dest = e.newUnit("Destination", nil)
	return e
}

func (e *Engine) newUnit(tag string, settings map[string]any) *Unit {
	u := &Unit{
		Tag:      tag,
		Settings: settings,
		engine:   e,
		params:   map[string]*synth.Param{},
		Props:    map[string]any{},
		ReadOnly: map[string]bool{},
		Ports:    map[string]*Unit{},
	}
	for _, name := range e.ParamNames {
		u.params[name] = synth.NewParam(0)
	}
	return u
}

// CreateUnit implements synth.Engine.
func (e *Engine) CreateUnit(ctx context.Context, typeTag string, settings map[string]any) (synth.Unit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.UnknownTypes[typeTag] {
		return nil, synth.ErrUnknownNodeType
	}
	u := e.newUnit(typeTag, settings)
	e.created = append(e.created, u)
	return u, nil
}

// Start implements synth.Engine.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.StartErr != nil {
		return e.StartErr
	}
	e.running = true
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

// RenderOffline implements synth.Engine. The returned buffer is a
// deterministic ramp so downsampling results are stable across runs.
func (e *Engine) RenderOffline(ctx context.Context, build func(dest synth.Unit) error, seconds float64) ([]float64, error) {
	e.mu.Lock()
	e.renderCalls++
	renderErr := e.RenderErr
	sampleRate := e.SampleRate
	e.mu.Unlock()

	if renderErr != nil {
		return nil, renderErr
	}
	offlineDest := e.newUnit("Destination", nil)
	if err := build(offlineDest); err != nil {
		return nil, err
	}
	n := int(seconds * float64(sampleRate))
	if n <= 0 {
		return nil, synth.ErrRenderFailed
	}
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = float64(i) / float64(n)
	}
	return buf, nil
}

// CancelAll implements synth.Engine.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelCalls++
}

// Created returns every unit the engine has constructed for the live graph.
func (e *Engine) Created() []*Unit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Unit(nil), e.created...)
}

// Links returns every live engine-level connection.
func (e *Engine) Links() []Link {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Link(nil), e.links...)
}

// CancelCalls reports how many times the coarse transport stop ran.
func (e *Engine) CancelCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelCalls
}

// RenderCalls reports how many offline renders were requested.
func (e *Engine) RenderCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderCalls
}

func (e *Engine) addLink(from, to *Unit) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.links = append(e.links, Link{From: from, To: to})
}

func (e *Engine) removeLink(from, to *Unit) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.links[:0]
	for _, l := range e.links {
		if l.From != from || l.To != to {
			kept = append(kept, l)
		}
	}
	e.links = kept
}
