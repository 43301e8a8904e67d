// Package synth defines the boundary to the sound-synthesis engine.
//
// The graph runtime treats the engine as a black box: it constructs
// processing units from a type tag and a settings bag, assigns parameters,
// links units together, and asks for offline renders. The built-in
// implementation lives in the dsp subpackage; tests use the synthtest fake.
package synth

import "context"

// Engine is the host synthesis engine.
type Engine interface {
	// CreateUnit constructs a processing unit for the given type tag,
	// applying the provided settings. It returns ErrUnknownNodeType when the
	// tag is not recognized by the engine.
	CreateUnit(ctx context.Context, typeTag string, settings map[string]any) (Unit, error)

	// Start brings the audio context into its running state. The host
	// platform only permits this in response to an explicit play request, so
	// callers must not invoke it speculatively.
	Start(ctx context.Context) error

	// Running reports whether the audio context has been started.
	Running() bool

	// Destination returns the engine's final output unit. Sound is only
	// audible from units with a connection path to the destination.
	Destination() Unit

	// RenderOffline builds a throwaway unit graph via build, renders seconds
	// of audio through it without touching the live context, and returns the
	// mono sample buffer.
	RenderOffline(ctx context.Context, build func(dest Unit) error, seconds float64) ([]float64, error)

	// CancelAll is the coarse transport stop: it silences every scheduled
	// event on the live context. Used as the release fallback when per-node
	// release fails after a configuration swap.
	CancelAll()
}

// Unit is a single opaque processing unit created by the engine.
type Unit interface {
	// Param returns the settable parameter object registered under name,
	// if the unit exposes one.
	Param(name string) (*Param, bool)

	// Set assigns a plain property. Unknown or read-only properties return
	// an error instead of panicking.
	Set(name string, value any) error

	// Port resolves a named structured sub-object used as a connection
	// point. Units without the named port return false and callers fall
	// back to the unit itself.
	Port(name string) (Unit, bool)

	// Connect links this unit's output to other's input.
	Connect(other Unit) error

	// Disconnect removes a previously established link to other.
	Disconnect(other Unit)

	// Dispose releases engine resources held by the unit. Safe to call more
	// than once.
	Dispose()
}

// Triggerable is implemented by units that can initiate sound.
type Triggerable interface {
	// TriggerAttack starts a note at the given frequency and holds it.
	TriggerAttack(freq float64)

	// TriggerAttackRelease starts a note and schedules its release after
	// seconds of sustain.
	TriggerAttackRelease(freq, seconds float64)

	// TriggerRelease releases the currently held note.
	TriggerRelease()
}
