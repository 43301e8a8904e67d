package synth

import "errors"

var (
	// ErrEngineNotReady indicates the audio context has not been started.
	// Recoverable: the operation can be deferred until a play request.
	ErrEngineNotReady = errors.New("synth: engine not ready")

	// ErrUnknownNodeType indicates the engine has no recipe for a type tag.
	// Callers fall back to a neutral pass-through unit rather than failing.
	ErrUnknownNodeType = errors.New("synth: unknown node type")

	// ErrStaleNode indicates an operation targeted a disposed node.
	ErrStaleNode = errors.New("synth: stale node reference")

	// ErrInvalidConnection indicates a rejected link: self-connection,
	// duplicate, or missing endpoint.
	ErrInvalidConnection = errors.New("synth: invalid connection")

	// ErrRenderFailed indicates an offline render did not produce a buffer.
	ErrRenderFailed = errors.New("synth: offline render failed")
)
