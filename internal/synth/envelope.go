package synth

// Safe defaults for envelope phases when a settings bag omits them.
const (
	DefaultAttack          = 0.01
	DefaultDecay           = 0.1
	DefaultSustainLevel    = 0.5
	DefaultSustainDuration = 0.1
	DefaultRelease         = 0.3
)

// EnvelopeField reads a numeric envelope field out of a settings bag's
// nested "envelope" sub-object, falling back to def when absent.
func EnvelopeField(settings map[string]any, field string, def float64) float64 {
	env, ok := settings["envelope"].(map[string]any)
	if !ok {
		return def
	}
	v, ok := AsFloat(env[field])
	if !ok {
		return def
	}
	return v
}

// EnvelopeTotal computes the sum of a settings bag's envelope phase
// durations. The offline preview renders exactly this long so the release
// tail is fully captured.
func EnvelopeTotal(settings map[string]any) float64 {
	attack := EnvelopeField(settings, "attack", DefaultAttack)
	decay := EnvelopeField(settings, "decay", DefaultDecay)
	sustain := EnvelopeField(settings, "sustainDuration", DefaultSustainDuration)
	release := EnvelopeField(settings, "release", DefaultRelease)
	return attack + decay + sustain + release
}
