package dsp

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/gridsound/audiograph/internal/synth"
)

// waveSample evaluates one cycle of the named waveform at phase in [0, 1).
func waveSample(wave string, phase float64) float64 {
	switch wave {
	case "square":
		if phase < 0.5 {
			return 1
		}
		return -1
	case "sawtooth":
		return 2*phase - 1
	case "triangle":
		return 1 - 4*math.Abs(phase-0.5)
	default: // sine
		return math.Sin(2 * math.Pi * phase)
	}
}

// oscillatorUnit is a free-running waveform generator. Parameters:
// frequency (Hz), detune (cents). Property "type" selects the waveform.
type oscillatorUnit struct {
	unitBase
	phase float64
	wave  string
}

func newOscillatorUnit(e *Engine) *oscillatorUnit {
	u := &oscillatorUnit{unitBase: newUnitBase(e, "Oscillator"), wave: "sine"}
	u.params["frequency"] = synth.NewParam(440)
	u.params["detune"] = synth.NewParam(0)
	u.proc = func(n int64, in float64) float64 {
		freq := u.params["frequency"].Value() * math.Exp2(u.params["detune"].Value()/1200)
		out := waveSample(u.wave, u.phase)
		u.phase += freq / e.sampleRate
		u.phase -= math.Floor(u.phase)
		return out
	}
	return u
}

func (u *oscillatorUnit) Set(name string, value any) error {
	if name == "type" {
		if wave, ok := value.(string); ok {
			u.exclusive(func() { u.wave = wave })
			return nil
		}
	}
	return u.unitBase.Set(name, value)
}

// lfoUnit is a low-frequency sine scaled by a depth parameter, for control
// signals. Its last output is readable through the "value" parameter so
// modulation routes can sample it.
type lfoUnit struct {
	unitBase
	phase float64
}

func newLFOUnit(e *Engine) *lfoUnit {
	u := &lfoUnit{unitBase: newUnitBase(e, "LFO")}
	u.params["frequency"] = synth.NewParam(5)
	u.params["depth"] = synth.NewParam(1)
	u.params["value"] = synth.NewParam(0)
	u.proc = func(n int64, in float64) float64 {
		out := math.Sin(2*math.Pi*u.phase) * u.params["depth"].Value()
		u.phase += u.params["frequency"].Value() / e.sampleRate
		u.phase -= math.Floor(u.phase)
		u.params["value"].SetValue(out)
		return out
	}
	return u
}

// gainUnit scales its mixed input by the "value" parameter.
type gainUnit struct {
	unitBase
}

func newGainUnit(e *Engine) *gainUnit {
	u := &gainUnit{unitBase: newUnitBase(e, "Gain")}
	u.params["value"] = synth.NewParam(1)
	u.proc = func(n int64, in float64) float64 {
		return in * u.params["value"].Value()
	}
	return u
}

// passThroughUnit forwards its mixed input unchanged. It stands in for
// node types that fail to materialize, so the surrounding graph keeps a
// valid signal path.
type passThroughUnit struct {
	unitBase
}

func newPassThroughUnit(e *Engine) *passThroughUnit {
	u := &passThroughUnit{unitBase: newUnitBase(e, "PassThrough")}
	u.proc = func(n int64, in float64) float64 { return in }
	return u
}

// noiseUnit is a triggerable white-noise source shaped by an envelope. The
// generator is seeded deterministically so offline renders are stable.
type noiseUnit struct {
	unitBase
	env adsr
	rng *rand.Rand
}

func newNoiseUnit(e *Engine) *noiseUnit {
	u := &noiseUnit{
		unitBase: newUnitBase(e, "NoiseSynth"),
		env:      newADSR(),
		rng:      rand.New(rand.NewPCG(0x6e6f697365, 0)),
	}
	dt := 1 / e.sampleRate
	u.proc = func(n int64, in float64) float64 {
		lvl := u.env.level(dt)
		if lvl == 0 {
			return 0
		}
		return (u.rng.Float64()*2 - 1) * lvl
	}
	return u
}

func (u *noiseUnit) Set(name string, value any) error {
	if field, ok := strings.CutPrefix(name, "envelope."); ok {
		if f, okf := synth.AsFloat(value); okf {
			u.exclusive(func() { u.env.setField(field, f) })
			return nil
		}
	}
	return u.unitBase.Set(name, value)
}

func (u *noiseUnit) TriggerAttack(freq float64) {
	u.exclusive(func() { u.env.trigger() })
}

func (u *noiseUnit) TriggerAttackRelease(freq, seconds float64) {
	u.exclusive(func() {
		u.env.trigger()
		u.env.scheduleRelease(seconds)
	})
}

func (u *noiseUnit) TriggerRelease() {
	u.exclusive(func() { u.env.releaseNow() })
}

// destinationUnit mixes its inputs and soft-clips the sum so stacked
// sources cannot blow past full scale.
type destinationUnit struct {
	unitBase
}

func newDestinationUnit(e *Engine) *destinationUnit {
	u := &destinationUnit{unitBase: newUnitBase(e, "Destination")}
	u.proc = func(n int64, in float64) float64 {
		return math.Tanh(in)
	}
	return u
}
