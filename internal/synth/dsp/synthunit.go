package dsp

import (
	"math"
	"strings"

	"github.com/gridsound/audiograph/internal/synth"
)

// synthUnit pairs an oscillator with an amplitude envelope. The oscillator
// is exposed through the "oscillator" port so its waveform and detune can
// be addressed from settings.
type synthUnit struct {
	unitBase
	osc *oscillatorUnit
	env adsr
}

func newSynthUnit(e *Engine) *synthUnit {
	u := &synthUnit{
		unitBase: newUnitBase(e, "Synth"),
		osc:      newOscillatorUnit(e),
		env:      newADSR(),
	}
	u.params["frequency"] = u.osc.params["frequency"]
	u.ports["oscillator"] = u.osc
	dt := 1 / e.sampleRate
	u.proc = func(n int64, in float64) float64 {
		lvl := u.env.level(dt)
		if lvl == 0 {
			return 0
		}
		return u.osc.tick(n) * lvl
	}
	return u
}

func (u *synthUnit) Set(name string, value any) error {
	if field, ok := strings.CutPrefix(name, "envelope."); ok {
		if f, okf := synth.AsFloat(value); okf {
			u.exclusive(func() { u.env.setField(field, f) })
			return nil
		}
	}
	if field, ok := strings.CutPrefix(name, "oscillator."); ok {
		return u.osc.Set(field, value)
	}
	return u.unitBase.Set(name, value)
}

func (u *synthUnit) TriggerAttack(freq float64) {
	u.params["frequency"].SetValue(freq)
	u.exclusive(func() { u.env.trigger() })
}

func (u *synthUnit) TriggerAttackRelease(freq, seconds float64) {
	u.params["frequency"].SetValue(freq)
	u.exclusive(func() {
		u.env.trigger()
		u.env.scheduleRelease(seconds)
	})
}

func (u *synthUnit) TriggerRelease() {
	u.exclusive(func() { u.env.releaseNow() })
}

// membraneUnit is a drum voice: a sine oscillator whose pitch starts
// several octaves above the played frequency and sweeps down to it over
// pitchDecay seconds, shaped by an amplitude envelope.
type membraneUnit struct {
	unitBase
	env        adsr
	phase      float64
	pitchDecay float64
	octaves    float64
}

func newMembraneUnit(e *Engine) *membraneUnit {
	u := &membraneUnit{
		unitBase:   newUnitBase(e, "MembraneSynth"),
		env:        newADSR(),
		pitchDecay: 0.05,
		octaves:    10,
	}
	u.env.attack = 0.001
	u.env.decay = 0.4
	u.env.sustainLevel = 0.01
	u.env.release = 1.4
	u.params["frequency"] = synth.NewParam(440)
	dt := 1 / e.sampleRate
	u.proc = func(n int64, in float64) float64 {
		lvl := u.env.level(dt)
		if lvl == 0 {
			return 0
		}
		base := u.params["frequency"].Value()
		sweep := 0.0
		if u.pitchDecay > 0 && u.env.t < u.pitchDecay {
			sweep = u.octaves * (1 - u.env.t/u.pitchDecay)
		}
		freq := base * math.Exp2(sweep)
		out := math.Sin(2 * math.Pi * u.phase)
		u.phase += freq / e.sampleRate
		u.phase -= math.Floor(u.phase)
		return out * lvl
	}
	return u
}

func (u *membraneUnit) Set(name string, value any) error {
	if field, ok := strings.CutPrefix(name, "envelope."); ok {
		if f, okf := synth.AsFloat(value); okf {
			u.exclusive(func() { u.env.setField(field, f) })
			return nil
		}
	}
	switch name {
	case "pitchDecay":
		if f, ok := synth.AsFloat(value); ok {
			u.exclusive(func() { u.pitchDecay = f })
			return nil
		}
	case "octaves":
		if f, ok := synth.AsFloat(value); ok {
			u.exclusive(func() { u.octaves = f })
			return nil
		}
	}
	return u.unitBase.Set(name, value)
}

func (u *membraneUnit) TriggerAttack(freq float64) {
	u.params["frequency"].SetValue(freq)
	u.exclusive(func() { u.env.trigger() })
}

func (u *membraneUnit) TriggerAttackRelease(freq, seconds float64) {
	u.params["frequency"].SetValue(freq)
	u.exclusive(func() {
		u.env.trigger()
		u.env.scheduleRelease(seconds)
	})
}

func (u *membraneUnit) TriggerRelease() {
	u.exclusive(func() { u.env.releaseNow() })
}
