package dsp

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/gridsound/audiograph/internal/synth"
)

// filterUnit runs its mixed input through one biquad section. Parameters:
// frequency (cutoff in Hz), Q. Property "filterType" selects the response
// (lowpass, highpass, bandpass, notch). Coefficients are redesigned when a
// parameter moves; the section state carries over so sweeps stay smooth.
type filterUnit struct {
	unitBase
	section  *biquad.Section
	ftype    string
	lastFreq float64
	lastQ    float64
}

func newFilterUnit(e *Engine) *filterUnit {
	u := &filterUnit{unitBase: newUnitBase(e, "Filter"), ftype: "lowpass"}
	u.params["frequency"] = synth.NewParam(1000)
	u.params["Q"] = synth.NewParam(1)
	u.proc = func(n int64, in float64) float64 {
		freq := u.params["frequency"].Value()
		q := u.params["Q"].Value()
		if u.section == nil || freq != u.lastFreq || q != u.lastQ {
			u.redesign(freq, q)
		}
		return u.section.ProcessSample(in)
	}
	return u
}

func (u *filterUnit) redesign(freq, q float64) {
	var c biquad.Coefficients
	switch u.ftype {
	case "highpass":
		c = design.Highpass(freq, q, u.eng.sampleRate)
	case "bandpass":
		c = design.Bandpass(freq, q, u.eng.sampleRate)
	case "notch":
		c = design.Notch(freq, q, u.eng.sampleRate)
	default:
		c = design.Lowpass(freq, q, u.eng.sampleRate)
	}
	next := biquad.NewSection(c)
	if u.section != nil {
		next.SetState(u.section.State())
	}
	u.section = next
	u.lastFreq = freq
	u.lastQ = q
}

func (u *filterUnit) Set(name string, value any) error {
	if name == "filterType" || name == "type" {
		if ftype, ok := value.(string); ok {
			u.exclusive(func() {
				u.ftype = ftype
				u.section = nil
			})
			return nil
		}
	}
	return u.unitBase.Set(name, value)
}
