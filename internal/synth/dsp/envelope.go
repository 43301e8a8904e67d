package dsp

// adsr is a linear attack-decay-sustain-release envelope driven by the
// unit's own elapsed time since the last attack. Mutations happen under the
// engine's graph mutex.
type adsr struct {
	attack       float64
	decay        float64
	sustainLevel float64
	release      float64

	active bool
	t      float64 // seconds since attack
	relAt  float64 // seconds at which release begins, -1 while unscheduled
}

func newADSR() adsr {
	return adsr{
		attack:       0.01,
		decay:        0.1,
		sustainLevel: 0.5,
		release:      0.3,
		relAt:        -1,
	}
}

func (e *adsr) trigger() {
	e.active = true
	e.t = 0
	e.relAt = -1
}

// scheduleRelease arms the release phase at the given offset from the
// attack.
func (e *adsr) scheduleRelease(at float64) {
	e.relAt = at
}

// releaseNow begins the release phase immediately unless one is already
// underway.
func (e *adsr) releaseNow() {
	if e.active && (e.relAt < 0 || e.t < e.relAt) {
		e.relAt = e.t
	}
}

// level returns the gain for the current frame and advances the envelope
// clock by dt seconds.
func (e *adsr) level(dt float64) float64 {
	if !e.active {
		return 0
	}
	lvl := e.at(e.t)
	e.t += dt
	return lvl
}

func (e *adsr) at(t float64) float64 {
	if e.relAt >= 0 && t >= e.relAt {
		if e.release <= 0 {
			e.active = false
			return 0
		}
		frac := (t - e.relAt) / e.release
		if frac >= 1 {
			e.active = false
			return 0
		}
		return e.sustained(e.relAt) * (1 - frac)
	}
	return e.sustained(t)
}

// sustained is the pre-release shape: linear attack to 1, linear decay to
// the sustain level, then flat.
func (e *adsr) sustained(t float64) float64 {
	switch {
	case t < e.attack:
		if e.attack <= 0 {
			return 1
		}
		return t / e.attack
	case t < e.attack+e.decay:
		if e.decay <= 0 {
			return e.sustainLevel
		}
		return 1 - (1-e.sustainLevel)*(t-e.attack)/e.decay
	default:
		return e.sustainLevel
	}
}

// setField updates one envelope field by its public settings name.
func (e *adsr) setField(name string, v float64) bool {
	switch name {
	case "attack":
		e.attack = v
	case "decay":
		e.decay = v
	case "sustain", "sustainLevel":
		e.sustainLevel = v
	case "release":
		e.release = v
	case "sustainDuration":
		// Duration only matters to offline preview length; the live
		// envelope holds the sustain level until released.
	default:
		return false
	}
	return true
}
