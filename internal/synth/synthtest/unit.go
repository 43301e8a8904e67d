package synthtest

import (
	"fmt"
	"sync"

	"github.com/gridsound/audiograph/internal/synth"
)

// Unit is a recording fake processing unit. It implements both synth.Unit
// and synth.Triggerable.
type Unit struct {
	mu sync.Mutex

	Tag      string
	Settings map[string]any

	// Props records every plain property assignment.
	Props map[string]any
	// ReadOnly marks property names whose assignment should fail.
	ReadOnly map[string]bool
	// Ports maps port names to structured sub-objects.
	Ports map[string]*Unit

	Disposed bool

	Attacks        []float64
	AttackReleases []AttackRelease
	Releases       int

	engine *Engine
	params map[string]*synth.Param
}

// AttackRelease records one TriggerAttackRelease call.
type AttackRelease struct {
	Freq, Seconds float64
}

// Param implements synth.Unit.
func (u *Unit) Param(name string) (*synth.Param, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.params[name]
	return p, ok
}

// Set implements synth.Unit.
func (u *Unit) Set(name string, value any) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.ReadOnly[name] {
		return fmt.Errorf("property %q is read-only", name)
	}
	u.Props[name] = value
	return nil
}

// Port implements synth.Unit.
func (u *Unit) Port(name string) (synth.Unit, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.Ports[name]
	if !ok {
		return nil, false
	}
	return p, true
}

// Connect implements synth.Unit.
func (u *Unit) Connect(other synth.Unit) error {
	dst, ok := other.(*Unit)
	if !ok {
		return fmt.Errorf("cannot connect to foreign unit %T", other)
	}
	u.engine.addLink(u, dst)
	return nil
}

// Disconnect implements synth.Unit.
func (u *Unit) Disconnect(other synth.Unit) {
	if dst, ok := other.(*Unit); ok {
		u.engine.removeLink(u, dst)
	}
}

// Dispose implements synth.Unit.
func (u *Unit) Dispose() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Disposed = true
}

// TriggerAttack implements synth.Triggerable.
func (u *Unit) TriggerAttack(freq float64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Attacks = append(u.Attacks, freq)
}

// TriggerAttackRelease implements synth.Triggerable.
func (u *Unit) TriggerAttackRelease(freq, seconds float64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.AttackReleases = append(u.AttackReleases, AttackRelease{Freq: freq, Seconds: seconds})
}

// TriggerRelease implements synth.Triggerable.
func (u *Unit) TriggerRelease() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Releases++
}

// ParamValue is a test convenience for reading a parameter's current value.
func (u *Unit) ParamValue(name string) float64 {
	u.mu.Lock()
	p, ok := u.params[name]
	u.mu.Unlock()
	if !ok {
		return 0
	}
	return p.Value()
}
