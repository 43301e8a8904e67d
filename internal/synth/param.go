package synth

import "sync"

// Param is a settable parameter object holding a single numeric value.
// Engine units expose these for every parameter that can vary at runtime;
// plain construction-time properties go through Unit.Set instead.
type Param struct {
	mu    sync.Mutex
	value float64
}

// NewParam creates a parameter initialized to v.
func NewParam(v float64) *Param {
	return &Param{value: v}
}

// Value returns the current parameter value.
func (p *Param) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// SetValue assigns the parameter value.
func (p *Param) SetValue(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = v
}
