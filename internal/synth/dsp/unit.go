package dsp

import (
	"fmt"

	"github.com/gridsound/audiograph/internal/synth"
)

// node is the engine-internal face of a unit: a synth.Unit that can be
// ticked once per frame.
type node interface {
	synth.Unit
	tick(n int64) float64
	base() *unitBase
}

// unitBase carries the graph plumbing every unit shares: parameter objects,
// plain properties, input links and the per-frame output cache. Topology
// and ticking are guarded by the engine's graph mutex; parameter values
// have their own locking inside synth.Param.
type unitBase struct {
	eng    *Engine
	tag    string
	params map[string]*synth.Param
	props  map[string]any
	ports  map[string]synth.Unit

	inputs   []node
	disposed bool

	lastN   int64
	lastOut float64

	// proc computes the unit's output for one frame given the mixed input.
	proc func(n int64, in float64) float64
}

func newUnitBase(eng *Engine, tag string) unitBase {
	return unitBase{
		eng:    eng,
		tag:    tag,
		params: map[string]*synth.Param{},
		props:  map[string]any{},
		ports:  map[string]synth.Unit{},
		lastN:  -1,
	}
}

func (u *unitBase) base() *unitBase { return u }

// tick returns the unit's output for frame n, computing it at most once per
// frame so fan-out does not re-run the unit.
func (u *unitBase) tick(n int64) float64 {
	if u.disposed {
		return 0
	}
	if n == u.lastN {
		return u.lastOut
	}
	u.lastN = n
	var in float64
	for _, src := range u.inputs {
		in += src.tick(n)
	}
	u.lastOut = u.proc(n, in)
	return u.lastOut
}

// exclusive runs fn with the graph paused, for state changes that race the
// pull loop (triggers, filter type swaps).
func (u *unitBase) exclusive(fn func()) {
	u.eng.graphMu.Lock()
	defer u.eng.graphMu.Unlock()
	fn()
}

// Param implements synth.Unit.
func (u *unitBase) Param(name string) (*synth.Param, bool) {
	p, ok := u.params[name]
	return p, ok
}

// Set implements synth.Unit. The base implementation stores a plain
// property; units with meaningful properties override it.
func (u *unitBase) Set(name string, value any) error {
	u.exclusive(func() { u.props[name] = value })
	return nil
}

// Port implements synth.Unit.
func (u *unitBase) Port(name string) (synth.Unit, bool) {
	p, ok := u.ports[name]
	return p, ok
}

// Connect implements synth.Unit: the receiver becomes an input of other.
func (u *unitBase) Connect(other synth.Unit) error {
	dst, ok := other.(node)
	if !ok {
		return fmt.Errorf("%w: foreign unit %T", synth.ErrInvalidConnection, other)
	}

	u.eng.graphMu.Lock()
	defer u.eng.graphMu.Unlock()
	if u.disposed || dst.base().disposed {
		return fmt.Errorf("%w: unit disposed", synth.ErrInvalidConnection)
	}
	db := dst.base()
	for _, in := range db.inputs {
		if in.base() == u {
			return nil
		}
	}
	db.inputs = append(db.inputs, u)
	return nil
}

// Disconnect implements synth.Unit.
func (u *unitBase) Disconnect(other synth.Unit) {
	dst, ok := other.(node)
	if !ok {
		return
	}
	u.eng.graphMu.Lock()
	defer u.eng.graphMu.Unlock()
	db := dst.base()
	kept := db.inputs[:0]
	for _, in := range db.inputs {
		if in.base() != u {
			kept = append(kept, in)
		}
	}
	db.inputs = kept
}

// Dispose implements synth.Unit: the unit is unlinked from every other
// unit's inputs and removed from the engine's registry.
func (u *unitBase) Dispose() {
	u.eng.graphMu.Lock()
	defer u.eng.graphMu.Unlock()
	if u.disposed {
		return
	}
	u.disposed = true

	unlink := func(b *unitBase) {
		kept := b.inputs[:0]
		for _, in := range b.inputs {
			if in.base() != u {
				kept = append(kept, in)
			}
		}
		b.inputs = kept
	}
	unlink(u.eng.dest.base())
	kept := u.eng.units[:0]
	for _, other := range u.eng.units {
		if other.base() == u {
			continue
		}
		unlink(other.base())
		kept = append(kept, other)
	}
	u.eng.units = kept
}
