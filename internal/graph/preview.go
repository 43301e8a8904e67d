package graph

import (
	"context"
	"fmt"

	"github.com/gridsound/audiograph/internal/ctxlog"
	"github.com/gridsound/audiograph/internal/synth"
	"github.com/gridsound/audiograph/internal/waveform"
)

// refreshPreviewLocked renders the trigger node's envelope offline and
// caches a downsampled preview. It is best effort: a failed render keeps
// the previous preview and logs a warning. Called with g.mu held.
func (g *Graph) refreshPreviewLocked(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	if g.cfg == nil {
		return
	}
	triggerIDs := g.cfg.TriggerNodeIDs()
	if len(triggerIDs) == 0 {
		return
	}
	inst, ok := g.nodes.Get(triggerIDs[0])
	if ok && inst.Disposed {
		ok = false
	}
	if !ok {
		return
	}

	settings := inst.CloneSettings()
	attack := synth.EnvelopeField(settings, "attack", synth.DefaultAttack)
	decay := synth.EnvelopeField(settings, "decay", synth.DefaultDecay)
	sustain := synth.EnvelopeField(settings, "sustainDuration", synth.DefaultSustainDuration)
	duration := synth.EnvelopeTotal(settings)
	freq := noteFrequency(nil, settings)
	typ := inst.Type

	// A throwaway instance renders the preview so the live unit's state is
	// untouched. It must outlive the render and is disposed afterwards.
	var unit synth.Unit
	buf, err := g.engine.RenderOffline(ctx, func(dest synth.Unit) error {
		var err error
		unit, err = g.engine.CreateUnit(ctx, typ, settings)
		if err != nil {
			return err
		}
		if err := unit.Connect(dest); err != nil {
			return err
		}
		trig, ok := unit.(synth.Triggerable)
		if !ok {
			return fmt.Errorf("node type %q cannot render a preview", typ)
		}
		trig.TriggerAttackRelease(freq, attack+decay+sustain)
		return nil
	}, duration)
	if unit != nil {
		unit.Dispose()
	}
	if err != nil {
		logger.Warn("Offline preview render failed; keeping previous waveform.", "node", triggerIDs[0], "error", err)
		return
	}

	g.wave = waveform.Downsample(buf, g.previewPoints)
}
