package nodes

import (
	"context"
	"strings"

	"github.com/gridsound/audiograph/internal/catalog"
	"github.com/gridsound/audiograph/internal/ctxlog"
	"github.com/gridsound/audiograph/internal/synth"
)

// applyRewrites translates public flat field names into the engine's nested
// shape using the recipe's rewrite table. A rewrite target of the form
// "oscillator.type" nests the value one level: {"oscillatorType": v}
// becomes {"oscillator": {"type": v}}. Keys without a rewrite pass through
// unchanged. The input bag is never mutated.
func applyRewrites(settings map[string]any, recipe *catalog.Recipe) map[string]any {
	out := make(map[string]any, len(settings))
	for k, v := range settings {
		target := k
		if recipe != nil {
			if rewritten, ok := recipe.Rewrites[k]; ok {
				target = rewritten
			}
		}

		parent, child, nested := strings.Cut(target, ".")
		if !nested {
			out[target] = cloneValue(v)
			continue
		}
		sub, ok := out[parent].(map[string]any)
		if !ok {
			sub = map[string]any{}
			out[parent] = sub
		}
		sub[child] = cloneValue(v)
	}
	return out
}

// mergeSettings merges src into dst: shallow at the top level, merged one
// extra level when both sides hold a nested structure, so updating
// envelope.attack preserves sibling envelope keys.
func mergeSettings(dst, src map[string]any) {
	for k, v := range src {
		srcSub, srcIsMap := v.(map[string]any)
		dstSub, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			for sk, sv := range srcSub {
				dstSub[sk] = sv
			}
			continue
		}
		dst[k] = cloneValue(v)
	}
}

// applyToUnit pushes changed settings keys to a materialized unit. For each
// key: a settable parameter object wins; a structured value is applied one
// level deeper (against the matching port when the unit exposes one);
// everything else is assigned as a plain property, guarded against
// read-only failures.
func applyToUnit(ctx context.Context, unit synth.Unit, changed map[string]any) {
	logger := ctxlog.FromContext(ctx)
	for k, v := range changed {
		if p, ok := unit.Param(k); ok {
			if f, numeric := synth.AsFloat(v); numeric {
				p.SetValue(f)
				continue
			}
		}

		if sub, ok := v.(map[string]any); ok {
			target := unit
			prefix := k + "."
			if port, ok := unit.Port(k); ok {
				target = port
				prefix = ""
			}
			for sk, sv := range sub {
				if p, ok := target.Param(sk); ok {
					if f, numeric := synth.AsFloat(sv); numeric {
						p.SetValue(f)
						continue
					}
				}
				if err := target.Set(prefix+sk, sv); err != nil {
					logger.Warn("Skipped unsettable nested property.", "key", prefix+sk, "error", err)
				}
			}
			continue
		}

		if err := unit.Set(k, v); err != nil {
			logger.Warn("Skipped unsettable property.", "key", k, "error", err)
		}
	}
}

func cloneValue(v any) any {
	switch nested := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(nested))
		for k, val := range nested {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		return append([]any(nil), nested...)
	default:
		return v
	}
}
