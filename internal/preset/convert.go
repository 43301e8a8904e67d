package preset

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ctyToGo translates an evaluated cty value into the plain Go shapes the
// settings model uses: map[string]any for objects and maps, []any for
// sequences, float64 for numbers.
func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() || val == cty.NilVal {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported settings value type %s", ty.FriendlyName())
	}
}

// settingsFromCty converts an evaluated settings expression into a settings
// bag, requiring the top level to be an object.
func settingsFromCty(val cty.Value) (map[string]any, error) {
	converted, err := ctyToGo(val)
	if err != nil {
		return nil, err
	}
	if converted == nil {
		return nil, nil
	}
	bag, ok := converted.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("settings must be an object, got %T", converted)
	}
	return bag, nil
}
