// Package display stringifies a *value.Value back to JSON text for the CLI
// and dev-server boundaries. The evaluator never
// serializes; it only ever hands back a *value.Value.
//
// Marshaling goes through github.com/segmentio/encoding/json, a drop-in,
// faster encoding/json replacement for this hot serialization boundary.
package display

import (
	"math"

	"github.com/segmentio/encoding/json"

	"github.com/vivjson/vivjson/value"
)

// Stringify renders v as JSON text. infinity and nan, when non-empty,
// substitute the configured token text for ±Inf/NaN floats;
// left empty, such floats fall back to Go's default float formatting,
// which is not valid JSON; callers that care about strict JSON output
// should always set both when infinities/NaN are reachable.
func Stringify(v *value.Value, infinity, nan string) (string, error) {
	b, err := json.Marshal(toNative(v, infinity, nan))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// rawToken emits its text verbatim into the output stream, bypassing the
// encoder's own value formatting. Used for the infinity/NaN token
// substitution and for the function placeholder, neither of which is a
// value json.Marshal itself knows how to encode.
type rawToken string

func (t rawToken) MarshalJSON() ([]byte, error) { return []byte(t), nil }

// orderedMap preserves a Map value's insertion order through marshaling;
// map[string]interface{} would let the encoder re-sort keys.
type orderedMap struct {
	keys []string
	vals []interface{}
}

func (m orderedMap) MarshalJSON() ([]byte, error) {
	out := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			out = append(out, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.vals[i])
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
		out = append(out, ':')
		out = append(out, vb...)
	}
	out = append(out, '}')
	return out, nil
}

func toNative(v *value.Value, infinity, nan string) interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case value.Null:
		return nil
	case value.Bool:
		return v.B
	case value.Int:
		return v.I
	case value.Float:
		switch {
		case math.IsInf(v.F, 1) && infinity != "":
			return rawToken(infinity)
		case math.IsInf(v.F, -1) && infinity != "":
			return rawToken("-" + infinity)
		case math.IsNaN(v.F) && nan != "":
			return rawToken(nan)
		default:
			return v.F
		}
	case value.String:
		return v.S
	case value.Array:
		out := make([]interface{}, len(v.A))
		for i, e := range v.A {
			out[i] = toNative(e, infinity, nan)
		}
		return out
	case value.Map:
		keys := v.M.Keys()
		om := orderedMap{keys: keys, vals: make([]interface{}, len(keys))}
		for i, k := range keys {
			ev, _ := v.M.Get(k)
			om.vals[i] = toNative(ev, infinity, nan)
		}
		return om
	case value.Callable:
		return rawToken(`"<function>"`)
	default:
		return nil
	}
}
