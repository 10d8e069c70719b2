// Package merge implements the deterministic, format-aware deep merge
// engine of spec.md §4.3: null-deletion, keyed-array merge, and
// type-override rules over the canonical value.Value model.
package merge

import (
	"strconv"

	"github.com/jinconf/jin/internal/value"
)

// Config controls merge behavior. ArrayKeyFields lists the identifier
// fields checked, in order, when deciding whether a sequence of maps
// qualifies for keyed-array merge (spec.md §4.3 case 3).
type Config struct {
	ArrayKeyFields []string
}

// DefaultConfig returns the spec's default array key fields.
func DefaultConfig() Config {
	return Config{ArrayKeyFields: []string{"id", "name"}}
}

// Merge computes merge(base, overlay) per spec.md §4.3. It never
// returns an error: structured merges always converge (only the text
// merge engine, C4, produces conflicts).
func Merge(base, overlay value.Value, cfg Config) value.Value {
	// Case 1: overlay is Null -> deletion marker, propagates as Null;
	// the caller (a map merge one level up) is responsible for turning
	// this into key removal. At the top level a Null overlay simply
	// means "the whole value was deleted."
	if isNull(overlay) {
		return value.Null{}
	}

	baseMap, baseIsMap := base.(*value.Map)
	overlayMap, overlayIsMap := overlay.(*value.Map)
	if baseIsMap && overlayIsMap {
		return mergeMaps(baseMap, overlayMap, cfg)
	}

	baseSeq, baseIsSeq := base.(value.Sequence)
	overlaySeq, overlayIsSeq := overlay.(value.Sequence)
	if baseIsSeq && overlayIsSeq {
		return mergeSequences(baseSeq, overlaySeq, cfg)
	}

	// Case 4: any other type mismatch, or scalar overlay -> overlay wins whole.
	return overlay
}

func isNull(v value.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(value.Null)
	return ok
}

// mergeMaps implements spec.md §4.3 case 2: iterate overlay entries in
// overlay order; Null overlay values delete the base key; existing
// base keys are recursively merged in place (preserving base's
// position); new keys are appended in overlay order.
func mergeMaps(base, overlay *value.Map, cfg Config) value.Value {
	result := value.NewMap()
	base.Each(func(k string, v value.Value) {
		result.Set(k, v)
	})

	overlay.Each(func(k string, ov value.Value) {
		if isNull(ov) {
			result.Delete(k)
			return
		}
		if bv, present := result.Get(k); present {
			result.Set(k, Merge(bv, ov, cfg))
			return
		}
		result.Set(k, ov)
	})

	return result
}

// mergeSequences implements spec.md §4.3 case 3.
func mergeSequences(base, overlay value.Sequence, cfg Config) value.Value {
	if len(overlay) == 0 {
		// Explicit clearing: an empty overlay sequence replaces.
		return overlay
	}

	if keyField, ok := commonKeyField(base, overlay, cfg.ArrayKeyFields); ok {
		return mergeKeyedArrays(base, overlay, keyField, cfg)
	}

	// Case 4 fallback: unkeyed (or partially-keyed) arrays are replaced whole.
	return overlay
}

// commonKeyField returns the first field in keyFields that every
// element of both base and overlay is a map containing. Partial-keyed
// arrays (some elements keyed, some not, or keyed by different fields)
// fall back to replacement per spec.md §4.3's design rationale.
func commonKeyField(base, overlay value.Sequence, keyFields []string) (string, bool) {
	if len(base) == 0 {
		return "", false
	}
	for _, field := range keyFields {
		if allElementsHaveKey(base, field) && allElementsHaveKey(overlay, field) {
			return field, true
		}
	}
	return "", false
}

func allElementsHaveKey(seq value.Sequence, field string) bool {
	if len(seq) == 0 {
		return false
	}
	for _, elem := range seq {
		m, ok := elem.(*value.Map)
		if !ok {
			return false
		}
		if _, present := m.Get(field); !present {
			return false
		}
	}
	return true
}

// mergeKeyedArrays merges two arrays of maps by identifier field:
// output is base order (with matching overlay elements merged in
// place) followed by overlay-only elements in overlay order.
func mergeKeyedArrays(base, overlay value.Sequence, keyField string, cfg Config) value.Value {
	overlayByKey := make(map[string]*value.Map, len(overlay))
	overlayOrder := make([]string, 0, len(overlay))
	for _, elem := range overlay {
		m := elem.(*value.Map)
		k, _ := m.Get(keyField)
		ks := keyString(k)
		if _, seen := overlayByKey[ks]; !seen {
			overlayOrder = append(overlayOrder, ks)
		}
		overlayByKey[ks] = m
	}

	consumed := make(map[string]bool, len(overlay))
	result := make(value.Sequence, 0, len(base)+len(overlay))

	for _, elem := range base {
		bm := elem.(*value.Map)
		k, _ := bm.Get(keyField)
		ks := keyString(k)
		if om, present := overlayByKey[ks]; present {
			result = append(result, Merge(bm, om, cfg))
			consumed[ks] = true
		} else {
			result = append(result, bm)
		}
	}

	for _, ks := range overlayOrder {
		if consumed[ks] {
			continue
		}
		result = append(result, overlayByKey[ks])
	}

	return result
}

// keyString renders a keyed-array identifier field to a comparable
// string. Prefixing with the Kind avoids collisions between, e.g., the
// string "1" and the integer 1.
func keyString(v value.Value) string {
	switch t := v.(type) {
	case value.String:
		return "s:" + string(t)
	case value.Integer:
		return "i:" + strconv.FormatInt(int64(t), 10)
	case value.Float:
		return "f:" + strconv.FormatFloat(float64(t), 'g', -1, 64)
	case value.Bool:
		return "b:" + strconv.FormatBool(bool(t))
	default:
		return "n:"
	}
}
