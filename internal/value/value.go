// Package value defines the canonical Value model shared by every
// structured-format parser/serializer (spec.md §3, §4.2): a single sum
// type spanning JSON, YAML, TOML, and INI, with insertion-ordered maps.
package value

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Value is the canonical form every structured-format parser produces
// and every serializer consumes. The concrete kinds are Null, Bool,
// Integer, Float, String, Sequence, and Map.
type Value interface {
	// Kind identifies the concrete variant for type switches that need
	// it without a Go type assertion (merge.go leans on this heavily).
	Kind() Kind
	isValue()
}

// Kind enumerates the Value variants.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindSequence
	KindMap
)

// Null is the JSON/YAML/TOML null / absent value. In merge.go it also
// doubles as the deletion marker (spec.md §4.3 rule 1).
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) isValue()   {}

// Bool wraps a boolean scalar.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) isValue()   {}

// Integer wraps a 64-bit signed integer, kept distinct from Float so
// round-tripping through YAML/TOML/JSON never turns "1" into "1.0".
type Integer int64

func (Integer) Kind() Kind { return KindInteger }
func (Integer) isValue()   {}

// Float wraps a 64-bit float.
type Float float64

func (Float) Kind() Kind { return KindFloat }
func (Float) isValue()   {}

// String wraps a UTF-8 string scalar.
type String string

func (String) Kind() Kind { return KindString }
func (String) isValue()   {}

// Sequence is an ordered list of values.
type Sequence []Value

func (Sequence) Kind() Kind { return KindSequence }
func (Sequence) isValue()   {}

// Map is the insertion-ordered string-keyed map required by spec.md §3
// ("map ordering is preserved and semantically significant") and §9
// ("Any implementation must use an ordered-map type, not a hash map").
type Map struct {
	om *orderedmap.OrderedMap[string, Value]
}

func (*Map) Kind() Kind { return KindMap }
func (*Map) isValue()   {}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{om: orderedmap.New[string, Value]()}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil || m.om == nil {
		return 0
	}
	return m.om.Len()
}

// Get returns the value at key and whether it was present.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil || m.om == nil {
		return nil, false
	}
	return m.om.Get(key)
}

// Set inserts or overwrites key, preserving its original position if
// it already existed (spec.md §4.3 rule 2).
func (m *Map) Set(key string, v Value) {
	if m.om == nil {
		m.om = orderedmap.New[string, Value]()
	}
	m.om.Set(key, v)
}

// Delete removes key, returning whether it was present.
func (m *Map) Delete(key string) bool {
	if m == nil || m.om == nil {
		return false
	}
	_, present := m.om.Delete(key)
	return present
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil || m.om == nil {
		return nil
	}
	keys := make([]string, 0, m.om.Len())
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every key/value pair in insertion order.
func (m *Map) Each(fn func(key string, v Value)) {
	if m == nil || m.om == nil {
		return
	}
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a shallow copy preserving key order; values are not
// deep-copied (Value variants other than *Map are immutable by
// convention, and *Map values are cloned recursively by callers that
// need it, e.g. merge.Merge).
func (m *Map) Clone() *Map {
	out := NewMap()
	m.Each(func(k string, v Value) {
		out.Set(k, v)
	})
	return out
}
