package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jinconf/jin/internal/value"
)

func mustJSON(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("ParseJSON(%q) error = %v", s, err)
	}
	return v
}

func TestMerge_NullDeletionNested(t *testing.T) {
	base := mustJSON(t, `{"a":{"b":1,"c":2}}`)
	overlay := mustJSON(t, `{"a":{"b":null}}`)

	got := Merge(base, overlay, DefaultConfig())
	want := mustJSON(t, `{"a":{"c":2}}`)

	if diff := cmp.Diff(toPlain(want), toPlain(got)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_NullDeletion_SiblingsUnaffected(t *testing.T) {
	base := mustJSON(t, `{"a":1,"b":2,"c":3}`)
	overlay := mustJSON(t, `{"b":null}`)

	got := Merge(base, overlay, DefaultConfig())
	want := mustJSON(t, `{"a":1,"c":3}`)

	if diff := cmp.Diff(toPlain(want), toPlain(got)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_KeyedArrayByID(t *testing.T) {
	base := mustJSON(t, `[{"id":"x","v":1},{"id":"y","v":2}]`)
	overlay := mustJSON(t, `[{"id":"y","v":20},{"id":"z","v":3}]`)

	got := Merge(base, overlay, DefaultConfig())
	want := mustJSON(t, `[{"id":"x","v":1},{"id":"y","v":20},{"id":"z","v":3}]`)

	if diff := cmp.Diff(toPlain(want), toPlain(got)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_UnkeyedArrayReplacement(t *testing.T) {
	base := mustJSON(t, `{"a":[1,2,3]}`)
	overlay := mustJSON(t, `{"a":[9]}`)

	got := Merge(base, overlay, DefaultConfig())
	want := mustJSON(t, `{"a":[9]}`)

	if diff := cmp.Diff(toPlain(want), toPlain(got)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_PartiallyKeyedArrayFallsBackToReplacement(t *testing.T) {
	base := mustJSON(t, `[{"id":"x","v":1},{"v":2}]`)
	overlay := mustJSON(t, `[{"id":"y","v":20}]`)

	got := Merge(base, overlay, DefaultConfig())
	want := mustJSON(t, `[{"id":"y","v":20}]`)

	if diff := cmp.Diff(toPlain(want), toPlain(got)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_EmptyOverlayMapIsNoOp(t *testing.T) {
	base := mustJSON(t, `{"a":1}`)
	overlay := mustJSON(t, `{}`)

	got := Merge(base, overlay, DefaultConfig())
	want := mustJSON(t, `{"a":1}`)

	if diff := cmp.Diff(toPlain(want), toPlain(got)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_EmptyOverlaySequenceReplaces(t *testing.T) {
	base := mustJSON(t, `{"a":[1,2,3]}`)
	overlay := mustJSON(t, `{"a":[]}`)

	got := Merge(base, overlay, DefaultConfig())
	want := mustJSON(t, `{"a":[]}`)

	if diff := cmp.Diff(toPlain(want), toPlain(got)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_EmptyMapSurvivesDeletion(t *testing.T) {
	base := mustJSON(t, `{"a":{"b":1}}`)
	overlay := mustJSON(t, `{"a":{"b":null}}`)

	got := Merge(base, overlay, DefaultConfig())
	want := mustJSON(t, `{"a":{}}`)

	if diff := cmp.Diff(toPlain(want), toPlain(got)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_ScalarOverlayWinsWhole(t *testing.T) {
	base := mustJSON(t, `{"a":{"b":1}}`)
	overlay := mustJSON(t, `{"a":5}`)

	got := Merge(base, overlay, DefaultConfig())
	want := mustJSON(t, `{"a":5}`)

	if diff := cmp.Diff(toPlain(want), toPlain(got)); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_NewKeyAppendedInOverlayOrder(t *testing.T) {
	base := mustJSON(t, `{"a":1}`)
	overlay := mustJSON(t, `{"b":2,"c":3}`)

	got := Merge(base, overlay, DefaultConfig())
	gm := got.(*value.Map)
	if diff := cmp.Diff([]string{"a", "b", "c"}, gm.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
}

// toPlain flattens a Value tree to plain Go data for cmp.Diff, since
// Value's *Map wraps an unexported ordered-map type cmp can't traverse.
func toPlain(v value.Value) any {
	switch t := v.(type) {
	case value.Null:
		return nil
	case value.Bool:
		return bool(t)
	case value.Integer:
		return int64(t)
	case value.Float:
		return float64(t)
	case value.String:
		return string(t)
	case value.Sequence:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toPlain(e)
		}
		return out
	case *value.Map:
		out := make(map[string]any, t.Len())
		t.Each(func(k string, val value.Value) {
			out[k] = toPlain(val)
		})
		return out
	default:
		return nil
	}
}
