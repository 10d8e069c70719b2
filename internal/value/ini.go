package value

import (
	"bytes"
	"strconv"

	"github.com/go-ini/ini"

	"github.com/jinconf/jin/internal/jerr"
)

// ParseINI decodes INI into a Value. go-ini preserves both section and
// key order (it is built for round-tripping hand-edited ini files), so
// this is the one structured format where source order survives
// end-to-end without extra work. The DEFAULT section's keys are
// flattened into the root map; named sections become nested maps.
func ParseINI(data []byte) (Value, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, jerr.Parse("ini", err.Error())
	}

	root := NewMap()
	for _, section := range f.Sections() {
		if section.Name() == ini.DefaultSection {
			for _, key := range section.Keys() {
				root.Set(key.Name(), String(key.Value()))
			}
			continue
		}
		sm := NewMap()
		for _, key := range section.Keys() {
			sm.Set(key.Name(), String(key.Value()))
		}
		root.Set(section.Name(), sm)
	}
	return root, nil
}

// SerializeINI encodes a Value back to INI. Root scalar keys go into
// the DEFAULT section; root keys whose value is a Map become named
// sections. Non-scalar, non-map root values (sequences) cannot be
// represented in INI and are rejected.
func SerializeINI(v Value) ([]byte, error) {
	m, ok := v.(*Map)
	if !ok {
		return nil, jerr.Parse("ini", "top-level INI value must be a map")
	}

	f := ini.Empty()
	var outErr error
	m.Each(func(key string, val Value) {
		if outErr != nil {
			return
		}
		switch t := val.(type) {
		case *Map:
			section, err := f.NewSection(key)
			if err != nil {
				outErr = err
				return
			}
			t.Each(func(sk string, sv Value) {
				if outErr != nil {
					return
				}
				s, serr := scalarString(sv)
				if serr != nil {
					outErr = serr
					return
				}
				if _, err := section.NewKey(sk, s); err != nil {
					outErr = err
				}
			})
		default:
			s, err := scalarString(t)
			if err != nil {
				outErr = err
				return
			}
			section := f.Section(ini.DefaultSection)
			if _, err := section.NewKey(key, s); err != nil {
				outErr = err
			}
		}
	})
	if outErr != nil {
		return nil, outErr
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalarString(v Value) (string, error) {
	switch t := v.(type) {
	case String:
		return string(t), nil
	case Integer:
		return strconv.FormatInt(int64(t), 10), nil
	case Float:
		return strconv.FormatFloat(float64(t), 'g', -1, 64), nil
	case Bool:
		if bool(t) {
			return "true", nil
		}
		return "false", nil
	case Null:
		return "", nil
	default:
		return "", jerr.Parse("ini", "INI section values must be scalar")
	}
}
