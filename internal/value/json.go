package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jinconf/jin/internal/jerr"
)

// ParseJSON decodes JSON into a Value, preserving object key order via
// token-level streaming — encoding/json alone decodes objects into Go
// maps and loses order, which spec.md §3 requires we keep.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, jerr.Parse("json", err.Error())
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return jsonValueFromToken(dec, tok)
}

func jsonValueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return m, nil
		case '[':
			seq := Sequence{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				seq = append(seq, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return seq, nil
		}
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		if iv, err := t.Int64(); err == nil {
			return Integer(iv), nil
		}
		fv, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Float(fv), nil
	case string:
		return String(t), nil
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

// SerializeJSON encodes a Value back to JSON bytes, writing object keys
// in the Map's stored order and using two-space indentation.
func SerializeJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		_, _ = io.WriteString(w, "  ")
	}
}

func writeJSON(w io.Writer, v Value, depth int) error {
	switch t := v.(type) {
	case Null, nil:
		_, err := io.WriteString(w, "null")
		return err
	case Bool:
		s := "false"
		if bool(t) {
			s = "true"
		}
		_, err := io.WriteString(w, s)
		return err
	case Integer:
		_, err := fmt.Fprintf(w, "%d", int64(t))
		return err
	case Float:
		_, err := fmt.Fprintf(w, "%v", float64(t))
		return err
	case String:
		b, err := json.Marshal(string(t))
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case Sequence:
		if len(t) == 0 {
			_, err := io.WriteString(w, "[]")
			return err
		}
		if _, err := io.WriteString(w, "[\n"); err != nil {
			return err
		}
		for i, elem := range t {
			writeIndent(w, depth+1)
			if err := writeJSON(w, elem, depth+1); err != nil {
				return err
			}
			if i < len(t)-1 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		writeIndent(w, depth)
		_, err := io.WriteString(w, "]")
		return err
	case *Map:
		if t.Len() == 0 {
			_, err := io.WriteString(w, "{}")
			return err
		}
		if _, err := io.WriteString(w, "{\n"); err != nil {
			return err
		}
		keys := t.Keys()
		for i, key := range keys {
			writeIndent(w, depth+1)
			kb, err := json.Marshal(key)
			if err != nil {
				return err
			}
			if _, err := w.Write(kb); err != nil {
				return err
			}
			if _, err := io.WriteString(w, ": "); err != nil {
				return err
			}
			val, _ := t.Get(key)
			if err := writeJSON(w, val, depth+1); err != nil {
				return err
			}
			if i < len(keys)-1 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		writeIndent(w, depth)
		_, err := io.WriteString(w, "}")
		return err
	default:
		return fmt.Errorf("value: unknown variant %T", v)
	}
}
