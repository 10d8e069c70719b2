package value

import (
	"bytes"
	"fmt"
	"strconv"

	yaml "go.yaml.in/yaml/v4"

	"github.com/jinconf/jin/internal/jerr"
)

// ParseYAML decodes YAML into a Value via yaml.Node, which preserves
// mapping key order natively (spec.md §3).
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, jerr.Parse("yaml", err.Error())
	}
	if len(doc.Content) == 0 {
		return Null{}, nil
	}
	v, err := yamlNodeToValue(doc.Content[0])
	if err != nil {
		return nil, jerr.Parse("yaml", err.Error())
	}
	return v, nil
}

func yamlNodeToValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return yamlScalar(n)
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := yamlNodeToValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(n.Content[i].Value, val)
		}
		return m, nil
	case yaml.SequenceNode:
		seq := make(Sequence, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlNodeToValue(c)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.AliasNode:
		return yamlNodeToValue(n.Alias)
	default:
		return Null{}, nil
	}
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.Tag {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(n.Value, 64)
			if ferr != nil {
				return nil, err
			}
			return Integer(int64(f)), nil
		}
		return Integer(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	default:
		return String(n.Value), nil
	}
}

// SerializeYAML encodes a Value back to YAML, rebuilding a yaml.Node
// tree so Map key order is emitted exactly as stored.
func SerializeYAML(v Value) ([]byte, error) {
	node, err := valueToYAMLNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func valueToYAMLNode(v Value) (*yaml.Node, error) {
	switch t := v.(type) {
	case Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case Bool:
		val := "false"
		if bool(t) {
			val = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: val}, nil
	case Integer:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(t), 10)}, nil
	case Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(float64(t), 'g', -1, 64)}, nil
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(t)}, nil
	case Sequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, elem := range t {
			cn, err := valueToYAMLNode(elem)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, cn)
		}
		return node, nil
	case *Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var outErr error
		t.Each(func(k string, val Value) {
			if outErr != nil {
				return
			}
			vn, err := valueToYAMLNode(val)
			if err != nil {
				outErr = err
				return
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, vn)
		})
		if outErr != nil {
			return nil, outErr
		}
		return node, nil
	default:
		return nil, fmt.Errorf("value: unknown variant %T", v)
	}
}
