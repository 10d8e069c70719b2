package value

import (
	"path/filepath"
	"strings"
)

// Format identifies which parser/serializer pair governs a path.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
	FormatINI
	FormatText
)

// String renders the format name, used in log fields and Parse errors.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatINI:
		return "ini"
	default:
		return "text"
	}
}

// DetectFormat implements the extension table of spec.md §4.2: anything
// not in {.json, .yaml, .yml, .toml, .ini, .cfg, .conf} is opaque text,
// handled by the text merge engine (C4) instead of the deep merge
// engine (C3).
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".ini", ".cfg", ".conf":
		return FormatINI
	default:
		return FormatText
	}
}

// Parse dispatches to the format-specific parser.
func Parse(format Format, data []byte) (Value, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	case FormatTOML:
		return ParseTOML(data)
	case FormatINI:
		return ParseINI(data)
	default:
		return String(data), nil
	}
}

// Serialize dispatches to the format-specific serializer.
func Serialize(format Format, v Value) ([]byte, error) {
	switch format {
	case FormatJSON:
		return SerializeJSON(v)
	case FormatYAML:
		return SerializeYAML(v)
	case FormatTOML:
		return SerializeTOML(v)
	case FormatINI:
		return SerializeINI(v)
	default:
		if s, ok := v.(String); ok {
			return []byte(s), nil
		}
		return nil, nil
	}
}
