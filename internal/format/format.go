// Package format names the document formats konvert can read and write.
package format

import (
	"path/filepath"
	"strings"

	"github.com/mcncl/konvert/internal/errors"
)

// Format is one of the supported interchange formats.
type Format int

const (
	Unknown Format = iota
	JSON
	YAML
	XML
)

// All lists the supported formats.
var All = []Format{JSON, YAML, XML}

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case XML:
		return "xml"
	default:
		return "unknown"
	}
}

// Extension returns the preferred file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case JSON:
		return ".json"
	case YAML:
		return ".yaml"
	case XML:
		return ".xml"
	default:
		return ""
	}
}

// Parse resolves a format name. Names are case-insensitive and may carry a leading dot,
// so both "yml" and ".YAML" resolve to YAML.
func Parse(name string) (Format, error) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if normalized == "yml" {
		return YAML, nil
	}
	for _, f := range All {
		if normalized == f.String() {
			return f, nil
		}
	}
	return Unknown, &errors.UnsupportedFormatError{Name: name}
}

// FromPath infers the format from a file extension (.json, .yml, .yaml, .xml).
func FromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	f, err := Parse(ext)
	if err != nil || ext == "" {
		return Unknown, &errors.UnsupportedFormatError{Name: ext, Path: path}
	}
	return f, nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if f == Unknown {
		return nil, &errors.UnsupportedFormatError{}
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, which kong uses to decode the
// --from and --to flags.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
