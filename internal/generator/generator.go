// Package generator encodes models.Value trees as JSON, YAML or XML.
package generator

import (
	"github.com/mcncl/konvert/internal/analyzer"
	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/formatter"
	"github.com/mcncl/konvert/internal/models"
)

// DefaultRootTag names the single element that wraps every XML document.
const DefaultRootTag = "root"

// Options tune encoding. Zero fields fall back to DefaultOptions.
type Options struct {
	// JSONIndent is the number of spaces per JSON nesting level
	JSONIndent int
	// YAMLIndent is the number of spaces per YAML nesting level
	YAMLIndent int
	// XMLIndent is the number of spaces per XML nesting level
	XMLIndent int
	// RootTag names the XML wrapper element
	RootTag string
	// NullText is the XML text written for Null values
	NullText string
	// Sequences decides how Sequences are written to XML
	Sequences analyzer.SequencePolicy
	// KeyStyle rewrites keys before they become XML element names
	KeyStyle formatter.KeyStyle
	// KeyMappings names the XML elements of specific keys, ahead of KeyStyle
	KeyMappings map[string]string
}

// DefaultOptions returns the encoding conventions: 4-space JSON, 2-space YAML and XML,
// a "root" XML wrapper, empty text for Null and an error for Sequences in XML.
func DefaultOptions() Options {
	return Options{
		JSONIndent: 4,
		YAMLIndent: 2,
		XMLIndent:  2,
		RootTag:    DefaultRootTag,
		NullText:   "",
		Sequences:  analyzer.SequenceError,
		KeyStyle:   formatter.KeyStylePreserve,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.JSONIndent <= 0 {
		o.JSONIndent = d.JSONIndent
	}
	if o.YAMLIndent <= 0 {
		o.YAMLIndent = d.YAMLIndent
	}
	if o.XMLIndent <= 0 {
		o.XMLIndent = d.XMLIndent
	}
	if o.RootTag == "" {
		o.RootTag = d.RootTag
	}
	if o.Sequences == "" {
		o.Sequences = d.Sequences
	}
	if o.KeyStyle == "" {
		o.KeyStyle = d.KeyStyle
	}
	return o
}

func (o Options) formatter() *formatter.Formatter {
	return formatter.NewFormatterWithMappings(o.KeyStyle, o.KeyMappings)
}

// Generate encodes v in the given format. Either the complete document or an error is
// returned, never both.
func Generate(v models.Value, f format.Format, opts Options) ([]byte, error) {
	switch f {
	case format.JSON:
		return GenerateJSON(v, opts)
	case format.YAML:
		return GenerateYAML(v, opts)
	case format.XML:
		return GenerateXML(v, opts)
	default:
		return nil, &errors.UnsupportedFormatError{Name: f.String()}
	}
}

func invalidValue(f format.Format, path models.Path, reason string) error {
	return &errors.StructureError{
		Format: f.String(),
		Path:   path.String(),
		Reason: reason,
	}
}
