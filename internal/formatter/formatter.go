package formatter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// KeyStyle rewrites mapping keys before they are used as XML element names.
type KeyStyle string

const (
	KeyStylePreserve   KeyStyle = "preserve"
	KeyStyleSnake      KeyStyle = "snake"
	KeyStyleKebab      KeyStyle = "kebab"
	KeyStyleCamel      KeyStyle = "camel"
	KeyStyleLowerCamel KeyStyle = "lower_camel"
)

// KeyStyles lists the accepted styles.
var KeyStyles = []KeyStyle{KeyStylePreserve, KeyStyleSnake, KeyStyleKebab, KeyStyleCamel, KeyStyleLowerCamel}

// Valid reports whether s is a known style. The empty style means preserve.
func (s KeyStyle) Valid() bool {
	if s == "" {
		return true
	}
	for _, known := range KeyStyles {
		if s == known {
			return true
		}
	}
	return false
}

// Formatter turns mapping keys into XML element names
type Formatter struct {
	style    KeyStyle
	mappings map[string]string
}

// NewFormatter creates a Formatter for the given key style
func NewFormatter(style KeyStyle) *Formatter {
	return NewFormatterWithMappings(style, nil)
}

// NewFormatterWithMappings creates a Formatter that renames the keys in mappings
// verbatim and applies style to every other key.
func NewFormatterWithMappings(style KeyStyle, mappings map[string]string) *Formatter {
	if style == "" {
		style = KeyStylePreserve
	}
	return &Formatter{style: style, mappings: mappings}
}

// Style returns the key style in use.
func (f *Formatter) Style() KeyStyle {
	return f.style
}

// Apply rewrites key according to the mappings and style without validating the
// result.
func (f *Formatter) Apply(key string) string {
	// Check custom mappings first
	if mapped, ok := f.mappings[key]; ok {
		return mapped
	}

	switch f.style {
	case KeyStyleSnake:
		return strcase.ToSnake(key)
	case KeyStyleKebab:
		return strcase.ToKebab(key)
	case KeyStyleCamel:
		return strcase.ToCamel(key)
	case KeyStyleLowerCamel:
		return strcase.ToLowerCamel(key)
	default:
		return key
	}
}

// ElementName returns the element name for key, or an error describing why the key
// cannot name an element.
func (f *Formatter) ElementName(key string) (string, error) {
	name := f.Apply(key)
	if !IsValidXMLName(name) {
		if name != key {
			return "", fmt.Errorf("key %q (as %q) is not a valid XML element name", key, name)
		}
		return "", fmt.Errorf("key %q is not a valid XML element name", key)
	}
	return name, nil
}

// IsValidXMLName reports whether name can be used as an unprefixed element name
// (an XML 1.0 Name without colons).
func IsValidXMLName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !isNameStartChar(r) {
				return false
			}
			continue
		}
		if !isNameChar(r) {
			return false
		}
	}
	return true
}

func isNameStartChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	switch {
	case isNameStartChar(r), r == '-', r == '.', r == 0xB7:
		return true
	case unicode.IsDigit(r), unicode.In(r, unicode.Mn, unicode.Mc):
		return true
	}
	return false
}

// IsValidXMLText reports whether s only holds characters allowed in XML 1.0 text.
func IsValidXMLText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return !isXMLChar(r) }) < 0
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
