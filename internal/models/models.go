// Package models defines the generic document Value that every codec decodes into
// and encodes from.
package models

import (
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a node of a decoded document. The concrete types are Null, Bool, Number,
// String, Sequence and *Mapping.
type Value interface {
	Kind() Kind
}

// Null is the absent value.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Number is a finite decimal number kept as its literal text so that integers and
// floating-point numbers survive a JSON/YAML round trip unchanged.
type Number string

// String is a text scalar.
type String string

// Sequence is an ordered list of values.
type Sequence []Value

func (Null) Kind() Kind     { return KindNull }
func (Bool) Kind() Kind     { return KindBool }
func (Number) Kind() Kind   { return KindNumber }
func (String) Kind() Kind   { return KindString }
func (Sequence) Kind() Kind { return KindSequence }

// NewNumber validates a numeric literal and returns it as a Number. The literal must
// be a JSON number; anything else (hex, leading '+', NaN, Inf) is rejected.
func NewNumber(literal string) (Number, bool) {
	if !isJSONNumber(literal) {
		return "", false
	}
	return Number(literal), true
}

// NumberFromInt returns the Number for an integer.
func NumberFromInt(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// NumberFromUint returns the Number for an unsigned integer.
func NumberFromUint(u uint64) Number {
	return Number(strconv.FormatUint(u, 10))
}

// NumberFromFloat returns the Number for a finite float. The literal always carries a
// fraction or exponent so it is never mistaken for an integer.
func NumberFromFloat(f float64) (Number, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", false
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return Number(s), true
}

// IsInteger reports whether the literal has neither a fraction nor an exponent.
func (n Number) IsInteger() bool {
	return !strings.ContainsAny(string(n), ".eE")
}

// Int64 parses the literal as an integer.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// isJSONNumber follows the number grammar of RFC 8259.
func isJSONNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	switch {
	case s[i] == '0':
		i++
	case s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Mapping is a string-keyed map that remembers insertion order. Keys are unique:
// setting an existing key replaces its value and moves the key to the end.
type Mapping struct {
	entries *sequencedmap.Map[string, Value]
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{entries: sequencedmap.New[string, Value]()}
}

func (m *Mapping) Kind() Kind { return KindMapping }

// Set stores v under key, replacing any earlier value.
func (m *Mapping) Set(key string, v Value) {
	if m.entries == nil {
		m.entries = sequencedmap.New[string, Value]()
	}
	// sequencedmap appends on every Set, so drop the old entry first
	if m.entries.Has(key) {
		m.entries.Delete(key)
	}
	m.entries.Set(key, v)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	return m.entries.Get(key)
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	if m == nil {
		return false
	}
	return m.entries.Has(key)
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return m.entries.Len()
}

// All iterates over the entries in order.
func (m *Mapping) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for k, v := range m.entries.All() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Equal reports whether a and b hold the same document. Mapping order is ignored and
// numbers are compared by literal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case Sequence:
		bv := b.(Sequence)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		bv := b.(*Mapping)
		if av.Len() != bv.Len() {
			return false
		}
		for k, v := range av.All() {
			other, ok := bv.Get(k)
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	}
	return false
}
