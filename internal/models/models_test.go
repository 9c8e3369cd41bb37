package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(m *Mapping) []string {
	var ks []string
	for k := range m.All() {
		ks = append(ks, k)
	}
	return ks
}

func TestMapping_SetOverwritesExistingKey(t *testing.T) {
	m := NewMapping()
	m.Set("item", String("A"))
	m.Set("other", Bool(true))
	m.Set("item", String("B"))

	assert.Equal(t, 2, m.Len())
	v, ok := m.Get("item")
	require.True(t, ok)
	assert.Equal(t, String("B"), v)
	assert.Equal(t, []string{"other", "item"}, keys(m))
}

func TestMapping_ZeroValueIsUsable(t *testing.T) {
	var m Mapping
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("a"))

	m.Set("a", Null{})
	assert.True(t, m.Has("a"))
	assert.Equal(t, []string{"a"}, keys(m))
}

func TestMapping_NilIsEmpty(t *testing.T) {
	var m *Mapping
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get("x")
	assert.False(t, ok)
	assert.Empty(t, keys(m))
}

func TestNumber(t *testing.T) {
	tests := []struct {
		literal string
		valid   bool
		integer bool
	}{
		{"0", true, true},
		{"-12", true, true},
		{"3.14", true, false},
		{"1e10", true, false},
		{"-0.5E-3", true, false},
		{"01", false, false},
		{"+1", false, false},
		{".5", false, false},
		{"1.", false, false},
		{"0x1F", false, false},
		{"NaN", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			n, ok := NewNumber(tt.literal)
			assert.Equal(t, tt.valid, ok)
			if ok {
				assert.Equal(t, tt.integer, n.IsInteger())
			}
		})
	}
}

func TestNumberFromFloat_KeepsFloatness(t *testing.T) {
	n, ok := NumberFromFloat(1)
	require.True(t, ok)
	assert.Equal(t, Number("1.0"), n)
	assert.False(t, n.IsInteger())

	n, ok = NumberFromFloat(2.5)
	require.True(t, ok)
	assert.Equal(t, Number("2.5"), n)

	_, ok = NumberFromFloat(1 / zero())
	assert.False(t, ok)
}

func zero() float64 { return 0 }

func TestNumber_Conversions(t *testing.T) {
	i, err := NumberFromInt(-42).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(-42), i)

	assert.Equal(t, Number("18446744073709551615"), NumberFromUint(^uint64(0)))
}

func TestEqual(t *testing.T) {
	a := NewMapping()
	a.Set("x", Number("1"))
	a.Set("y", Sequence{String("a"), Null{}})

	b := NewMapping()
	b.Set("y", Sequence{String("a"), Null{}})
	b.Set("x", Number("1"))

	assert.True(t, Equal(a, b), "mapping order must not matter")

	b.Set("x", Number("1.0"))
	assert.False(t, Equal(a, b))

	assert.False(t, Equal(String("1"), Number("1")))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(Null{}, nil))
	assert.False(t, Equal(Sequence{Bool(true)}, Sequence{Bool(true), Bool(false)}))
}

func TestPath(t *testing.T) {
	p := RootPath.Key("servers").Index(2).Key("name")
	assert.Equal(t, "$.servers[2].name", p.String())

	assert.Equal(t, `$["first name"]`, RootPath.Key("first name").String())
	assert.Equal(t, `$["1st"]`, RootPath.Key("1st").String())
	assert.Equal(t, `$[""]`, RootPath.Key("").String())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "mapping", NewMapping().Kind().String())
	assert.Equal(t, "sequence", Sequence{}.Kind().String())
	assert.Equal(t, "unknown", Kind(99).String())
}
