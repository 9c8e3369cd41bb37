package generator

import (
	"strings"
	"testing"

	"github.com/mcncl/konvert/internal/analyzer"
	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/formatter"
	"github.com/mcncl/konvert/internal/models"
	"github.com/mcncl/konvert/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapping builds a Mapping from alternating keys and values.
func mapping(kv ...any) *models.Mapping {
	m := models.NewMapping()
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1].(models.Value))
	}
	return m
}

func sampleUser() *models.Mapping {
	return mapping(
		"name", models.String("John Doe"),
		"age", models.Number("30"),
		"isStudent", models.Bool(false),
		"address", mapping(
			"city", models.String("Anytown"),
			"zip", models.Null{},
		),
	)
}

func TestGenerate_DispatchesOnFormat(t *testing.T) {
	for _, f := range format.All {
		t.Run(f.String(), func(t *testing.T) {
			out, err := Generate(mapping("a", models.String("b")), f, DefaultOptions())
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}

	_, err := Generate(models.Null{}, format.Unknown, DefaultOptions())
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}

func TestGenerateJSON_IndentedInInsertionOrder(t *testing.T) {
	out, err := GenerateJSON(sampleUser(), Options{})
	require.NoError(t, err)

	expected := `{
    "name": "John Doe",
    "age": 30,
    "isStudent": false,
    "address": {
        "city": "Anytown",
        "zip": null
    }
}
`
	assert.Equal(t, expected, string(out))
}

func TestGenerateJSON_Collections(t *testing.T) {
	v := mapping(
		"list", models.Sequence{models.Number("1"), models.Sequence{}, models.NewMapping()},
		"empty", models.NewMapping(),
	)
	out, err := GenerateJSON(v, Options{JSONIndent: 2})
	require.NoError(t, err)

	expected := `{
  "list": [
    1,
    [],
    {}
  ],
  "empty": {}
}
`
	assert.Equal(t, expected, string(out))
}

func TestGenerateJSON_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		value    models.Value
		expected string
	}{
		{"null", models.Null{}, "null\n"},
		{"bool", models.Bool(true), "true\n"},
		{"number keeps literal", models.Number("1.50"), "1.50\n"},
		{"big integer", models.Number("123456789012345678901234567890"), "123456789012345678901234567890\n"},
		{"string", models.String("hi"), "\"hi\"\n"},
		{"html not escaped", models.String("<a & b>"), "\"<a & b>\"\n"},
		{"control escaped", models.String("tab\there\nquote\""), "\"tab\\there\\nquote\\\"\"\n"},
		{"unicode kept", models.String("café ☕"), "\"café ☕\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GenerateJSON(tt.value, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestGenerateJSON_InvalidNumber(t *testing.T) {
	_, err := GenerateJSON(mapping("n", models.Number("NaN")), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStructure)

	var se *errors.StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "$.n", se.Path)
}

func TestGenerateYAML_BlockStyle(t *testing.T) {
	out, err := GenerateYAML(sampleUser(), Options{})
	require.NoError(t, err)

	expected := `name: John Doe
age: 30
isStudent: false
address:
  city: Anytown
  zip: null
`
	assert.Equal(t, expected, string(out))
}

func TestGenerateYAML_QuotesAmbiguousStrings(t *testing.T) {
	v := mapping(
		"truthy", models.String("true"),
		"numeric", models.String("42"),
		"nullish", models.String("null"),
	)
	out, err := GenerateYAML(v, Options{})
	require.NoError(t, err)

	back, err := parser.ParseYAML(out, parser.Options{})
	require.NoError(t, err)
	assert.True(t, models.Equal(v, back), "round trip changed types:\n%s", out)
}

func TestGenerateYAML_QuotesYAML11Booleans(t *testing.T) {
	out, err := GenerateYAML(mapping("a", models.String("yes"), "b", models.String("Off"), "c", models.String("maybe")), Options{})
	require.NoError(t, err)
	assert.Equal(t, "a: \"yes\"\nb: \"Off\"\nc: maybe\n", string(out))
}

func TestGenerateYAML_Sequences(t *testing.T) {
	v := mapping("tags", models.Sequence{models.String("go"), models.String("yaml")})
	out, err := GenerateYAML(v, Options{})
	require.NoError(t, err)
	assert.Equal(t, "tags:\n  - go\n  - yaml\n", string(out))
}

func TestGenerateYAML_NumbersRoundTrip(t *testing.T) {
	v := mapping(
		"int", models.Number("7"),
		"float", models.Number("2.5"),
		"big", models.Number("123456789012345678901234567890"),
	)
	out, err := GenerateYAML(v, Options{})
	require.NoError(t, err)

	back, err := parser.ParseYAML(out, parser.Options{})
	require.NoError(t, err)
	assert.True(t, models.Equal(v, back), "round trip changed numbers:\n%s", out)
}

func TestGenerateXML_Document(t *testing.T) {
	out, err := GenerateXML(sampleUser(), Options{})
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="UTF-8"?>
<root>
  <name>John Doe</name>
  <age>30</age>
  <isStudent>false</isStudent>
  <address>
    <city>Anytown</city>
    <zip/>
  </address>
</root>
`
	assert.Equal(t, expected, string(out))
}

func TestGenerateXML_Options(t *testing.T) {
	opts := Options{
		RootTag:   "user",
		NullText:  "None",
		KeyStyle:  formatter.KeyStyleSnake,
		XMLIndent: 4,
	}
	out, err := GenerateXML(mapping("firstName", models.String("Ann"), "middleName", models.Null{}), opts)
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="UTF-8"?>
<user>
    <first_name>Ann</first_name>
    <middle_name>None</middle_name>
</user>
`
	assert.Equal(t, expected, string(out))
}

func TestGenerateXML_EscapesText(t *testing.T) {
	out, err := GenerateXML(mapping("expr", models.String("a < b && c > d")), Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<expr>a &lt; b &amp;&amp; c &gt; d</expr>")

	back, err := parser.ParseXML(out, parser.Options{})
	require.NoError(t, err)
	assert.True(t, models.Equal(mapping("expr", models.String("a < b && c > d")), back))
}

func TestGenerateXML_ScalarRoot(t *testing.T) {
	out, err := GenerateXML(models.String("hello"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root>hello</root>\n", string(out))
}

func TestGenerateXML_SequencePolicies(t *testing.T) {
	v := mapping("item", models.Sequence{models.String("A"), models.String("B")})

	_, err := GenerateXML(v, Options{})
	require.Error(t, err)
	var se *errors.StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "$.item", se.Path)
	assert.Equal(t, "xml", se.Format)

	out, err := GenerateXML(v, Options{Sequences: analyzer.SequenceRepeat})
	require.NoError(t, err)
	assert.Contains(t, string(out), "  <item>A</item>\n  <item>B</item>\n")
}

func TestGenerateXML_EmptySequenceUnderRepeatFails(t *testing.T) {
	_, err := GenerateXML(mapping("name", models.String("x"), "tags", models.Sequence{}), Options{Sequences: analyzer.SequenceRepeat})
	require.Error(t, err)
	var se *errors.StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "$.tags", se.Path)
}

func TestGenerateXML_KeyStyleCollisionFails(t *testing.T) {
	v := mapping("userId", models.Number("1"), "user_id", models.Number("2"))

	_, err := GenerateXML(v, Options{KeyStyle: formatter.KeyStyleSnake})
	require.Error(t, err)
	var se *errors.StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "$.user_id", se.Path)
	assert.Contains(t, se.Reason, "<user_id>")

	_, err = GenerateXML(v, Options{})
	assert.NoError(t, err)
}

func TestGenerateXML_TopLevelSequenceAlwaysFails(t *testing.T) {
	for _, policy := range []analyzer.SequencePolicy{analyzer.SequenceError, analyzer.SequenceRepeat} {
		_, err := GenerateXML(models.Sequence{models.Number("1")}, Options{Sequences: policy})
		require.Error(t, err, policy)
		assert.ErrorIs(t, err, errors.ErrStructure)
	}
}

func TestGenerateXML_InvalidNames(t *testing.T) {
	_, err := GenerateXML(mapping("first name", models.String("x")), Options{})
	require.Error(t, err)
	var se *errors.StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, `$["first name"]`, se.Path)

	_, err = GenerateXML(mapping("a", models.String("x")), Options{RootTag: "1root"})
	assert.ErrorIs(t, err, errors.ErrStructure)
}

func TestGenerateXML_UnrepresentableText(t *testing.T) {
	_, err := GenerateXML(mapping("bell", models.String("ding\x07")), Options{})
	assert.ErrorIs(t, err, errors.ErrStructure)
}

func TestGenerateXML_CarriageReturnSurvives(t *testing.T) {
	v := mapping("text", models.String("line1\r\nline2"))
	out, err := GenerateXML(v, Options{})
	require.NoError(t, err)

	back, err := parser.ParseXML(out, parser.Options{})
	require.NoError(t, err)
	assert.True(t, models.Equal(v, back), "got %s", out)
}

func TestRoundTrip_JSONThroughXML(t *testing.T) {
	in := []byte(`{"a": 1, "b": {"c": true}}`)

	v, err := parser.ParseJSON(in, parser.Options{})
	require.NoError(t, err)
	xmlOut, err := GenerateXML(v, Options{})
	require.NoError(t, err)

	back, err := parser.ParseXML(xmlOut, parser.Options{})
	require.NoError(t, err)
	jsonOut, err := GenerateJSON(back, Options{})
	require.NoError(t, err)

	// XML leaves come back as strings
	assert.Equal(t, "{\n    \"a\": \"1\",\n    \"b\": {\n        \"c\": \"true\"\n    }\n}\n", string(jsonOut))
}

func TestRoundTrip_JSONThroughYAMLIsLossless(t *testing.T) {
	in := `{"name": "x", "n": [1, 2.50, -3e2], "deep": {"ok": true, "none": null, "s": "123"}}`

	v, err := parser.ParseJSON([]byte(in), parser.Options{})
	require.NoError(t, err)
	yamlOut, err := GenerateYAML(v, Options{})
	require.NoError(t, err)
	back, err := parser.ParseYAML(yamlOut, parser.Options{})
	require.NoError(t, err)

	assert.True(t, models.Equal(v, back), "yaml:\n%s", yamlOut)
	assert.False(t, strings.Contains(string(yamlOut), "{"), "expected block style:\n%s", yamlOut)
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{NullText: "nil"}.withDefaults()
	assert.Equal(t, 4, o.JSONIndent)
	assert.Equal(t, 2, o.YAMLIndent)
	assert.Equal(t, 2, o.XMLIndent)
	assert.Equal(t, DefaultRootTag, o.RootTag)
	assert.Equal(t, "nil", o.NullText)
	assert.Equal(t, analyzer.SequenceError, o.Sequences)
	assert.Equal(t, formatter.KeyStylePreserve, o.KeyStyle)
}
