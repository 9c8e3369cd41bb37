package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI runs the command line in-process from dir, so no config file above the test
// directory is picked up.
func runCLI(t *testing.T, dir string, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_ConvertIsDefaultCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "user.json", `{"name": "John", "age": 30, "active": true}`)
	out := filepath.Join(dir, "user.yaml")

	code, _, stderr := runCLI(t, dir, in, out)
	require.Equal(t, 0, code, stderr)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "name: John\nage: 30\nactive: true\n", string(got))
}

func TestRun_ExplicitConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "user.yml", "name: John\n")
	out := filepath.Join(dir, "user.xml")

	code, _, stderr := runCLI(t, dir, "convert", in, out)
	require.Equal(t, 0, code, stderr)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root>\n  <name>John</name>\n</root>\n", string(got))
}

func TestRun_FormatFlagsOverrideExtensions(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "data.txt", `{"a": 1}`)
	out := filepath.Join(dir, "data.out")

	code, _, stderr := runCLI(t, dir, in, out, "--from", "json", "--to", "yml")
	require.Equal(t, 0, code, stderr)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(got))
}

func TestRun_UnknownFormatFlag(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "data.json", `{"a": 1}`)
	out := filepath.Join(dir, "data.yaml")

	code, _, stderr := runCLI(t, dir, in, out, "--from", "csv")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unsupported format "csv"`)
	assert.NoFileExists(t, out)
}

func TestRun_GlobalXMLFlags(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "data.json", `{"tags": ["a", "b"], "firstName": null}`)
	out := filepath.Join(dir, "data.xml")

	code, _, stderr := runCLI(t, dir,
		"--sequence-policy", "repeat",
		"--root-tag", "doc",
		"--null-text", "None",
		"--key-style", "snake",
		"--indent", "4",
		in, out,
	)
	require.Equal(t, 0, code, stderr)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	expected := `<?xml version="1.0" encoding="UTF-8"?>
<doc>
    <tags>a</tags>
    <tags>b</tags>
    <first_name>None</first_name>
</doc>
`
	assert.Equal(t, expected, string(got))
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".konvert.yml", "json:\n  indent: 2\n")
	in := writeFile(t, dir, "a.yaml", "a:\n  b: true\n")
	out := filepath.Join(dir, "a.json")

	code, _, stderr := runCLI(t, dir, in, out)
	require.Equal(t, 0, code, stderr)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": {\n    \"b\": true\n  }\n}\n", string(got))
}

func TestRun_ExplicitConfigAndDebug(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "custom.yml", "xml:\n  root_tag: custom\n")
	in := writeFile(t, dir, "a.json", `{"x": "y"}`)
	out := filepath.Join(dir, "a.xml")

	code, _, stderr := runCLI(t, dir, "--config", cfg, "--debug", in, out)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "loaded config file")
	assert.Contains(t, stderr, "decoded document")

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), "<custom>")
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bad.yml", "xml:\n  key_style: SHOUTING\n")
	in := writeFile(t, dir, "a.json", `{}`)

	code, _, stderr := runCLI(t, dir, "--config", cfg, in, filepath.Join(dir, "a.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Configuration error:")
	assert.NoFileExists(t, filepath.Join(dir, "a.yaml"))
}

func TestRun_ParseErrorExitsOneWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "bad.json", `{"a": [1, 2}`)
	out := filepath.Join(dir, "bad.yaml")

	code, stdout, stderr := runCLI(t, dir, in, out)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "json parse error in "+in)
	assert.NoFileExists(t, out)
}

func TestRun_StructureErrorNamesSourceAndPath(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "list.json", `{"items": [1, 2]}`)
	out := filepath.Join(dir, "list.xml")

	code, _, stderr := runCLI(t, dir, in, out)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "xml structure error in "+in+" at $.items")
	assert.NoFileExists(t, out)
}

func TestRun_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "notes.txt", "hello")

	code, _, stderr := runCLI(t, dir, in, filepath.Join(dir, "notes.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unsupported format ".txt"`)
	assert.NoFileExists(t, filepath.Join(dir, "notes.json"))
}

func TestRun_MissingArguments(t *testing.T) {
	code, _, stderr := runCLI(t, t.TempDir(), "only-input.json")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Input error:")
}

func TestRun_UnknownFlag(t *testing.T) {
	code, _, stderr := runCLI(t, t.TempDir(), "--no-such-flag")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "konvert: error:")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, t.TempDir(), "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "konvert version "+Version+"\n", stdout)
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	a := writeFile(t, dir, "a.json", `{"n": 1}`)
	b := writeFile(t, dir, "b.xml", "<root><n>2</n></root>")

	code, _, stderr := runCLI(t, dir, "batch", "--to", "yaml", "--out-dir", outDir, "--jobs", "2", a, b)
	require.Equal(t, 0, code, stderr)

	got, err := os.ReadFile(filepath.Join(outDir, "a.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "n: 1\n", string(got))

	got, err = os.ReadFile(filepath.Join(outDir, "b.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "n: \"2\"\n", string(got))
}

func TestRun_BatchReportsEveryFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "ok: true\n")
	bad1 := writeFile(t, dir, "bad1.json", `{`)
	bad2 := writeFile(t, dir, "bad2.xml", "<a><b></a>")

	code, _, stderr := runCLI(t, dir, "batch", "--to", "json", good, bad1, bad2)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, bad1)
	assert.Contains(t, stderr, bad2)
	assert.Contains(t, stderr, "2 of 3 files failed to convert")
	assert.FileExists(t, filepath.Join(dir, "good.json"))
}

func TestRun_BatchUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "a.json", `{}`)

	code, _, stderr := runCLI(t, dir, "batch", "--to", "toml", in)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unsupported format "toml"`)
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := runCLI(t, t.TempDir(), "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage: konvert")
	assert.Contains(t, stdout, "batch")
}

func TestRun_NoArguments(t *testing.T) {
	code, _, stderr := runCLI(t, t.TempDir())
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "konvert: error:")
}
