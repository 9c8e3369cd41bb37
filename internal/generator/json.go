package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/models"
)

// GenerateJSON writes v as indented JSON. Keys keep their insertion order and HTML
// characters are not escaped.
func GenerateJSON(v models.Value, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	w := &jsonWriter{indent: strings.Repeat(" ", opts.JSONIndent)}
	w.enc = json.NewEncoder(&w.scratch)
	w.enc.SetEscapeHTML(false)

	if err := w.value(v, models.RootPath, 0); err != nil {
		return nil, err
	}
	w.buf.WriteByte('\n')
	return w.buf.Bytes(), nil
}

type jsonWriter struct {
	buf     bytes.Buffer
	scratch bytes.Buffer
	enc     *json.Encoder
	indent  string
}

func (w *jsonWriter) value(v models.Value, path models.Path, depth int) error {
	switch t := v.(type) {
	case models.Null:
		w.buf.WriteString("null")
	case models.Bool:
		w.buf.WriteString(strconv.FormatBool(bool(t)))
	case models.Number:
		if _, ok := models.NewNumber(string(t)); !ok {
			return invalidValue(format.JSON, path, fmt.Sprintf("invalid number literal %q", string(t)))
		}
		w.buf.WriteString(string(t))
	case models.String:
		return w.string(string(t))
	case models.Sequence:
		if len(t) == 0 {
			w.buf.WriteString("[]")
			return nil
		}
		w.buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(depth + 1)
			if err := w.value(item, path.Index(i), depth+1); err != nil {
				return err
			}
		}
		w.newline(depth)
		w.buf.WriteByte(']')
	case *models.Mapping:
		if t.Len() == 0 {
			w.buf.WriteString("{}")
			return nil
		}
		w.buf.WriteByte('{')
		first := true
		for key, child := range t.All() {
			if !first {
				w.buf.WriteByte(',')
			}
			first = false
			w.newline(depth + 1)
			if err := w.string(key); err != nil {
				return err
			}
			w.buf.WriteString(": ")
			if err := w.value(child, path.Key(key), depth+1); err != nil {
				return err
			}
		}
		w.newline(depth)
		w.buf.WriteByte('}')
	default:
		return invalidValue(format.JSON, path, fmt.Sprintf("unsupported value %T", v))
	}
	return nil
}

func (w *jsonWriter) string(s string) error {
	w.scratch.Reset()
	if err := w.enc.Encode(s); err != nil {
		return err
	}
	w.buf.Write(bytes.TrimSuffix(w.scratch.Bytes(), []byte("\n")))
	return nil
}

func (w *jsonWriter) newline(depth int) {
	w.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		w.buf.WriteString(w.indent)
	}
}
