package generator

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/mcncl/konvert/internal/analyzer"
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/formatter"
	"github.com/mcncl/konvert/internal/models"
)

// GenerateXML writes v as an XML document wrapped in a single root element. The tree
// is checked in full before anything is built, so an unrepresentable value never
// yields partial output.
func GenerateXML(v models.Value, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	names := opts.formatter()

	if !formatter.IsValidXMLName(opts.RootTag) {
		return nil, invalidValue(format.XML, models.RootPath, fmt.Sprintf("root tag %q is not a valid XML element name", opts.RootTag))
	}
	if !formatter.IsValidXMLText(opts.NullText) {
		return nil, invalidValue(format.XML, models.RootPath, "null text contains characters that XML 1.0 cannot represent")
	}
	if err := analyzer.NewAnalyzerWithOptions(opts.Sequences, names).CheckXML(v); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	// canonical text escapes carriage returns, which a reader would otherwise fold into
	// newlines
	doc.WriteSettings.CanonicalText = true

	w := &xmlWriter{names: names, nullText: opts.NullText}
	root := doc.CreateElement(opts.RootTag)
	if err := w.fill(root, v, models.RootPath); err != nil {
		return nil, err
	}

	indent := etree.NewIndentSettings()
	indent.Spaces = opts.XMLIndent
	indent.PreserveLeafWhitespace = true
	doc.IndentWithSettings(indent)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	return out, nil
}

type xmlWriter struct {
	names    *formatter.Formatter
	nullText string
}

// fill writes v as the content of el.
func (w *xmlWriter) fill(el *etree.Element, v models.Value, path models.Path) error {
	switch t := v.(type) {
	case *models.Mapping:
		for key, child := range t.All() {
			name, err := w.names.ElementName(key)
			if err != nil {
				return invalidValue(format.XML, path.Key(key), err.Error())
			}
			if seq, ok := child.(models.Sequence); ok {
				for i, item := range seq {
					if err := w.fill(el.CreateElement(name), item, path.Key(key).Index(i)); err != nil {
						return err
					}
				}
				continue
			}
			if err := w.fill(el.CreateElement(name), child, path.Key(key)); err != nil {
				return err
			}
		}
		return nil
	case models.Null:
		el.SetText(w.nullText)
	case models.Bool:
		el.SetText(strconv.FormatBool(bool(t)))
	case models.Number:
		el.SetText(string(t))
	case models.String:
		el.SetText(string(t))
	default:
		return invalidValue(format.XML, path, fmt.Sprintf("unsupported value %T", v))
	}
	return nil
}
