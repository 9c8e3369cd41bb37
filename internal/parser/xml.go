package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	stderrors "errors"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/models"
)

// ParseXML decodes an XML document. The root element itself is dropped: the result is
// the Mapping of its children, or its text when it has no child elements.
//
// Leaf elements become Strings (never numbers or booleans). Attributes, comments,
// processing instructions and namespace prefixes are discarded. Repeated sibling tags
// follow Options.Duplicates.
func ParseXML(data []byte, opts Options) (models.Value, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, xmlSyntaxError(err)
	}

	var root *etree.Element
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if root != nil {
				return nil, xmlError(fmt.Sprintf("multiple root elements <%s> and <%s>", root.Tag, t.Tag), nil)
			}
			root = t
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return nil, xmlError("text outside the root element", nil)
			}
		}
	}
	if root == nil {
		return nil, emptyInputError(format.XML)
	}

	collect := opts.Duplicates == DuplicateCollect
	d := &xmlDecoder{budget: newBudget(opts), limit: opts.maxNodes(), collect: collect}
	return d.element(root)
}

type xmlDecoder struct {
	budget  *budget
	limit   int
	collect bool
}

func (d *xmlDecoder) element(e *etree.Element) (models.Value, error) {
	if !d.budget.spend() {
		return nil, nodeLimitError(format.XML, d.limit)
	}

	children := e.ChildElements()
	if len(children) == 0 {
		return models.String(leafText(e)), nil
	}

	// Group by tag first so a key sits at its first occurrence whichever value wins.
	var order []string
	groups := make(map[string][]models.Value, len(children))
	for _, child := range children {
		v, err := d.element(child)
		if err != nil {
			return nil, err
		}
		if _, seen := groups[child.Tag]; !seen {
			order = append(order, child.Tag)
		}
		groups[child.Tag] = append(groups[child.Tag], v)
	}

	m := models.NewMapping()
	for _, tag := range order {
		values := groups[tag]
		if d.collect && len(values) > 1 {
			m.Set(tag, models.Sequence(values))
			continue
		}
		m.Set(tag, values[len(values)-1])
	}
	return m, nil
}

// leafText joins all character data of an element, CDATA included.
func leafText(e *etree.Element) string {
	var b strings.Builder
	for _, tok := range e.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}

// charsetReader decodes documents declaring a non UTF-8 encoding.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func xmlSyntaxError(err error) error {
	var syntaxError *xml.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return &errors.ParseError{
			Format: format.XML.String(),
			Line:   syntaxError.Line,
			Detail: syntaxError.Msg,
		}
	}
	return xmlError("XML syntax error", err)
}

func xmlError(detail string, cause error) error {
	return &errors.ParseError{
		Format: format.XML.String(),
		Detail: detail,
		Cause:  cause,
	}
}
