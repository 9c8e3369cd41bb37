package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/models"
)

// ParseJSON decodes a single JSON document. Object key order is kept and a repeated
// key keeps its last value.
func ParseJSON(data []byte, opts Options) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, emptyInputError(format.JSON)
	}

	p := &jsonParser{
		data:   data,
		budget: newBudget(opts),
		limit:  opts.maxNodes(),
	}
	p.dec = json.NewDecoder(bytes.NewReader(data))
	p.dec.UseNumber() // Ensure numbers are read as json.Number

	tok, err := p.dec.Token()
	if err != nil {
		return nil, p.wrap(err)
	}
	root, err := p.value(tok)
	if err != nil {
		return nil, err
	}

	// Anything but EOF after the first value is either a second document or garbage.
	if _, err := p.dec.Token(); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return nil, p.wrap(err)
		}
		return nil, p.fail("invalid trailing data after first JSON value", errors.ErrTrailingData)
	}

	return root, nil
}

type jsonParser struct {
	data   []byte
	dec    *json.Decoder
	budget *budget
	limit  int
}

func (p *jsonParser) value(tok json.Token) (models.Value, error) {
	if !p.budget.spend() {
		return nil, nodeLimitError(format.JSON, p.limit)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.object()
		case '[':
			return p.array()
		}
		return nil, p.fail(fmt.Sprintf("unexpected delimiter %q", rune(t)), nil)
	case string:
		return models.String(t), nil
	case json.Number:
		return models.Number(t), nil
	case bool:
		return models.Bool(t), nil
	case nil:
		return models.Null{}, nil
	default:
		return nil, p.fail(fmt.Sprintf("unexpected token %v", t), nil)
	}
}

func (p *jsonParser) object() (models.Value, error) {
	m := models.NewMapping()
	for p.dec.More() {
		keyTok, err := p.dec.Token()
		if err != nil {
			return nil, p.wrap(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, p.fail(fmt.Sprintf("object key must be a string, got %v", keyTok), nil)
		}
		valTok, err := p.dec.Token()
		if err != nil {
			return nil, p.wrap(err)
		}
		v, err := p.value(valTok)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	if err := p.closing(); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *jsonParser) array() (models.Value, error) {
	seq := models.Sequence{}
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.wrap(err)
		}
		v, err := p.value(tok)
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
	if err := p.closing(); err != nil {
		return nil, err
	}
	return seq, nil
}

// closing consumes the '}' or ']' that ends the current container.
func (p *jsonParser) closing() error {
	if _, err := p.dec.Token(); err != nil {
		return p.wrap(err)
	}
	return nil
}

// wrap converts a decoder error into a ParseError. Token reports syntax errors at the
// offending byte, so the offset is used as-is.
func (p *jsonParser) wrap(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return p.failAt(syntaxError.Offset, "JSON syntax error", syntaxError)
	}
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return p.failAt(int64(len(p.data)), "unexpected end of JSON input", nil)
	}
	return p.fail("failed to decode JSON", err)
}

func (p *jsonParser) fail(detail string, cause error) error {
	return p.failAt(p.dec.InputOffset(), detail, cause)
}

func (p *jsonParser) failAt(offset int64, detail string, cause error) error {
	pe := &errors.ParseError{
		Format: format.JSON.String(),
		Offset: offset,
		Detail: detail,
		Cause:  cause,
	}
	pe.Line, pe.Column = position(p.data, offset)
	return pe
}
