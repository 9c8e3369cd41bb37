// Package converter drives conversions between JSON, YAML and XML documents.
//
// A conversion decodes the source document into a models.Value tree, checks the tree
// against the target format and encodes it. Either the complete output or an error
// is returned, never both:
//
//	c, err := converter.New(converter.WithSequencePolicy(analyzer.SequenceRepeat))
//	if err != nil {
//		return err
//	}
//	out, err := c.Convert(data, format.YAML, format.XML)
//
// A Converter holds no mutable state and is safe for concurrent use.
package converter

import (
	"time"

	"github.com/mcncl/konvert/internal/analyzer"
	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/formatter"
	"github.com/mcncl/konvert/internal/generator"
	"github.com/mcncl/konvert/internal/models"
	"github.com/mcncl/konvert/internal/parser"
)

// Converter converts documents between formats.
type Converter struct {
	logger    Logger
	decode    parser.Options
	encode    generator.Options
	analyzer  *analyzer.Analyzer
	batchJobs int
}

// New creates a Converter. Invalid options are reported as errors wrapping
// errors.ErrInvalidConfig.
func New(opts ...Option) (*Converter, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Converter{
		logger: cfg.logger,
		decode: cfg.decode,
		encode: cfg.encode,
		analyzer: analyzer.NewAnalyzerWithOptions(
			cfg.encode.Sequences,
			formatter.NewFormatterWithMappings(cfg.encode.KeyStyle, cfg.encode.KeyMappings),
		),
		batchJobs: cfg.batchJobs,
	}, nil
}

// Convert converts data with the default options.
func Convert(data []byte, from, to format.Format) ([]byte, error) {
	c, err := New()
	if err != nil {
		return nil, err
	}
	return c.Convert(data, from, to)
}

// Convert decodes data as from and encodes the result as to. Decoding failures are
// *errors.ParseError values; values the target cannot represent are
// *errors.StructureError values. The source is never modified.
func (c *Converter) Convert(data []byte, from, to format.Format) ([]byte, error) {
	if from == format.Unknown {
		return nil, &errors.UnsupportedFormatError{Name: from.String()}
	}
	if to == format.Unknown {
		return nil, &errors.UnsupportedFormatError{Name: to.String()}
	}

	start := time.Now()
	log := c.logger.With("from", from, "to", to)

	v, err := c.Decode(data, from)
	if err != nil {
		log.Debug("decode failed", "error", err)
		return nil, err
	}
	log.Debug("decoded document", append([]any{"bytes", len(data)}, c.analyzer.Analyze(v).LogAttrs()...)...)

	out, err := c.Encode(v, to)
	if err != nil {
		log.Debug("encode failed", "error", err)
		return nil, err
	}

	log.Debug("converted document", "bytes", len(out), "elapsed", time.Since(start))
	return out, nil
}

// Decode parses data written in format f.
func (c *Converter) Decode(data []byte, f format.Format) (models.Value, error) {
	return parser.Parse(data, f, c.decode)
}

// Encode writes v in format f. XML output is preceded by a full structural check, so
// a tree XML cannot represent fails before any element is built.
func (c *Converter) Encode(v models.Value, f format.Format) ([]byte, error) {
	return generator.Generate(v, f, c.encode)
}
