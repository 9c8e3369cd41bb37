// Package parser decodes JSON, YAML and XML documents into models.Value trees.
package parser

import (
	"bytes"
	"fmt"

	"github.com/mcncl/konvert/internal/errors" // Custom errors package
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/models"
)

// DefaultMaxNodes bounds how many values a single document may expand to.
const DefaultMaxNodes = 1_000_000

// DuplicatePolicy decides how repeated sibling XML elements are decoded.
type DuplicatePolicy string

const (
	// DuplicateOverwrite keeps the last sibling's value under the shared tag.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	// DuplicateCollect gathers all siblings sharing a tag into a Sequence.
	DuplicateCollect DuplicatePolicy = "collect"
)

// Valid reports whether p is a known policy.
func (p DuplicatePolicy) Valid() bool {
	return p == DuplicateOverwrite || p == DuplicateCollect
}

// Options tune decoding. The zero value is usable.
type Options struct {
	// Duplicates applies to XML input; empty means DuplicateOverwrite.
	Duplicates DuplicatePolicy
	// MaxNodes limits the decoded tree size; 0 means DefaultMaxNodes.
	MaxNodes int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Duplicates: DuplicateOverwrite,
		MaxNodes:   DefaultMaxNodes,
	}
}

func (o Options) maxNodes() int {
	if o.MaxNodes <= 0 {
		return DefaultMaxNodes
	}
	return o.MaxNodes
}

// Parse decodes data written in the given format.
func Parse(data []byte, f format.Format, opts Options) (models.Value, error) {
	switch f {
	case format.JSON:
		return ParseJSON(data, opts)
	case format.YAML:
		return ParseYAML(data, opts)
	case format.XML:
		return ParseXML(data, opts)
	default:
		return nil, &errors.UnsupportedFormatError{Name: f.String()}
	}
}

// budget counts decoded values against Options.MaxNodes.
type budget struct {
	remaining int
}

func newBudget(opts Options) *budget {
	return &budget{remaining: opts.maxNodes()}
}

func (b *budget) spend() bool {
	b.remaining--
	return b.remaining >= 0
}

func nodeLimitError(f format.Format, limit int) error {
	return &errors.ParseError{
		Format: f.String(),
		Detail: fmt.Sprintf("document expands to more than %d values", limit),
		Cause:  errors.ErrNodeLimit,
	}
}

func emptyInputError(f format.Format) error {
	return &errors.ParseError{
		Format: f.String(),
		Detail: "no document found",
		Cause:  errors.ErrEmptyInput,
	}
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, column int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 0 {
		offset = 0
	}
	head := data[:offset]
	line = bytes.Count(head, []byte("\n")) + 1
	column = len(head) - bytes.LastIndexByte(head, '\n')
	return line, column
}
