package analyzer

import (
	"fmt"

	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/formatter"
	"github.com/mcncl/konvert/internal/models"
)

// SequencePolicy decides how Sequences are written to XML, which has no array type.
type SequencePolicy string

const (
	// SequenceError rejects any Sequence with a StructureError naming its path.
	SequenceError SequencePolicy = "error"
	// SequenceRepeat writes one element per item, repeating the parent key.
	SequenceRepeat SequencePolicy = "repeat"
)

// Valid reports whether p is a known policy.
func (p SequencePolicy) Valid() bool {
	return p == SequenceError || p == SequenceRepeat
}

// Stats summarizes the shape of a value tree.
type Stats struct {
	// Nodes is the number of values in the tree, the root included
	Nodes int
	// MaxDepth is the deepest nesting level; a scalar root has depth 0
	MaxDepth int
	// Counts holds the number of values per kind
	Counts map[models.Kind]int
}

// LogAttrs flattens the stats into key-value pairs for structured logging.
func (s Stats) LogAttrs() []any {
	return []any{
		"nodes", s.Nodes,
		"depth", s.MaxDepth,
		"mappings", s.Counts[models.KindMapping],
		"sequences", s.Counts[models.KindSequence],
		"scalars", s.Nodes - s.Counts[models.KindMapping] - s.Counts[models.KindSequence],
	}
}

// Analyzer inspects value trees before they are encoded
type Analyzer struct {
	sequences SequencePolicy
	names     *formatter.Formatter
}

// NewAnalyzer creates an Analyzer with the default XML rules: sequences are errors and
// keys are used as element names unchanged.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithOptions(SequenceError, formatter.NewFormatter(formatter.KeyStylePreserve))
}

// NewAnalyzerWithOptions creates an Analyzer with custom XML rules.
func NewAnalyzerWithOptions(sequences SequencePolicy, names *formatter.Formatter) *Analyzer {
	if sequences == "" {
		sequences = SequenceError
	}
	if names == nil {
		names = formatter.NewFormatter(formatter.KeyStylePreserve)
	}
	return &Analyzer{sequences: sequences, names: names}
}

// Analyze walks v and collects Stats.
func (a *Analyzer) Analyze(v models.Value) Stats {
	stats := Stats{Counts: make(map[models.Kind]int)}
	a.count(v, 0, &stats)
	return stats
}

func (a *Analyzer) count(v models.Value, depth int, stats *Stats) {
	if v == nil {
		return
	}
	stats.Nodes++
	stats.Counts[v.Kind()]++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}
	switch t := v.(type) {
	case models.Sequence:
		for _, item := range t {
			a.count(item, depth+1, stats)
		}
	case *models.Mapping:
		for _, child := range t.All() {
			a.count(child, depth+1, stats)
		}
	}
}

// CheckXML reports the first part of v that cannot be written as XML, as a
// *errors.StructureError. A nil result means the XML encoder will succeed.
func (a *Analyzer) CheckXML(v models.Value) error {
	switch t := v.(type) {
	case models.Sequence:
		return structureError(models.RootPath, "a top-level sequence has no element name in XML")
	case *models.Mapping:
		return a.checkMapping(t, models.RootPath)
	default:
		return a.checkScalar(v, models.RootPath)
	}
}

// checkMapping also rejects sibling keys that map to the same element name.
func (a *Analyzer) checkMapping(m *models.Mapping, path models.Path) error {
	names := make(map[string]string, m.Len())
	for key, child := range m.All() {
		childPath := path.Key(key)
		name, err := a.names.ElementName(key)
		if err != nil {
			return structureError(childPath, err.Error())
		}
		if other, taken := names[name]; taken {
			return structureError(childPath, fmt.Sprintf("keys %q and %q both become element <%s> under key style %q", other, key, name, a.names.Style()))
		}
		names[name] = key
		if err := a.checkChild(child, childPath); err != nil {
			return err
		}
	}
	return nil
}

// checkChild validates the value of a mapping entry, which becomes one element or,
// for a Sequence under the repeat policy, one element per item.
func (a *Analyzer) checkChild(v models.Value, path models.Path) error {
	seq, ok := v.(models.Sequence)
	if !ok {
		return a.checkElement(v, path)
	}
	if a.sequences != SequenceRepeat {
		return structureError(path, fmt.Sprintf("sequences cannot be represented in XML (sequence policy %q)", a.sequences))
	}
	if len(seq) == 0 {
		return structureError(path, "an empty sequence writes no elements, so its key would be lost")
	}
	for i, item := range seq {
		itemPath := path.Index(i)
		if _, nested := item.(models.Sequence); nested {
			return structureError(itemPath, "nested sequences cannot be represented in XML")
		}
		if err := a.checkElement(item, itemPath); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkElement(v models.Value, path models.Path) error {
	if m, ok := v.(*models.Mapping); ok {
		return a.checkMapping(m, path)
	}
	return a.checkScalar(v, path)
}

func (a *Analyzer) checkScalar(v models.Value, path models.Path) error {
	switch t := v.(type) {
	case models.String:
		if !formatter.IsValidXMLText(string(t)) {
			return structureError(path, "text contains characters that XML 1.0 cannot represent")
		}
	case models.Number:
		if _, ok := models.NewNumber(string(t)); !ok {
			return structureError(path, fmt.Sprintf("invalid number literal %q", string(t)))
		}
	case nil:
		return structureError(path, "missing value")
	}
	return nil
}

func structureError(path models.Path, reason string) error {
	return &errors.StructureError{
		Format: format.XML.String(),
		Path:   path.String(),
		Reason: reason,
	}
}
