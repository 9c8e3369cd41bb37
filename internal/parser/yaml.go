package parser

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/konvert/internal/errors"
	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/models"
)

// Tags a document may carry. Everything else, including local tags such as !foo and
// language tags such as !!python/object, is rejected before any value is built.
var allowedYAMLTags = map[string]bool{
	"!!null":      true,
	"!!bool":      true,
	"!!int":       true,
	"!!float":     true,
	"!!str":       true,
	"!!map":       true,
	"!!seq":       true,
	"!!timestamp": true,
	"!!binary":    true,
	"!!merge":     true,
}

var yamlLineRegex = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// ParseYAML decodes the first document of a YAML stream using only the core schema.
// Aliases are expanded and merge keys applied; an empty stream decodes to Null.
func ParseYAML(data []byte, opts Options) (models.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, yamlSyntaxError(err)
	}
	if doc.Kind == 0 {
		return models.Null{}, nil
	}

	w := &yamlWalker{budget: newBudget(opts), limit: opts.maxNodes()}
	return w.node(&doc)
}

func yamlSyntaxError(err error) error {
	pe := &errors.ParseError{
		Format: format.YAML.String(),
		Detail: "YAML syntax error",
		Cause:  err,
	}
	if m := yamlLineRegex.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
		pe.Detail = m[2]
		pe.Cause = nil
	}
	return pe
}

type yamlWalker struct {
	budget *budget
	limit  int
}

func (w *yamlWalker) node(n *yaml.Node) (models.Value, error) {
	if !w.budget.spend() {
		return nil, nodeLimitError(format.YAML, w.limit)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return models.Null{}, nil
		}
		return w.node(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, w.fail(n, "alias without anchor")
		}
		return w.node(n.Alias)
	}

	tag := n.ShortTag()
	if !allowedYAMLTags[tag] {
		return nil, &errors.ParseError{
			Format: format.YAML.String(),
			Line:   n.Line,
			Column: n.Column,
			Detail: fmt.Sprintf("tag %q is not allowed", tag),
			Cause:  errors.ErrDisallowedTag,
		}
	}

	switch n.Kind {
	case yaml.MappingNode:
		return w.mapping(n)
	case yaml.SequenceNode:
		seq := make(models.Sequence, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := w.node(item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.ScalarNode:
		return w.scalar(n, tag)
	default:
		return nil, w.fail(n, fmt.Sprintf("unknown node kind %d", n.Kind))
	}
}

func (w *yamlWalker) mapping(n *yaml.Node) (models.Value, error) {
	if len(n.Content)%2 != 0 {
		return nil, w.fail(n, "mapping has a key without a value")
	}

	m := models.NewMapping()
	for i := 0; i < len(n.Content); i += 2 {
		keyNode, valueNode := resolveAlias(n.Content[i]), n.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			if err := w.merge(m, valueNode); err != nil {
				return nil, err
			}
			continue
		}

		key, err := w.key(keyNode)
		if err != nil {
			return nil, err
		}
		v, err := w.node(valueNode)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

// merge applies a << entry: keys already present win over merged ones, and earlier
// mappings in a merge list win over later ones.
func (w *yamlWalker) merge(m *models.Mapping, n *yaml.Node) error {
	n = resolveAlias(n)

	var sources []*yaml.Node
	switch n.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{n}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			sources = append(sources, resolveAlias(item))
		}
	default:
		return w.fail(n, "merge value must be a mapping or a list of mappings")
	}

	for _, src := range sources {
		if src.Kind != yaml.MappingNode {
			return w.fail(src, "merge list items must be mappings")
		}
		merged, err := w.node(src)
		if err != nil {
			return err
		}
		for k, v := range merged.(*models.Mapping).All() {
			if !m.Has(k) {
				m.Set(k, v)
			}
		}
	}
	return nil
}

// key renders a scalar mapping key as the string a JSON document would use.
func (w *yamlWalker) key(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", w.fail(n, "mapping keys must be scalars")
	}
	v, err := w.node(n)
	if err != nil {
		return "", err
	}
	switch k := v.(type) {
	case models.String:
		return string(k), nil
	case models.Number:
		return string(k), nil
	case models.Bool:
		return strconv.FormatBool(bool(k)), nil
	case models.Null:
		return "null", nil
	default:
		return "", w.fail(n, "mapping keys must be scalars")
	}
}

func (w *yamlWalker) scalar(n *yaml.Node, tag string) (models.Value, error) {
	switch tag {
	case "!!null":
		return models.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, w.failCause(n, "invalid boolean", err)
		}
		return models.Bool(b), nil
	case "!!int":
		if num, ok := models.NewNumber(n.Value); ok {
			return num, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, w.failCause(n, "invalid integer", err)
		}
		switch i := v.(type) {
		case int:
			return models.NumberFromInt(int64(i)), nil
		case int64:
			return models.NumberFromInt(i), nil
		case uint64:
			return models.NumberFromUint(i), nil
		case float64:
			return w.float(n, i)
		}
		return nil, w.fail(n, fmt.Sprintf("invalid integer %q", n.Value))
	case "!!float":
		// a literal that is already a JSON number is kept verbatim, so 2.0 stays 2.0
		// and integers too large for 64 bits keep every digit
		if num, ok := models.NewNumber(n.Value); ok {
			return num, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, w.failCause(n, "invalid float", err)
		}
		return w.float(n, f)
	default:
		// !!str, !!timestamp, !!binary and a bare "<<" outside key position keep
		// their literal text.
		return models.String(n.Value), nil
	}
}

// float turns a decoded float into a Number; .inf and .nan have no JSON number form
// and are kept as their literal text.
func (w *yamlWalker) float(n *yaml.Node, f float64) (models.Value, error) {
	if num, ok := models.NumberFromFloat(f); ok {
		return num, nil
	}
	return models.String(n.Value), nil
}

func (w *yamlWalker) fail(n *yaml.Node, detail string) error {
	return w.failCause(n, detail, nil)
}

func (w *yamlWalker) failCause(n *yaml.Node, detail string, cause error) error {
	return &errors.ParseError{
		Format: format.YAML.String(),
		Line:   n.Line,
		Column: n.Column,
		Detail: detail,
		Cause:  cause,
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
