package generator

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/konvert/internal/format"
	"github.com/mcncl/konvert/internal/models"
)

// GenerateYAML writes v as a block-style YAML document. Strings that would read back
// as another type are quoted.
func GenerateYAML(v models.Value, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	node, err := yamlNode(v, models.RootPath)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(opts.YAMLIndent)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlNode(v models.Value, path models.Path) (*yaml.Node, error) {
	switch t := v.(type) {
	case models.Null:
		return scalarNode("!!null", "null"), nil
	case models.Bool:
		return scalarNode("!!bool", strconv.FormatBool(bool(t))), nil
	case models.Number:
		if _, ok := models.NewNumber(string(t)); !ok {
			return nil, invalidValue(format.YAML, path, fmt.Sprintf("invalid number literal %q", string(t)))
		}
		return scalarNode(yamlNumberTag(t), string(t)), nil
	case models.String:
		node := scalarNode("!!str", string(t))
		if yaml11Bools[string(t)] {
			node.Style = yaml.DoubleQuotedStyle
		}
		return node, nil
	case models.Sequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range t {
			child, err := yamlNode(item, path.Index(i))
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case *models.Mapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for key, child := range t.All() {
			valueNode, err := yamlNode(child, path.Key(key))
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalarNode("!!str", key), valueNode)
		}
		return node, nil
	default:
		return nil, invalidValue(format.YAML, path, fmt.Sprintf("unsupported value %T", v))
	}
}

// yaml11Bools are strings that YAML 1.1 readers take for booleans.
var yaml11Bools = map[string]bool{
	"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
	"n": true, "N": true, "no": true, "No": true, "NO": true,
	"on": true, "On": true, "ON": true,
	"off": true, "Off": true, "OFF": true,
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// yamlNumberTag tags integers that fit 64 bits as !!int. Larger integers are tagged
// !!float, which is how a YAML reader would resolve them anyway.
func yamlNumberTag(n models.Number) string {
	if !n.IsInteger() {
		return "!!float"
	}
	if _, err := n.Int64(); err == nil {
		return "!!int"
	}
	if _, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return "!!int"
	}
	return "!!float"
}
