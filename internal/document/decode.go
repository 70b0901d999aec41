package document

import (
	"fmt"

	"go.yaml.in/yaml/v4"
)

const mergeKey = "<<"

// Decode parses YAML or JSON bytes into an ordered document tree.
func Decode(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	value, err := FromYAML(&root)
	if err != nil {
		return nil, err
	}

	m, ok := value.(*Map)
	if !ok {
		return nil, fmt.Errorf("document root must be a mapping, got %T", value)
	}

	return New(m), nil
}

// maxAliasValues caps the values produced by expanding aliases. Nested
// aliases grow exponentially in the size of the input.
const maxAliasValues = 100_000

// FromYAML converts a YAML node into plain values: *Map for mappings,
// []any for sequences and decoded scalars (string, int, float64, bool, nil).
func FromYAML(node *yaml.Node) (any, error) {
	var d decoder
	return d.value(node)
}

type decoder struct {
	aliasDepth  int
	aliasValues int
}

func (d *decoder) value(node *yaml.Node) (any, error) {
	if node == nil {
		return nil, nil
	}

	if d.aliasDepth > 0 {
		d.aliasValues++
		if d.aliasValues > maxAliasValues {
			return nil, fmt.Errorf("line %d: %w", node.Line, ErrExcessiveAliasing)
		}
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return d.value(node.Content[0])
	case yaml.AliasNode:
		d.aliasDepth++
		defer func() { d.aliasDepth-- }()
		return d.value(node.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := d.value(child)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return d.mapping(node)
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: decoding scalar: %w", node.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", node.Line, node.Kind)
	}
}

func (d *decoder) mapping(node *yaml.Node) (*Map, error) {
	out := NewMap()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == mergeKey {
			if err := d.merge(out, valueNode); err != nil {
				return nil, err
			}
			continue
		}

		v, err := d.value(valueNode)
		if err != nil {
			return nil, err
		}
		out.Set(keyNode.Value, v)
	}
	return out, nil
}

// merge applies a YAML merge key; explicit keys already set win.
func (d *decoder) merge(out *Map, node *yaml.Node) error {
	sources := []*yaml.Node{node}
	if node.Kind == yaml.SequenceNode {
		sources = node.Content
	}

	for _, src := range sources {
		v, err := d.value(src)
		if err != nil {
			return err
		}
		m, ok := v.(*Map)
		if !ok {
			return fmt.Errorf("line %d: merge value must be a mapping", src.Line)
		}
		for k, val := range m.All() {
			if !out.Has(k) {
				out.Set(k, val)
			}
		}
	}
	return nil
}

// toYAMLNode builds an ordered mapping node for m.
func toYAMLNode(m *Map) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range m.All() {
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			valueNode,
		)
	}
	return node, nil
}
