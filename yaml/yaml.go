// Package yaml provides a YAML codec implementation.
package yaml

import (
	"github.com/zoobzio/shroud"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements shroud.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() shroud.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML. Masked trees are rendered through yaml.Node so
// field order is kept and redacted values are tagged as strings.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	switch v.(type) {
	case *shroud.Document, []any:
		node, err := toNode(v)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(node)
	default:
		return yaml.Marshal(v)
	}
}

// Unmarshal decodes YAML data into v.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func toNode(v any) (*yaml.Node, error) {
	switch node := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *shroud.Document:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range node.Entries() {
			val, err := toNode(e.Value)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				val,
			)
		}
		return out, nil
	case []any:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, elem := range node {
			val, err := toNode(elem)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, val)
		}
		return out, nil
	case shroud.Number:
		tag := "!!float"
		if node.IsInteger() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(node)}, nil
	case shroud.Redacted:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(node), Style: yaml.DoubleQuotedStyle}, nil
	default:
		out := &yaml.Node{}
		if err := out.Encode(node); err != nil {
			return nil, err
		}
		return out, nil
	}
}
