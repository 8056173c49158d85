package value

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reoring/deepwatch/keypath"
)

// ParseYAML decodes the first YAML document in data with tags enabled.
// Mapping order is preserved; aliases are resolved to shared values so an
// anchor referenced twice decodes to one container.
func ParseYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, errors.New("empty YAML document")
	}
	b := yamlBuilder{anchors: make(map[*yaml.Node]any)}
	return b.node(&doc)
}

type yamlBuilder struct {
	anchors map[*yaml.Node]any
}

func (b *yamlBuilder) node(n *yaml.Node) (any, error) {
	if v, ok := b.anchors[n]; ok {
		return v, nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return b.node(n.Content[0])
	case yaml.AliasNode:
		return b.node(n.Alias)
	case yaml.MappingNode:
		o := NewObject()
		if n.Anchor != "" {
			b.anchors[n] = o
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			v, err := b.node(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			o.SetOwn(keypath.K(k.Value), v)
		}
		v, err := Untag(o)
		if err == nil && n.Anchor != "" {
			b.anchors[n] = v
		}
		return v, err
	case yaml.SequenceNode:
		a := NewArray()
		if n.Anchor != "" {
			b.anchors[n] = a
		}
		for _, c := range n.Content {
			v, err := b.node(c)
			if err != nil {
				return nil, err
			}
			a.Push(v)
		}
		return a, nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func scalar(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case time.Time:
		return NewDate(t), nil
	}
	return v, nil
}
