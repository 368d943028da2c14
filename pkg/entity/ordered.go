package entity

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Pair is one keyed member of an ordered export
type Pair struct {
	Key   string
	Value map[string]interface{}
}

// Ordered is a collection export that encodes its members in insertion
// order as a JSON object or YAML mapping
type Ordered []Pair

// Map returns the export as a plain map, dropping the order
func (o Ordered) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(o))
	for _, p := range o {
		out[p.Key] = p.Value
	}
	return out
}

// MarshalJSON writes the members as one object in order
func (o Ordered) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML builds a mapping node with the members in order
func (o Ordered) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range o {
		value := &yaml.Node{}
		if err := value.Encode(p.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key}, value)
	}
	return node, nil
}
