// Package mapx provides insertion-ordered map and set containers.
package mapx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"

	"gopkg.in/yaml.v3"
)

var (
	errNotJSONObject  = errors.New("ordered map: expected JSON object")
	errNotYAMLMapping = errors.New("ordered map: expected YAML mapping")
)

// OrderedMap is a string-keyed map that remembers insertion order.
// Re-setting an existing key replaces its value in place and keeps its
// original position. The zero value is ready to use.
type OrderedMap[V any] struct {
	values map[string]V
	keys   []string
}

// NewOrderedMap returns an empty map with room for size entries.
func NewOrderedMap[V any](size int) *OrderedMap[V] {
	return &OrderedMap[V]{
		values: make(map[string]V, size),
		keys:   make([]string, 0, size),
	}
}

// Set stores v under key.
func (m *OrderedMap[V]) Set(key string, v V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}

	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}

	m.values[key] = v
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	if m == nil {
		var zero V

		return zero, false
	}

	v, ok := m.values[key]

	return v, ok
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}

	return slices.Clone(m.keys)
}

// All iterates over the entries in insertion order.
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}

		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", k, err)
		}

		valueJSON, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode value for %q: %w", k, err)
		}

		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	*m = OrderedMap[V]{}

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode ordered map: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotJSONObject
	}

	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return fmt.Errorf("decode ordered map key: %w", keyErr)
		}

		key, ok := keyTok.(string)
		if !ok {
			return errNotJSONObject
		}

		var v V

		decodeErr := dec.Decode(&v)
		if decodeErr != nil {
			return fmt.Errorf("decode ordered map value %q: %w", key, decodeErr)
		}

		m.Set(key, v)
	}

	return nil
}

// MarshalYAML encodes the map as a YAML mapping in insertion order.
func (m OrderedMap[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, k := range m.keys {
		valueNode := &yaml.Node{}

		err := valueNode.Encode(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode value for %q: %w", k, err)
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			valueNode,
		)
	}

	return node, nil
}

// UnmarshalYAML decodes a YAML mapping, keeping the document's key order.
func (m *OrderedMap[V]) UnmarshalYAML(node *yaml.Node) error {
	*m = OrderedMap[V]{}

	if node.Kind != yaml.MappingNode {
		return errNotYAMLMapping
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		var v V

		err := node.Content[i+1].Decode(&v)
		if err != nil {
			return fmt.Errorf("decode ordered map value %q: %w", node.Content[i].Value, err)
		}

		m.Set(node.Content[i].Value, v)
	}

	return nil
}
