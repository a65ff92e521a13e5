// Package yamlnode edits YAML documents through the yaml.v3 node API so
// comments, key order and untouched values survive a round trip.
package yamlnode

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Indent is the indentation used when encoding documents.
const Indent = 2

// Parse decodes data into a document node. Empty input yields a document
// holding an empty mapping.
func Parse(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{Mapping()}}
	}
	return &doc, nil
}

// Encode renders a document.
func Encode(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Root returns the top-level node of a document. A document whose content
// is null is given an empty mapping.
func Root(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode {
		return doc
	}
	if len(doc.Content) == 0 || isNull(doc.Content[0]) {
		doc.Content = []*yaml.Node{Mapping()}
	}
	return doc.Content[0]
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// Mapping returns an empty block mapping node.
func Mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// Sequence returns an empty block sequence node.
func Sequence() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

// Scalar returns a string scalar node.
func Scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// Lookup returns the value stored under key in a mapping, or nil.
func Lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// Set stores value under key, replacing an existing value in place or
// appending the pair.
func Set(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, Scalar(key), value)
}

// Delete removes key from a mapping and reports whether it was present.
func Delete(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return true
		}
	}
	return false
}

// Ensure returns the value under key, creating it with create when missing
// or null.
func Ensure(m *yaml.Node, key string, create func() *yaml.Node) *yaml.Node {
	if v := Lookup(m, key); v != nil && !isNull(v) {
		return v
	}
	v := create()
	Set(m, key, v)
	return v
}

// Lines maps dotted field paths to the line they appear on, e.g.
// "siblings[1]" or "features".
func Lines(doc *yaml.Node) map[string]int {
	lines := make(map[string]int)
	collectLines(doc, "", lines)
	return lines
}

func collectLines(node *yaml.Node, path string, lines map[string]int) {
	if node == nil {
		return
	}
	if path != "" {
		lines[path] = node.Line
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) > 0 {
			collectLines(node.Content[0], path, lines)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			next := key
			if path != "" {
				next = path + "." + key
			}
			collectLines(node.Content[i+1], next, lines)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			collectLines(item, fmt.Sprintf("%s[%d]", path, i), lines)
		}
	}
}
