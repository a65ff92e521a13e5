package tmpl

import (
	"path"
	"strings"
)

// Ext is the optional file extension of template files. It is not part of a
// template's name.
const Ext = ".mako"

// NodeKind identifies what a Node holds.
type NodeKind int

const (
	TextNode NodeKind = iota
	VarNode
	BlockNode
)

func (k NodeKind) String() string {
	switch k {
	case TextNode:
		return "text"
	case VarNode:
		return "var"
	case BlockNode:
		return "block"
	default:
		return "unknown"
	}
}

// Node is one element of a parsed template.
type Node struct {
	Kind    NodeKind
	Text    string   // literal text (TextNode)
	Name    string   // placeholder name (VarNode) or block name (BlockNode)
	Filters []string // filters applied to a placeholder, in order
	Body    []Node   // default body (BlockNode)
	Source  string   // template the node was parsed from
	Line    int
}

// Template is a parsed template file.
type Template struct {
	Name string

	// Inherits is the raw file attribute of the <%inherit> tag. Empty for
	// base templates.
	Inherits string

	Nodes    []Node
	Defaults map[string]string
}

// IsVariant reports whether the template extends another template.
func (t *Template) IsVariant() bool {
	return t.Inherits != ""
}

// Blocks returns the names of every block declared in the template at any
// depth, in document order.
func (t *Template) Blocks() []string {
	var names []string
	walkBlocks(t.Nodes, func(n *Node) {
		names = append(names, n.Name)
	})
	return names
}

// overrides returns the top-level blocks of a variant keyed by name.
func (t *Template) overrides() map[string][]Node {
	out := make(map[string][]Node)
	for _, n := range t.Nodes {
		if n.Kind == BlockNode {
			out[n.Name] = n.Body
		}
	}
	return out
}

// trailing returns the part of a variant outside its block overrides. It is
// appended after the parent's output. Whitespace-only content yields nil.
func (t *Template) trailing() []Node {
	var nodes []Node
	significant := false
	for _, n := range t.Nodes {
		switch n.Kind {
		case BlockNode:
			continue
		case VarNode:
			significant = true
		case TextNode:
			if strings.TrimSpace(n.Text) != "" {
				significant = true
			}
		}
		nodes = append(nodes, n)
	}
	if !significant {
		return nil
	}

	if nodes[0].Kind == TextNode {
		nodes[0].Text = strings.TrimLeft(nodes[0].Text, "\r\n")
	}
	return nodes
}

func walkBlocks(nodes []Node, fn func(n *Node)) {
	for i := range nodes {
		if nodes[i].Kind != BlockNode {
			continue
		}
		fn(&nodes[i])
		walkBlocks(nodes[i].Body, fn)
	}
}

// TemplateName converts a store-relative file path into a template name.
func TemplateName(p string) string {
	return strings.TrimSuffix(path.Clean(p), Ext)
}
