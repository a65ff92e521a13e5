package tmpl

import "sort"

// Resolved is a template with every block replaced by its effective body. It
// holds only text and placeholder nodes and is ready for Render.
type Resolved struct {
	Name     string
	Nodes    []Node
	Defaults map[string]string
}

// Variables returns the distinct placeholder names referenced by the resolved
// template, sorted.
func (r *Resolved) Variables() []string {
	seen := make(map[string]bool)
	var names []string
	for _, n := range r.Nodes {
		if n.Kind == VarNode && !seen[n.Name] {
			seen[n.Name] = true
			names = append(names, n.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Missing returns the placeholders that neither ctx nor the template defaults
// provide a value for.
func (r *Resolved) Missing(ctx Context) []string {
	var missing []string
	for _, name := range r.Variables() {
		if _, ok := ctx[name]; ok {
			continue
		}
		if _, ok := r.Defaults[name]; ok {
			continue
		}
		missing = append(missing, name)
	}
	return missing
}

// Resolve computes the effective template for name.
//
// The base template at the end of the parent chain provides the structure.
// Each block takes the body of the nearest variant overriding it, or its
// own default body. Overrides are resolved recursively, so blocks declared
// inside an override body can be overridden too; within an override of block
// B taken from chain level i, a nested block named B only sees levels past i.
// Trailing bodies of the variants are appended base-most first.
func (s *Store) Resolve(name string) (*Resolved, error) {
	chain, err := s.Chain(name)
	if err != nil {
		return nil, err
	}

	base := chain[len(chain)-1]
	variants := chain[:len(chain)-1]

	declared := make(map[string]bool)
	for i := len(chain) - 1; i >= 0; i-- {
		t := chain[i]
		if t != base {
			for _, n := range t.Nodes {
				if n.Kind == BlockNode && !declared[n.Name] {
					return nil, &UnknownBlockError{Template: t.Name, Block: n.Name}
				}
			}
		}
		walkBlocks(t.Nodes, func(n *Node) {
			declared[n.Name] = true
		})
	}

	r := &resolver{
		overrides: make([]map[string][]Node, len(variants)),
		floor:     make(map[string]int),
	}
	for i, v := range variants {
		r.overrides[i] = v.overrides()
	}

	nodes := r.expand(base.Nodes, nil)
	for i := len(variants) - 1; i >= 0; i-- {
		nodes = append(nodes, variants[i].trailing()...)
	}

	defaults := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Defaults {
			defaults[k] = v
		}
	}

	return &Resolved{
		Name:     chain[0].Name,
		Nodes:    mergeText(nodes),
		Defaults: defaults,
	}, nil
}

type resolver struct {
	overrides []map[string][]Node // index 0 is the requested variant
	floor     map[string]int      // first chain level a block name may be taken from
}

func (r *resolver) expand(nodes []Node, out []Node) []Node {
	for _, n := range nodes {
		if n.Kind != BlockNode {
			out = append(out, n)
			continue
		}

		level, body, ok := r.lookup(n.Name)
		if !ok {
			out = r.expand(n.Body, out)
			continue
		}

		prev, had := r.floor[n.Name]
		r.floor[n.Name] = level + 1
		out = r.expand(body, out)
		if had {
			r.floor[n.Name] = prev
		} else {
			delete(r.floor, n.Name)
		}
	}
	return out
}

func (r *resolver) lookup(name string) (int, []Node, bool) {
	for i := r.floor[name]; i < len(r.overrides); i++ {
		if body, ok := r.overrides[i][name]; ok {
			return i, body, true
		}
	}
	return 0, nil, false
}

// mergeText joins adjacent text nodes and drops empty ones.
func mergeText(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == TextNode {
			if n.Text == "" {
				continue
			}
			if last := len(out) - 1; last >= 0 && out[last].Kind == TextNode {
				out[last].Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}
