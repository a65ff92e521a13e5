package generator

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/simonhull/zmkgen/internal/logger"
	"github.com/simonhull/zmkgen/internal/tmpl"
)

// Generator renders templates from a store and writes them out.
type Generator struct {
	store *tmpl.Store
}

// New returns a generator over store. The store is only read, so several
// generators may share one.
func New(store *tmpl.Store) *Generator {
	return &Generator{store: store}
}

// Store returns the template store.
func (g *Generator) Store() *tmpl.Store {
	return g.store
}

// Render resolves the named template and renders it with vars. The text is
// returned to the caller; nothing is written.
func (g *Generator) Render(name string, vars tmpl.Context) (string, error) {
	resolved, err := g.store.Resolve(name)
	if err != nil {
		return "", err
	}
	out, err := tmpl.Render(resolved, vars)
	if err != nil {
		return "", err
	}
	logger.Debug("template rendered", logger.F("template", name), logger.F("bytes", len(out)))
	return out, nil
}

// Missing returns the placeholders of the named template that vars and the
// template defaults leave without a value.
func (g *Generator) Missing(name string, vars tmpl.Context) ([]string, error) {
	resolved, err := g.store.Resolve(name)
	if err != nil {
		return nil, err
	}
	return resolved.Missing(vars), nil
}

// File is one output of a generation. Path is relative to the generation
// root and may contain placeholders, e.g. "boards/shields/${id}/${id}.keymap".
// A Literal path is used as written.
type File struct {
	Template string
	Path     string
	Mode     fs.FileMode
	Literal  bool
}

// Plan renders every file and returns the write operations for them. No
// file is touched.
func (g *Generator) Plan(root string, files []File, vars tmpl.Context, policy Policy) ([]Operation, error) {
	ops := make([]Operation, 0, len(files))
	for _, f := range files {
		rel := f.Path
		if !f.Literal {
			var err error
			rel, err = tmpl.RenderString("path of "+f.Template, f.Path, vars)
			if err != nil {
				return nil, fmt.Errorf("destination for %s: %w", f.Template, err)
			}
		}

		content, err := g.Render(f.Template, vars)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", f.Template, err)
		}

		ops = append(ops, &WriteFileOp{
			Path:    filepath.Join(root, filepath.FromSlash(rel)),
			Content: []byte(content),
			Mode:    f.Mode,
			Policy:  policy,
		})
	}
	return ops, nil
}

// Generate plans files and executes the resulting operations.
func (g *Generator) Generate(ctx context.Context, root string, files []File, vars tmpl.Context, policy Policy, opts ExecuteOptions) ([]Result, error) {
	ops, err := g.Plan(root, files, vars, policy)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, ops, opts)
}
