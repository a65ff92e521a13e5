package tmpl

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/simonhull/zmkgen/internal/logger"
)

// Store holds parsed templates by name. It is built once and is read-only
// afterwards, so a single Store may be shared by any number of callers.
type Store struct {
	templates map[string]*Template
}

// NewStore builds a store from already parsed templates. Useful for in-memory
// fixtures.
func NewStore(templates ...*Template) (*Store, error) {
	s := &Store{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if t == nil {
			continue
		}
		if _, dup := s.templates[t.Name]; dup {
			return nil, fmt.Errorf("duplicate template %q", t.Name)
		}
		s.templates[t.Name] = t
	}
	return s, nil
}

// LoadFS parses every file of the given file systems into a store. Template
// names are slash paths relative to each file system root, without the Ext
// suffix. Layers are applied in order, so a later layer replaces same-named
// templates from an earlier one (a user template directory on top of the
// embedded defaults).
func LoadFS(layers ...fs.FS) (*Store, error) {
	s := &Store{templates: make(map[string]*Template)}

	for i, fsys := range layers {
		log := logger.Default().WithFields(logger.F("layer", i))
		err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if strings.HasPrefix(d.Name(), ".") && p != "." {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("reading template %s: %w", p, err)
			}

			t, err := Parse(TemplateName(p), string(data))
			if err != nil {
				return err
			}

			if _, exists := s.templates[t.Name]; exists {
				log.Debug("template overridden", logger.F("name", t.Name))
			}
			s.templates[t.Name] = t
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("loading templates: %w", err)
		}
	}

	logger.Debug("template store loaded", logger.F("templates", len(s.templates)))
	return s, nil
}

// Get returns the named template.
func (s *Store) Get(name string) (*Template, error) {
	t, ok := s.templates[TemplateName(name)]
	if !ok {
		return nil, &UnknownTemplateError{Name: name}
	}
	return t, nil
}

// Has reports whether the store contains the named template.
func (s *Store) Has(name string) bool {
	_, ok := s.templates[TemplateName(name)]
	return ok
}

// Names returns all template names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain returns the parent chain of the named template, starting with the
// template itself and ending with its base template.
func (s *Store) Chain(name string) ([]*Template, error) {
	t, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var chain []*Template
	var names []string
	for {
		if seen[t.Name] {
			return nil, &CyclicParentError{Chain: append(names, t.Name)}
		}
		seen[t.Name] = true
		chain = append(chain, t)
		names = append(names, t.Name)

		if !t.IsVariant() {
			return chain, nil
		}
		if t, err = s.parentOf(t); err != nil {
			return nil, err
		}
	}
}

// parentOf looks the inherit reference up relative to the child's directory
// first, then from the store root. A leading "/" forces a root lookup.
func (s *Store) parentOf(t *Template) (*Template, error) {
	ref := strings.TrimSuffix(t.Inherits, Ext)

	var candidates []string
	if strings.HasPrefix(ref, "/") {
		candidates = []string{path.Clean(strings.TrimPrefix(ref, "/"))}
	} else {
		candidates = []string{path.Join(path.Dir(t.Name), ref), path.Clean(ref)}
	}

	for _, c := range candidates {
		if parent, ok := s.templates[c]; ok {
			return parent, nil
		}
	}
	return nil, &UnknownParentError{Template: t.Name, Parent: t.Inherits}
}
