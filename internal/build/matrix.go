// Package build reads and edits build.yaml, the matrix of firmware builds
// GitHub Actions (and the build command) run for a config repo.
package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simonhull/zmkgen/internal/exec"
	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/schema"
	"github.com/simonhull/zmkgen/internal/yamlnode"
)

// Item is one entry of the build matrix.
type Item struct {
	Board        string `yaml:"board"`
	Shield       string `yaml:"shield,omitempty"`
	Snippet      string `yaml:"snippet,omitempty"`
	CMakeArgs    string `yaml:"cmake-args,omitempty"`
	ArtifactName string `yaml:"artifact-name,omitempty"`
}

func (i Item) String() string {
	if i.Shield == "" {
		return i.Board
	}
	return i.Shield + ", " + i.Board
}

// BuildOptions converts the item into west build options.
func (i Item) BuildOptions(configDir string, pristine bool) exec.BuildOptions {
	return exec.BuildOptions{
		Board:        i.Board,
		Shield:       i.Shield,
		Snippet:      i.Snippet,
		CMakeArgs:    i.CMakeArgs,
		ArtifactName: i.ArtifactName,
		ConfigDir:    configDir,
		Pristine:     pristine,
	}
}

func (i Item) node() *yaml.Node {
	n := yamlnode.Mapping()
	for _, kv := range [][2]string{
		{"board", i.Board},
		{"shield", i.Shield},
		{"snippet", i.Snippet},
		{"cmake-args", i.CMakeArgs},
		{"artifact-name", i.ArtifactName},
	} {
		if kv[1] != "" {
			yamlnode.Set(n, kv[0], yamlnode.Scalar(kv[1]))
		}
	}
	return n
}

// Matrix is an editable build.yaml. Comments and entries it does not touch
// are written back unchanged.
type Matrix struct {
	path string
	doc  *yaml.Node
}

// Load reads the matrix at path. A missing file is an empty matrix.
func Load(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read build matrix: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.path = path
	return m, nil
}

// Parse parses build matrix content.
func Parse(data []byte) (*Matrix, error) {
	doc, err := yamlnode.Parse(data)
	if err != nil {
		return nil, err
	}
	return &Matrix{doc: doc}, nil
}

// Path returns the file the matrix was loaded from.
func (m *Matrix) Path() string {
	return m.path
}

// Validate checks the matrix against the build matrix schema.
func (m *Matrix) Validate() error {
	return schema.Validate(schema.BuildMatrix, m.doc)
}

func (m *Matrix) includeNode() *yaml.Node {
	n := yamlnode.Lookup(yamlnode.Root(m.doc), "include")
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n
}

// Include returns the build items in file order.
func (m *Matrix) Include() ([]Item, error) {
	n := m.includeNode()
	if n == nil {
		return nil, nil
	}
	var items []Item
	if err := n.Decode(&items); err != nil {
		return nil, fmt.Errorf("invalid build matrix: %w", err)
	}
	return items, nil
}

// HasItem reports whether the matrix contains item.
func (m *Matrix) HasItem(item Item) (bool, error) {
	items, err := m.Include()
	if err != nil {
		return false, err
	}
	for _, i := range items {
		if i == item {
			return true, nil
		}
	}
	return false, nil
}

// Append adds the items the matrix does not already contain, creating the
// include list if needed. It reports whether anything was added.
func (m *Matrix) Append(items ...Item) (bool, error) {
	existing, err := m.Include()
	if err != nil {
		return false, err
	}
	have := make(map[Item]bool, len(existing))
	for _, i := range existing {
		have[i] = true
	}

	var added []Item
	for _, i := range items {
		if !have[i] {
			have[i] = true
			added = append(added, i)
		}
	}
	if len(added) == 0 {
		return false, nil
	}

	seq := yamlnode.Ensure(yamlnode.Root(m.doc), "include", yamlnode.Sequence)
	for _, i := range added {
		seq.Content = append(seq.Content, i.node())
	}
	return true, nil
}

// Remove deletes every entry equal to one of items and reports whether
// anything was removed.
func (m *Matrix) Remove(items ...Item) (bool, error) {
	remove := make(map[Item]bool, len(items))
	for _, i := range items {
		remove[i] = true
	}
	return m.RemoveFunc(func(i Item) bool { return remove[i] })
}

// RemoveFunc deletes every entry for which match returns true.
func (m *Matrix) RemoveFunc(match func(Item) bool) (bool, error) {
	seq := m.includeNode()
	if seq == nil {
		return false, nil
	}

	kept := make([]*yaml.Node, 0, len(seq.Content))
	for _, n := range seq.Content {
		var item Item
		if err := n.Decode(&item); err != nil {
			return false, fmt.Errorf("invalid build matrix entry on line %d: %w", n.Line, err)
		}
		if !match(item) {
			kept = append(kept, n)
		}
	}
	removed := len(kept) != len(seq.Content)
	seq.Content = kept
	return removed, nil
}

// Bytes renders the matrix.
func (m *Matrix) Bytes() ([]byte, error) {
	return yamlnode.Encode(m.doc)
}

// Write saves the matrix, creating the file if necessary.
func (m *Matrix) Write() error {
	if m.path == "" {
		return errors.New("build matrix has no path")
	}
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	if _, err := generator.Write(m.path, data, generator.Overwrite); err != nil {
		return fmt.Errorf("failed to write build matrix: %w", err)
	}
	return nil
}

// Columns reports which optional fields any item uses, so tables can leave
// out empty columns.
type Columns struct {
	Snippet      bool
	ArtifactName bool
	CMakeArgs    bool
}

// UsedColumns returns the optional columns present in items.
func UsedColumns(items []Item) Columns {
	var c Columns
	for _, i := range items {
		c.Snippet = c.Snippet || i.Snippet != ""
		c.ArtifactName = c.ArtifactName || i.ArtifactName != ""
		c.CMakeArgs = c.CMakeArgs || i.CMakeArgs != ""
	}
	return c
}

// Table returns headers and rows describing items.
func Table(items []Item) ([]string, [][]string) {
	cols := UsedColumns(items)
	headers := []string{"Board", "Shield"}
	if cols.Snippet {
		headers = append(headers, "Snippet")
	}
	if cols.ArtifactName {
		headers = append(headers, "Artifact Name")
	}
	if cols.CMakeArgs {
		headers = append(headers, "CMake Args")
	}

	rows := make([][]string, 0, len(items))
	for _, i := range items {
		row := []string{i.Board, i.Shield}
		if cols.Snippet {
			row = append(row, i.Snippet)
		}
		if cols.ArtifactName {
			row = append(row, i.ArtifactName)
		}
		if cols.CMakeArgs {
			row = append(row, strings.TrimSpace(i.CMakeArgs))
		}
		rows = append(rows, row)
	}
	return headers, rows
}
