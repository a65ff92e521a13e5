package repo

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/yamlnode"
)

// DefaultModuleRevision is used for modules added without a revision.
const DefaultModuleRevision = "main"

// ErrProtectedProject is returned when removing the ZMK project itself.
var ErrProtectedProject = errors.New(`the "zmk" project cannot be removed`)

// Remote is a west remote: a URL prefix that projects are fetched from.
type Remote struct {
	Name    string `yaml:"name"`
	URLBase string `yaml:"url-base"`
}

// Project is a repository west fetches.
type Project struct {
	Name     string `yaml:"name"`
	Remote   string `yaml:"remote,omitempty"`
	URL      string `yaml:"url,omitempty"`
	Revision string `yaml:"revision,omitempty"`
	Path     string `yaml:"path,omitempty"`
}

// RevisionKind classifies a project revision.
type RevisionKind int

const (
	RevisionDefault RevisionKind = iota // inherits the manifest default
	RevisionVersion                     // release tag such as v0.2 or v0.2.1
	RevisionCommit                      // commit hash
	RevisionBranch                      // anything else, usually a branch
)

func (k RevisionKind) String() string {
	switch k {
	case RevisionDefault:
		return "default"
	case RevisionVersion:
		return "version"
	case RevisionCommit:
		return "commit"
	default:
		return "branch"
	}
}

var commitRe = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// ClassifyRevision tells release tags, commits and branches apart.
func ClassifyRevision(rev string) RevisionKind {
	switch {
	case rev == "":
		return RevisionDefault
	case semver.IsValid(rev):
		return RevisionVersion
	case commitRe.MatchString(rev):
		return RevisionCommit
	default:
		return RevisionBranch
	}
}

// CompareVersions orders two release tags like semver.Compare. Revisions
// that are not versions sort before all versions.
func CompareVersions(a, b string) int {
	return semver.Compare(a, b)
}

// Manifest is an editable config/west.yml.
type Manifest struct {
	path string
	doc  *yaml.Node
}

// LoadManifest reads a west manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read west manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.path = path
	return m, nil
}

// ParseManifest parses west manifest content.
func ParseManifest(data []byte) (*Manifest, error) {
	doc, err := yamlnode.Parse(data)
	if err != nil {
		return nil, err
	}
	manifest := yamlnode.Lookup(yamlnode.Root(doc), "manifest")
	if manifest == nil || manifest.Kind != yaml.MappingNode {
		return nil, errors.New(`west manifest has no "manifest" section`)
	}
	return &Manifest{doc: doc}, nil
}

// Path returns the file the manifest was loaded from.
func (m *Manifest) Path() string {
	return m.path
}

func (m *Manifest) section() *yaml.Node {
	return yamlnode.Lookup(yamlnode.Root(m.doc), "manifest")
}

// DefaultRevision returns manifest.defaults.revision.
func (m *Manifest) DefaultRevision() string {
	if rev := yamlnode.Lookup(yamlnode.Lookup(m.section(), "defaults"), "revision"); rev != nil {
		return rev.Value
	}
	return ""
}

// Remotes returns the declared remotes in file order.
func (m *Manifest) Remotes() ([]Remote, error) {
	var remotes []Remote
	if n := yamlnode.Lookup(m.section(), "remotes"); n != nil {
		if err := n.Decode(&remotes); err != nil {
			return nil, fmt.Errorf("invalid remotes: %w", err)
		}
	}
	return remotes, nil
}

// Projects returns the declared projects in file order.
func (m *Manifest) Projects() ([]Project, error) {
	var projects []Project
	if n := yamlnode.Lookup(m.section(), "projects"); n != nil {
		if err := n.Decode(&projects); err != nil {
			return nil, fmt.Errorf("invalid projects: %w", err)
		}
	}
	return projects, nil
}

// Project looks a project up by name.
func (m *Manifest) Project(name string) (Project, bool) {
	projects, err := m.Projects()
	if err != nil {
		return Project{}, false
	}
	for _, p := range projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// Revision returns the revision west checks out for p.
func (m *Manifest) Revision(p Project) string {
	if p.Revision != "" {
		return p.Revision
	}
	return m.DefaultRevision()
}

// ZMKRevision returns the revision of the zmk project.
func (m *Manifest) ZMKRevision() string {
	p, ok := m.Project("zmk")
	if !ok {
		return ""
	}
	return m.Revision(p)
}

// SplitModuleURL splits a repository URL into the remote URL base, the
// owner and the project name:
// https://github.com/urob/zmk-helpers.git → https://github.com/urob, urob, zmk-helpers
func SplitModuleURL(rawURL string) (base, owner, name string, err error) {
	u := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(rawURL), "/"), ".git")
	i := strings.LastIndexAny(u, "/:")
	if i <= 0 || i == len(u)-1 {
		return "", "", "", fmt.Errorf("invalid repository URL %q", rawURL)
	}
	base, name = u[:i], u[i+1:]
	owner = base[strings.LastIndexAny(base, "/:")+1:]
	if owner == "" || strings.HasSuffix(base, "//") {
		return "", "", "", fmt.Errorf("invalid repository URL %q", rawURL)
	}
	return base, owner, name, nil
}

// AddModule adds the repository at rawURL as a project, reusing a remote
// with the same URL base or declaring a new one. It returns the project and
// whether the manifest changed; a project with the same name is left as is.
func (m *Manifest) AddModule(rawURL, revision string) (Project, bool, error) {
	base, owner, name, err := SplitModuleURL(rawURL)
	if err != nil {
		return Project{}, false, err
	}
	if existing, ok := m.Project(name); ok {
		return existing, false, nil
	}
	if revision == "" {
		revision = DefaultModuleRevision
	}

	remotes, err := m.Remotes()
	if err != nil {
		return Project{}, false, err
	}
	remoteName := ""
	taken := make(map[string]bool)
	for _, r := range remotes {
		taken[r.Name] = true
		if strings.TrimSuffix(r.URLBase, "/") == base {
			remoteName = r.Name
		}
	}

	section := m.section()
	if remoteName == "" {
		remoteName = owner
		for i := 2; taken[remoteName]; i++ {
			remoteName = fmt.Sprintf("%s-%d", owner, i)
		}
		remote := yamlnode.Mapping()
		yamlnode.Set(remote, "name", yamlnode.Scalar(remoteName))
		yamlnode.Set(remote, "url-base", yamlnode.Scalar(base))
		seq := yamlnode.Ensure(section, "remotes", yamlnode.Sequence)
		seq.Content = append(seq.Content, remote)
	}

	p := Project{Name: name, Remote: remoteName, Revision: revision}
	node := yamlnode.Mapping()
	yamlnode.Set(node, "name", yamlnode.Scalar(p.Name))
	yamlnode.Set(node, "remote", yamlnode.Scalar(p.Remote))
	yamlnode.Set(node, "revision", yamlnode.Scalar(p.Revision))
	seq := yamlnode.Ensure(section, "projects", yamlnode.Sequence)
	seq.Content = append(seq.Content, node)
	return p, true, nil
}

// RemoveProject deletes a project, and its remote when no other project
// uses it. It reports whether the project existed.
func (m *Manifest) RemoveProject(name string) (bool, error) {
	if name == "zmk" {
		return false, ErrProtectedProject
	}
	p, ok := m.Project(name)
	if !ok {
		return false, nil
	}

	section := m.section()
	seq := yamlnode.Lookup(section, "projects")
	stillUsed := false
	kept := seq.Content[:0]
	for _, n := range seq.Content {
		if v := yamlnode.Lookup(n, "name"); v != nil && v.Value == name {
			continue
		}
		if v := yamlnode.Lookup(n, "remote"); v != nil && v.Value == p.Remote {
			stillUsed = true
		}
		kept = append(kept, n)
	}
	seq.Content = kept

	if p.Remote != "" && !stillUsed && p.Remote != m.defaultRemote() {
		if remotes := yamlnode.Lookup(section, "remotes"); remotes != nil {
			keptRemotes := remotes.Content[:0]
			for _, n := range remotes.Content {
				if v := yamlnode.Lookup(n, "name"); v != nil && v.Value == p.Remote {
					continue
				}
				keptRemotes = append(keptRemotes, n)
			}
			remotes.Content = keptRemotes
		}
	}
	return true, nil
}

func (m *Manifest) defaultRemote() string {
	if r := yamlnode.Lookup(yamlnode.Lookup(m.section(), "defaults"), "remote"); r != nil {
		return r.Value
	}
	return ""
}

// Bytes renders the manifest.
func (m *Manifest) Bytes() ([]byte, error) {
	return yamlnode.Encode(m.doc)
}

// Write saves the manifest to the file it was loaded from.
func (m *Manifest) Write() error {
	if m.path == "" {
		return errors.New("manifest has no path")
	}
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	if _, err := generator.Write(m.path, data, generator.Overwrite); err != nil {
		return fmt.Errorf("failed to write west manifest: %w", err)
	}
	return nil
}
