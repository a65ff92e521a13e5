package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDir       = "config"
	westFile        = "west.yml"
	buildMatrixFile = "build.yaml"
)

// NotRepoError is returned when a directory is not inside a config repo.
type NotRepoError struct {
	Path string
}

func (e *NotRepoError) Error() string {
	return fmt.Sprintf("%s is not a ZMK config repo (no %s found)", e.Path, filepath.Join(configDir, westFile))
}

// Repo is a ZMK config repository on disk.
type Repo struct {
	root string
}

// IsRepo reports whether dir is the root of a config repo.
func IsRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, configDir, westFile))
	return err == nil && !info.IsDir()
}

// Open returns the repo rooted at dir.
func Open(dir string) (*Repo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	if !IsRepo(abs) {
		return nil, &NotRepoError{Path: abs}
	}
	return &Repo{root: abs}, nil
}

// Find returns the repo containing start, searching start and its parents.
func Find(start string) (*Repo, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", start, err)
	}
	for dir := abs; ; {
		if IsRepo(dir) {
			return &Repo{root: dir}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, &NotRepoError{Path: abs}
		}
		dir = parent
	}
}

// IsNotRepo reports whether err says a directory is not a config repo.
func IsNotRepo(err error) bool {
	var nr *NotRepoError
	return errors.As(err, &nr)
}

// Root returns the repo's top directory.
func (r *Repo) Root() string { return r.root }

// ConfigPath returns the directory holding west.yml, keymaps and .conf files.
func (r *Repo) ConfigPath() string { return filepath.Join(r.root, configDir) }

// WestPath returns the west manifest.
func (r *Repo) WestPath() string { return filepath.Join(r.root, configDir, westFile) }

// BuildMatrixPath returns build.yaml.
func (r *Repo) BuildMatrixPath() string { return filepath.Join(r.root, buildMatrixFile) }

// BoardsPath returns the directory for custom boards and shields.
func (r *Repo) BoardsPath() string { return filepath.Join(r.root, "boards") }

// ShieldPath returns the directory of a custom shield.
func (r *Repo) ShieldPath(id string) string { return filepath.Join(r.root, "boards", "shields", id) }

// ZMKPath returns the ZMK checkout made by "west update".
func (r *Repo) ZMKPath() string { return filepath.Join(r.root, "zmk") }

// ZMKAppPath returns the ZMK application directory.
func (r *Repo) ZMKAppPath() string { return filepath.Join(r.root, "zmk", "app") }

// IsWestInitialized reports whether "west init" has run in the repo.
func (r *Repo) IsWestInitialized() bool {
	info, err := os.Stat(filepath.Join(r.root, ".west"))
	return err == nil && info.IsDir()
}

// HasZMK reports whether the ZMK sources have been fetched.
func (r *Repo) HasZMK() bool {
	info, err := os.Stat(r.ZMKAppPath())
	return err == nil && info.IsDir()
}

// Manifest loads config/west.yml.
func (r *Repo) Manifest() (*Manifest, error) {
	return LoadManifest(r.WestPath())
}
