package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultIgnoreDirs are skipped unless WalkOptions.IgnoreDirs is set.
var DefaultIgnoreDirs = []string{
	".git", ".west", ".github", "build", "node_modules",
	".idea", ".vscode", "tmp",
}

// WalkOptions configures directory traversal.
type WalkOptions struct {
	IgnoreDirs     []string // directory names to skip (default: DefaultIgnoreDirs)
	IgnorePatterns []string // file name patterns to skip, e.g. "*.bak"
	IncludeHidden  bool     // visit hidden files and directories
}

// Walk visits every file and directory below rootPath that is not ignored.
// Return filepath.SkipDir from visitor to skip a directory. A missing
// rootPath is not an error.
func Walk(rootPath string, opts WalkOptions, visitor func(path string, d fs.DirEntry) error) error {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if path == rootPath {
			return visitor(path, d)
		}

		if !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			for _, ignore := range ignoreDirs {
				if d.Name() == ignore {
					return filepath.SkipDir
				}
			}
			return visitor(path, d)
		}

		for _, pattern := range opts.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, d.Name()); matched {
				return nil
			}
		}
		return visitor(path, d)
	})
	return err
}

// FindFiles returns the files below rootPath whose names end in suffix,
// sorted.
func FindFiles(rootPath string, opts WalkOptions, suffix string) ([]string, error) {
	var paths []string
	err := Walk(rootPath, opts, func(path string, d fs.DirEntry) error {
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
