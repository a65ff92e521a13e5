// Package filesystem walks directory trees while skipping directories that
// never hold hardware definitions or templates, such as .git, build output
// and the west workspace metadata.
//
// Find every hardware metadata file below a directory:
//
//	paths, err := filesystem.FindFiles(root, filesystem.WalkOptions{}, ".zmk.yml")
//
// Walk with custom ignores:
//
//	err := filesystem.Walk(root, filesystem.WalkOptions{
//	    IgnoreDirs:     []string{".git", "build"},
//	    IgnorePatterns: []string{"*.bak"},
//	}, func(path string, d fs.DirEntry) error {
//	    return nil
//	})
package filesystem
