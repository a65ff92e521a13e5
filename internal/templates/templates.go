// Package templates holds the built-in templates and layers a user template
// directory on top of them.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/tmpl"
)

//go:embed files
var files embed.FS

// RepoFiles are the files of a new config repo.
var RepoFiles = []generator.File{
	{Template: "repo/west.yml", Path: "config/west.yml"},
	{Template: "repo/build.yaml", Path: "build.yaml"},
	{Template: "repo/workflow.yml", Path: ".github/workflows/build.yml"},
	{Template: "repo/README.md", Path: "README.md"},
	{Template: "repo/gitignore", Path: ".gitignore"},
}

// FS returns the built-in templates.
func FS() fs.FS {
	sub, err := fs.Sub(files, "files")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load builds a store from the built-in templates. Templates in userDir, if
// given, replace built-in templates of the same name and may add new ones.
func Load(userDir string) (*tmpl.Store, error) {
	layers := []fs.FS{FS()}
	if userDir != "" {
		info, err := os.Stat(userDir)
		if err != nil {
			return nil, fmt.Errorf("template directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template directory %s is not a directory", userDir)
		}
		layers = append(layers, os.DirFS(userDir))
	}
	return tmpl.LoadFS(layers...)
}
