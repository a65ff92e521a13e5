package exec

import (
	"context"
	"path/filepath"
	"strings"
)

// West drives the west meta-tool inside a ZMK config repo.
type West struct {
	executor *Executor
}

// NewWest returns a West running in the executor's directory, which should
// be the root of the config repo.
func NewWest(executor *Executor) *West {
	return &West{executor: executor}
}

// Init initializes the west workspace from the manifest in configDir.
func (w *West) Init(ctx context.Context, configDir string) error {
	return NewCommand(w.executor, "west").
		WithArgs("init", "-l", configDir).
		WithSpinner("Initializing west workspace").
		Run(ctx)
}

// Update fetches every project listed in the manifest.
func (w *West) Update(ctx context.Context) error {
	return NewCommand(w.executor, "west").
		WithArgs("update").
		WithSpinner("Updating ZMK and modules").
		Run(ctx)
}

// ZephyrExport registers the Zephyr CMake package.
func (w *West) ZephyrExport(ctx context.Context) error {
	return NewCommand(w.executor, "west").
		WithArgs("zephyr-export").
		WithSpinner("Exporting Zephyr CMake package").
		Run(ctx)
}

// BuildOptions describes one firmware build.
type BuildOptions struct {
	Board        string
	Shield       string
	Snippet      string
	CMakeArgs    string // extra CMake arguments, space separated
	ArtifactName string
	SourceDir    string // ZMK application, default "zmk/app"
	BuildDir     string // default "build/<artifact>"
	ConfigDir    string // absolute path of the repo's config directory
	Pristine     bool
}

// Artifact is the name of the firmware file a build produces.
func (o BuildOptions) Artifact() string {
	if o.ArtifactName != "" {
		return o.ArtifactName
	}
	name := o.Board
	if o.Shield != "" {
		name = strings.ReplaceAll(o.Shield, " ", "-") + "-" + o.Board
	}
	return name
}

// BuildArgs returns the west arguments for a build.
func BuildArgs(o BuildOptions) []string {
	source := o.SourceDir
	if source == "" {
		source = filepath.Join("zmk", "app")
	}
	buildDir := o.BuildDir
	if buildDir == "" {
		buildDir = filepath.Join("build", o.Artifact())
	}

	args := []string{"build", "-s", source, "-d", buildDir, "-b", o.Board}
	if o.Snippet != "" {
		args = append(args, "-S", o.Snippet)
	}
	if o.Pristine {
		args = append(args, "-p")
	}

	var cmake []string
	if o.Shield != "" {
		cmake = append(cmake, "-DSHIELD="+o.Shield)
	}
	if o.ConfigDir != "" {
		cmake = append(cmake, "-DZMK_CONFIG="+o.ConfigDir)
	}
	cmake = append(cmake, strings.Fields(o.CMakeArgs)...)
	if len(cmake) > 0 {
		args = append(args, "--")
		args = append(args, cmake...)
	}
	return args
}

// Build compiles one firmware image.
func (w *West) Build(ctx context.Context, o BuildOptions) error {
	return NewCommand(w.executor, "west").
		WithArgs(BuildArgs(o)...).
		WithSpinner("Building " + o.Artifact()).
		Run(ctx)
}
