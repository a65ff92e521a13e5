package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/zmkgen/internal/build"
	"github.com/simonhull/zmkgen/internal/config"
	"github.com/simonhull/zmkgen/internal/exec"
	"github.com/simonhull/zmkgen/internal/output"
)

// BuildCmd builds firmware for the build matrix with west.
func BuildCmd(app *App) *cobra.Command {
	var board, shield string
	var pristine bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build firmware locally",
		Long: `Runs "west build" for every entry of build.yaml, or for the entries
matching --board and --shield. Firmware is written to build/<artifact>/.

Needs west and the Zephyr toolchain; run "zmkgen update" first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), app, board, shield, pristine)
		},
	}

	cmd.Flags().StringVarP(&board, "board", "b", "", "Only build entries for this board")
	cmd.Flags().StringVarP(&shield, "shield", "s", "", "Only build entries for this shield")
	cmd.Flags().BoolVarP(&pristine, "pristine", "p", false, "Rebuild from scratch (default from build.pristine)")

	return cmd
}

// selectBuilds returns the items matching board and shield; empty filters
// match everything.
func selectBuilds(items []build.Item, board, shield string) []build.Item {
	var out []build.Item
	for _, i := range items {
		if board != "" && i.Board != board {
			continue
		}
		if shield != "" && i.Shield != shield {
			continue
		}
		out = append(out, i)
	}
	return out
}

func runBuild(ctx context.Context, app *App, board, shield string, pristine bool) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}
	if !r.HasZMK() {
		return fatalf(`ZMK has not been fetched. Run "zmkgen update" first.`)
	}
	cfg, err := app.Config()
	if err != nil {
		return err
	}
	pristine = pristine || cfg.GetBool(config.KeyPristine)

	matrix, err := build.Load(r.BuildMatrixPath())
	if err != nil {
		return err
	}
	items, err := matrix.Include()
	if err != nil {
		return err
	}
	items = selectBuilds(items, board, shield)
	if len(items) == 0 {
		return fatalf(`Nothing to build. Add a keyboard with "zmkgen keyboard add".`)
	}

	executor := app.Executor.WithDir(r.Root())
	for _, item := range items {
		opts := item.BuildOptions(r.ConfigPath(), pristine)
		output.Verbose(fmt.Sprintf("west %v", exec.BuildArgs(opts)))
		if err := buildItem(ctx, executor, opts, len(items) > 1); err != nil {
			return fmt.Errorf("building %s: %w", item, err)
		}
		output.Success(fmt.Sprintf("Built %s", filepath.Join("build", opts.Artifact(), "zephyr", "zmk.uf2")))
	}
	return nil
}

// buildItem runs one west build. When several builds run, their output is
// prefixed with the artifact name.
func buildItem(ctx context.Context, executor *exec.Executor, opts exec.BuildOptions, prefixed bool) error {
	if !prefixed {
		return exec.NewWest(executor).Build(ctx, opts)
	}
	executor, flush := executor.WithPrefix("[" + opts.Artifact() + "] ")
	err := exec.NewWest(executor).Build(ctx, opts)
	return errors.Join(err, flush())
}

// UpdateCmd fetches ZMK and the modules with west.
func UpdateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch ZMK, Zephyr and modules",
		Long:  updateHelp(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), app)
		},
	}
}

func updateHelp() string {
	var b strings.Builder
	b.WriteString("Runs these west tasks in the config repo, init only the first time:\n")
	for _, t := range exec.WestTasks() {
		fmt.Fprintf(&b, "  %-8s %s\n", t.Name, t.Description)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func runUpdate(ctx context.Context, app *App) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}
	executor := app.Executor.WithDir(r.Root())

	steps := []string{"update"}
	if !r.IsWestInitialized() {
		steps = append([]string{"init"}, steps...)
	}
	for _, step := range steps {
		if err := exec.RunTask(ctx, step, executor); err != nil {
			return err
		}
	}
	output.Success("ZMK and modules are up to date.")
	return nil
}
