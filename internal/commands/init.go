package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/zmkgen/internal/config"
	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/output"
	"github.com/simonhull/zmkgen/internal/repo"
	"github.com/simonhull/zmkgen/internal/templates"
	"github.com/simonhull/zmkgen/internal/tmpl"
)

// InitCmd creates a new config repo.
func InitCmd(app *App) *cobra.Command {
	var name, revision string
	var noGit, noHome, force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a new ZMK config repo",
		Long: `Creates a ZMK config repo with:
• config/west.yml pinning ZMK
• build.yaml, the build matrix
• A GitHub Actions workflow building every entry of the matrix
• A git repository with an initial commit

The new repo becomes the default for other commands (user.home).

Example:
  zmkgen init zmk-config`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "zmk-config"
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd.Context(), app, initOptions{
				dir:      dir,
				name:     name,
				revision: revision,
				git:      !noGit,
				setHome:  !noHome,
				force:    force,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Repository title used in the README (default: directory name)")
	cmd.Flags().StringVar(&revision, "revision", "main", "ZMK revision to pin in west.yml")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "Do not create a git repository")
	cmd.Flags().BoolVar(&noHome, "no-home", false, "Do not make the new repo the default (user.home)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that already exist")

	return cmd
}

type initOptions struct {
	dir      string
	name     string
	revision string
	git      bool
	setHome  bool
	force    bool
}

func runInit(ctx context.Context, app *App, o initOptions) error {
	dir, err := filepath.Abs(o.dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", o.dir, err)
	}
	if repo.IsRepo(dir) && !o.force {
		return fatalf("%s is already a ZMK config repo.", dir)
	}
	if !o.force && app.Interactive != nil && app.Interactive() && !isEmptyDir(dir) {
		ok, err := app.Prompter.Confirm(ctx, fmt.Sprintf("%s is not empty. Create the config repo there anyway?", dir), false)
		if err != nil {
			return err
		}
		if !ok {
			return fatalf("Cancelled.")
		}
	}
	if o.name == "" {
		o.name = filepath.Base(dir)
	}

	gen, err := app.Generator()
	if err != nil {
		return err
	}

	policy := generator.FailIfExists
	if o.force {
		policy = generator.Overwrite
	}
	vars := tmpl.Context{"name": o.name, "zmk_revision": o.revision}

	output.Verbose(fmt.Sprintf("Creating config repo in %s", dir))
	ops, err := gen.Plan(dir, templates.RepoFiles, vars, policy)
	if err != nil {
		return fmt.Errorf("creating config repo: %w", err)
	}
	ops = append(ops, &generator.MkdirOp{Path: filepath.Join(dir, "boards", "shields")})
	if _, err := generator.Execute(ctx, ops, generator.ExecuteOptions{Writer: output.Writer()}); err != nil {
		return fmt.Errorf("creating config repo: %w", err)
	}

	if o.git {
		created, err := repo.InitGit(dir, "Initial ZMK config")
		if err != nil {
			return err
		}
		if created {
			output.Verbose("Created git repository")
		}
	}

	if o.setHome {
		cfg, err := app.Config()
		if err != nil {
			return err
		}
		if err := cfg.Set(config.KeyHome, dir); err != nil {
			return err
		}
		if err := cfg.Write(); err != nil {
			return err
		}
	}

	output.Success(fmt.Sprintf("Created ZMK config repo: %s", dir))
	output.Info("Next steps:")
	if cwd, err := os.Getwd(); err != nil || cwd != dir {
		output.Step(fmt.Sprintf("cd %s", o.dir))
	}
	output.Step("zmkgen keyboard add")
	output.Step("git remote add origin <your GitHub repository> && git push -u origin HEAD")
	return nil
}

// isEmptyDir reports whether dir is missing or has no entries.
func isEmptyDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err != nil || len(entries) == 0
}
