package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/zmkgen/internal/output"
	"github.com/simonhull/zmkgen/internal/repo"
)

// ModuleCmd groups the module subcommands, which edit config/west.yml.
func ModuleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage ZMK modules",
		Long:  "Add, remove and list the modules west fetches for this config repo",
	}

	cmd.AddCommand(moduleAddCmd(app))
	cmd.AddCommand(moduleRemoveCmd(app))
	cmd.AddCommand(moduleListCmd(app))

	return cmd
}

func moduleAddCmd(app *App) *cobra.Command {
	var revision string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a module",
		Long: `Adds a module repository to config/west.yml. A remote is declared for
the repository's owner unless one with the same URL base exists.

Example:
  zmkgen module add https://github.com/urob/zmk-helpers --revision v0.1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModuleAdd(app, args[0], revision)
		},
	}

	cmd.Flags().StringVarP(&revision, "revision", "r", repo.DefaultModuleRevision, "Branch, tag or commit to fetch")

	return cmd
}

func runModuleAdd(app *App, url, revision string) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}
	m, err := r.Manifest()
	if err != nil {
		return err
	}

	p, changed, err := m.AddModule(url, revision)
	if err != nil {
		return fatalf("%s", err)
	}
	if !changed {
		output.Info(fmt.Sprintf(`Module "%s" is already in west.yml.`, p.Name))
		if current := m.Revision(p); repo.ClassifyRevision(revision) == repo.RevisionVersion && repo.CompareVersions(current, revision) < 0 {
			output.Step(fmt.Sprintf("It is pinned to %s. Edit %s to move it to %s.", current, m.Path(), revision))
		}
		return nil
	}
	if err := m.Write(); err != nil {
		return err
	}

	output.Success(fmt.Sprintf(`Added module "%s" at %s (%s).`, p.Name, p.Revision, repo.ClassifyRevision(p.Revision)))
	output.Step(`Run "zmkgen update" to fetch it.`)
	return nil
}

func moduleRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModuleRemove(app, args[0])
		},
	}
}

func runModuleRemove(app *App, name string) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}
	m, err := r.Manifest()
	if err != nil {
		return err
	}

	removed, err := m.RemoveProject(name)
	if errors.Is(err, repo.ErrProtectedProject) {
		return fatalf("%s", err)
	}
	if err != nil {
		return err
	}
	if !removed {
		return fatalf(`Could not find a module named "%s".`, name)
	}
	if err := m.Write(); err != nil {
		return err
	}
	output.Success(fmt.Sprintf(`Removed module "%s".`, name))
	return nil
}

func moduleListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the projects in west.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModuleList(app)
		},
	}
}

func runModuleList(app *App) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}
	m, err := r.Manifest()
	if err != nil {
		return err
	}
	projects, err := m.Projects()
	if err != nil {
		return err
	}
	remotes, err := m.Remotes()
	if err != nil {
		return err
	}
	bases := make(map[string]string, len(remotes))
	for _, rm := range remotes {
		bases[rm.Name] = strings.TrimSuffix(rm.URLBase, "/")
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		url := p.URL
		if url == "" && bases[p.Remote] != "" {
			url = bases[p.Remote] + "/" + p.Name
		}
		rev := m.Revision(p)
		rows = append(rows, []string{p.Name, rev, repo.ClassifyRevision(rev).String(), url})
	}
	output.Table([]string{"Name", "Revision", "Kind", "URL"}, rows)
	return nil
}
