package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simonhull/zmkgen/internal/config"
	"github.com/simonhull/zmkgen/internal/exec"
	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/hardware"
	"github.com/simonhull/zmkgen/internal/input"
	"github.com/simonhull/zmkgen/internal/output"
	"github.com/simonhull/zmkgen/internal/repo"
	"github.com/simonhull/zmkgen/internal/templates"
)

// App is the state shared by all commands. The root command fills
// ConfigPath and Templates from its flags.
type App struct {
	ConfigPath string
	Templates  string

	Prompter    input.Prompter
	Executor    *exec.Executor
	Interactive func() bool

	cfg *config.Config
}

// NewApp returns an App talking to the user's terminal.
func NewApp() *App {
	return &App{
		Prompter:    input.Terminal(),
		Executor:    exec.NewExecutor(nil),
		Interactive: isTerminal,
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Config loads the user settings once.
func (a *App) Config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

// Repo returns the config repo containing the working directory, or else
// the one user.home points at.
func (a *App) Repo() (*repo.Repo, error) {
	if cwd, err := os.Getwd(); err == nil {
		if r, err := repo.Find(cwd); err == nil {
			return r, nil
		}
	}

	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	home := cfg.Home()
	if home == "" {
		return nil, ErrHomeNotSet
	}
	r, err := repo.Open(home)
	if repo.IsNotRepo(err) {
		return nil, &HomeMissingError{Path: home}
	}
	return r, err
}

// Generator returns a generator over the built-in templates, layered with
// the --templates directory or the user.templates setting.
func (a *App) Generator() (*generator.Generator, error) {
	dir := a.Templates
	if dir == "" {
		cfg, err := a.Config()
		if err != nil {
			return nil, err
		}
		dir = cfg.Templates()
	}
	store, err := templates.Load(dir)
	if err != nil {
		return nil, err
	}
	return generator.New(store), nil
}

// Catalog discovers the hardware of a repo. Boards defined in the repo
// shadow ZMK's.
func (a *App) Catalog(ctx context.Context, r *repo.Repo) (*hardware.Catalog, error) {
	if !r.HasZMK() {
		output.Warn(`ZMK has not been fetched, so only this repo's own boards are listed. Run "zmkgen update" to fetch it.`)
	}
	catalog, err := hardware.Discover(ctx, r.BoardsPath(), filepath.Join(r.ZMKAppPath(), "boards"))
	if err != nil {
		return nil, fmt.Errorf("finding hardware: %w", err)
	}
	for _, p := range catalog.Problems {
		output.Verbose(p.Error())
	}
	return catalog, nil
}

// writeFlags are the flags of commands that write generated files.
type writeFlags struct {
	force, skip, diff, dryRun bool
	onConflict                string
}

func (w *writeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&w.force, "force", false, "Overwrite existing files without asking")
	cmd.Flags().BoolVar(&w.skip, "skip", false, "Keep existing files without asking")
	cmd.Flags().BoolVar(&w.diff, "diff", false, "Show a diff before asking about an existing file")
	cmd.Flags().BoolVar(&w.dryRun, "dry-run", false, "Show what would be written without writing it")
	cmd.Flags().StringVar(&w.onConflict, "on-conflict", "", "What to do with existing files: fail, overwrite, skip or ask")
}

// WriteOptions turns the write flags into a policy and execute options.
// Without --force, --skip or --on-conflict a terminal user is asked about
// each existing file. An explicit "ask" without a terminal fails on the first
// existing file that differs.
func (a *App) WriteOptions(w writeFlags) (generator.Policy, generator.ExecuteOptions, error) {
	interactive := a.Interactive != nil && a.Interactive()

	var policy generator.Policy
	var err error
	if w.onConflict != "" {
		if w.force || w.skip {
			return policy, generator.ExecuteOptions{}, fmt.Errorf("--on-conflict cannot be combined with --force or --skip")
		}
		policy, err = generator.ParsePolicy(w.onConflict)
	} else {
		policy, err = generator.PolicyFromFlags(w.force, w.skip, interactive)
	}
	if err != nil {
		return policy, generator.ExecuteOptions{}, err
	}

	opts := generator.ExecuteOptions{DryRun: w.dryRun, Writer: output.Writer()}
	if policy == generator.Ask && interactive {
		opts.Resolver = generator.NewResolver(w.diff)
	}
	return policy, opts, nil
}

// choose shows a menu of hardware and returns the pick.
func (a *App) choose(ctx context.Context, title, kind string, list []*hardware.Hardware) (*hardware.Hardware, error) {
	if len(list) == 0 {
		return nil, fatalf("No matching %s found.", kind)
	}
	items := make([]string, len(list))
	for i, h := range list {
		items[i] = fmt.Sprintf("%-24s %s", h.ID, h.Name)
	}
	i, err := a.Prompter.Select(ctx, input.SelectConfig{
		Title: title,
		Items: items,
		Filter: func(i int, text string) bool {
			return input.MatchFold(text, list[i].ID, list[i].Name)
		},
	})
	if err != nil {
		return nil, err
	}
	return list[i], nil
}
