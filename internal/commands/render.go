package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/output"
	"github.com/simonhull/zmkgen/internal/tmpl"
)

type renderFlags struct {
	set  []string
	out  string
	list bool
	vars bool

	writeFlags
}

// RenderCmd renders any template of the store.
func RenderCmd(app *App) *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [template]",
		Short: "Render a template",
		Long: `Renders a template from the built-in templates or the --templates
directory, resolving its inherit chain and blocks first.

Without --output the result is printed.

Examples:
  zmkgen render --list
  zmkgen render shield/split/Kconfig.shield -s id=corne
  zmkgen render shield/unibody/keymap --vars
  zmkgen render repo/README.md -s name=my-config -o README.md`,
		Args: func(cmd *cobra.Command, args []string) error {
			if f.list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.list {
				return runRenderList(app, cmd.OutOrStdout())
			}
			return runRender(cmd.Context(), app, args[0], f, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVarP(&f.set, "set", "s", nil, "Set a value, name=value (repeatable)")
	cmd.Flags().StringVarP(&f.out, "output", "o", "", "Write to this file instead of printing")
	cmd.Flags().BoolVar(&f.list, "list", false, "List the available templates")
	cmd.Flags().BoolVar(&f.vars, "vars", false, "List the template's placeholders instead of rendering")
	f.writeFlags.register(cmd)

	return cmd
}

func runRenderList(app *App, w io.Writer) error {
	gen, err := app.Generator()
	if err != nil {
		return err
	}
	for _, name := range gen.Store().Names() {
		fmt.Fprintln(w, name)
	}
	return nil
}

// parseSet converts name=value pairs into a render context.
func parseSet(pairs []string) (tmpl.Context, error) {
	ctx := make(tmpl.Context, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fatalf(`Invalid value "%s". Use name=value.`, pair)
		}
		ctx[name] = value
	}
	return ctx, nil
}

func runRender(ctx context.Context, app *App, name string, f renderFlags, w io.Writer) error {
	gen, err := app.Generator()
	if err != nil {
		return err
	}
	vars, err := parseSet(f.set)
	if err != nil {
		return err
	}

	if f.vars {
		resolved, err := gen.Store().Resolve(name)
		if err != nil {
			return err
		}
		for _, v := range resolved.Variables() {
			if def, ok := resolved.Defaults[v]; ok {
				fmt.Fprintf(w, "%s (default %q)\n", v, def)
			} else {
				fmt.Fprintln(w, v)
			}
		}
		return nil
	}

	missing, err := gen.Missing(name, vars)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fatalf("Missing values for %s. Pass them with -s name=value.", strings.Join(missing, ", "))
	}

	if f.out == "" {
		text, err := gen.Render(name, vars)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err
	}

	dest, err := filepath.Abs(f.out)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", f.out, err)
	}
	policy, opts, err := app.WriteOptions(f.writeFlags)
	if err != nil {
		return err
	}
	ops, err := gen.Plan(filepath.Dir(dest), []generator.File{{Template: name, Path: filepath.Base(dest), Literal: true}}, vars, policy)
	if err != nil {
		return err
	}
	results, err := generator.Execute(ctx, ops, opts)
	if err != nil {
		return err
	}
	for _, r := range results {
		output.Verbose(fmt.Sprintf("%s: %s", r.Outcome, r.Op.Description()))
	}
	return nil
}
