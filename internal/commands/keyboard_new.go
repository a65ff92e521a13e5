package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/zmkgen/internal/input"
	"github.com/simonhull/zmkgen/internal/keyboard"
	"github.com/simonhull/zmkgen/internal/output"
	"github.com/simonhull/zmkgen/internal/tmpl"
)

type newKeyboardFlags struct {
	opts   keyboard.Options
	layout string

	writeFlags
}

func keyboardNewCmd(app *App) *cobra.Command {
	var f newKeyboardFlags

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new keyboard shield",
		Long: `Generates a keyboard shield in boards/shields/<id>/ from the shield
templates: Kconfig files, devicetree overlay(s), a default keymap, a .conf
file and hardware metadata.

Values not given as flags are asked for.

Examples:
  zmkgen keyboard new --id macropad --name "Macro Pad" --rows 3 --columns 4
  zmkgen keyboard new --id corne --layout split --rows 3 --columns 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyboardNew(cmd.Context(), app, f)
		},
	}

	cmd.Flags().StringVar(&f.opts.ID, "id", "", "Keyboard ID, e.g. my_keyboard")
	cmd.Flags().StringVar(&f.opts.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&f.layout, "layout", "", "unibody or split")
	cmd.Flags().IntVar(&f.opts.Rows, "rows", 0, "Rows in the key matrix")
	cmd.Flags().IntVar(&f.opts.Columns, "columns", 0, "Columns in the key matrix, counting both halves of a split keyboard")
	cmd.Flags().StringVar(&f.opts.Interconnect, "interconnect", keyboard.DefaultInterconnect, "Interconnect the controller plugs into")
	f.writeFlags.register(cmd)

	return cmd
}

func runKeyboardNew(ctx context.Context, app *App, f newKeyboardFlags) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}
	o := f.opts
	if err := askKeyboardOptions(ctx, app.Prompter, &o, f.layout); err != nil {
		return err
	}
	if o.Interconnect != "" && r.HasZMK() {
		catalog, err := app.Catalog(ctx, r)
		if err != nil {
			return err
		}
		if catalog.FindInterconnect(o.Interconnect) == nil {
			return fatalf(`Could not find interconnect "%s". Run "zmkgen keyboard list -t interconnect" to see the known ones.`, o.Interconnect)
		}
	}

	gen, err := app.Generator()
	if err != nil {
		return err
	}
	policy, opts, err := app.WriteOptions(f.writeFlags)
	if err != nil {
		return err
	}

	if _, err := keyboard.Generate(ctx, gen, r.Root(), o, policy, opts); err != nil {
		return err
	}
	if f.dryRun {
		return nil
	}

	rel, _ := filepath.Rel(r.Root(), r.ShieldPath(o.ID))
	output.Success(fmt.Sprintf(`Created keyboard "%s" in %s`, o.Name, rel))
	output.Info("Next steps:")
	output.Step("Set the GPIO pins in the overlay to match your wiring")
	output.Step(fmt.Sprintf("zmkgen keyboard add -k %s", o.ID))
	return nil
}

// askKeyboardOptions fills in whatever the flags left empty.
func askKeyboardOptions(ctx context.Context, p input.Prompter, o *keyboard.Options, layout string) error {
	var err error
	if o.ID == "" {
		o.ID, err = p.Prompt(ctx, input.PromptConfig{
			Message:   "Keyboard ID:",
			Help:      "Lower case letters, digits and underscores, e.g. my_keyboard",
			Validator: input.Identifier,
		})
		if err != nil {
			return err
		}
	}
	if o.Name == "" {
		o.Name, err = p.Prompt(ctx, input.PromptConfig{
			Message:   "Keyboard name:",
			Default:   tmpl.Title(strings.ReplaceAll(o.ID, "_", " ")),
			Validator: input.NonEmpty,
		})
		if err != nil {
			return err
		}
	}

	if layout != "" {
		if o.Layout, err = keyboard.ParseLayout(layout); err != nil {
			return err
		}
	} else {
		i, err := p.Select(ctx, input.SelectConfig{
			Title: "Select a layout:",
			Items: []string{"unibody  one piece", "split    left and right halves"},
		})
		if err != nil {
			return err
		}
		o.Layout = keyboard.Layouts[i]
	}

	if o.Rows == 0 {
		if o.Rows, err = askCount(ctx, p, "Rows:", "4"); err != nil {
			return err
		}
	}
	if o.Columns == 0 {
		message := "Columns:"
		if o.Layout == keyboard.Split {
			message = "Columns (both halves):"
		}
		if o.Columns, err = askCount(ctx, p, message, "12"); err != nil {
			return err
		}
	}
	return nil
}

func askCount(ctx context.Context, p input.Prompter, message, def string) (int, error) {
	s, err := p.Prompt(ctx, input.PromptConfig{Message: message, Default: def, Validator: positiveInt})
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a number greater than zero")
	}
	return nil
}
