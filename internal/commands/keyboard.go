package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/simonhull/zmkgen/internal/build"
	"github.com/simonhull/zmkgen/internal/generator"
	"github.com/simonhull/zmkgen/internal/hardware"
	"github.com/simonhull/zmkgen/internal/input"
	"github.com/simonhull/zmkgen/internal/output"
	"github.com/simonhull/zmkgen/internal/repo"
)

// KeyboardCmd groups the keyboard subcommands.
func KeyboardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keyboard",
		Aliases: []string{"kb"},
		Short:   "Add, remove, list and create keyboards",
	}

	cmd.AddCommand(keyboardAddCmd(app))
	cmd.AddCommand(keyboardRemoveCmd(app))
	cmd.AddCommand(keyboardListCmd(app))
	cmd.AddCommand(keyboardNewCmd(app))

	return cmd
}

func keyboardAddCmd(app *App) *cobra.Command {
	var keyboardID, controllerID string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a keyboard to the build",
		Long: `Copies the keyboard's default keymap and configuration into config/
and adds its firmware builds to build.yaml.

Keyboards and controllers not given as flags are picked from a menu.

Example:
  zmkgen keyboard add -k corne -c nice_nano_v2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyboardAdd(cmd.Context(), app, keyboardID, controllerID)
		},
	}

	cmd.Flags().StringVarP(&keyboardID, "keyboard", "k", "", "ID of the keyboard board or shield to add")
	cmd.Flags().StringVarP(&controllerID, "controller", "c", "", "ID of the controller board to add")

	return cmd
}

func runKeyboardAdd(ctx context.Context, app *App, keyboardID, controllerID string) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}
	catalog, err := app.Catalog(ctx, r)
	if err != nil {
		return err
	}

	var keyboard, controller *hardware.Hardware
	keyboards := catalog.Keyboards

	switch {
	case keyboardID != "":
		if keyboard = catalog.FindKeyboard(keyboardID); keyboard == nil {
			return fatalf(`Could not find a keyboard with ID "%s"`, keyboardID)
		}
		if controllerID != "" {
			if keyboard.Type != hardware.TypeShield {
				return fatalf(`Keyboard "%s" has an onboard controller and does not require a controller board.`, keyboard.ID)
			}
			if controller = catalog.FindController(controllerID); controller == nil {
				return fatalf(`Could not find a controller board with ID "%s"`, controllerID)
			}
		}
	case controllerID != "":
		if controller = catalog.FindController(controllerID); controller == nil {
			return fatalf(`Could not find a controller board with ID "%s"`, controllerID)
		}
		keyboards = catalog.CompatibleKeyboards(controller)
	}

	if keyboard == nil {
		if keyboard, err = app.choose(ctx, "Select a keyboard:", "keyboards", keyboards); err != nil {
			return err
		}
	}
	if keyboard.Type == hardware.TypeShield && controller == nil {
		if controller, err = app.choose(ctx, "Select a controller:", "controllers", catalog.CompatibleControllers(keyboard)); err != nil {
			return err
		}
	}
	if controller != nil && !hardware.IsCompatible(controller, keyboard) {
		return fatalf(`Keyboard "%s" is not compatible with controller "%s"`, keyboard.ID, controller.ID)
	}

	name := keyboard.ID
	if controller != nil {
		name += ", " + controller.ID
	}

	added, err := addKeyboard(r, keyboard, controller)
	if err != nil {
		return err
	}
	if added {
		output.Success(fmt.Sprintf(`Added "%s".`, name))
	} else {
		output.Info(fmt.Sprintf(`"%s" is already in the build matrix.`, name))
	}
	output.Info(fmt.Sprintf(`Run "zmkgen code %s" to edit the keymap.`, keyboard.ID))
	return nil
}

func addKeyboard(r *repo.Repo, keyboard, controller *hardware.Hardware) (bool, error) {
	for _, src := range []string{keyboard.KeymapPath(), keyboard.ConfigPath()} {
		if err := copyKeyboardFile(r, src); err != nil {
			return false, err
		}
	}

	items, err := hardware.BuildItems(keyboard, controller)
	if err != nil {
		return false, err
	}
	matrix, err := build.Load(r.BuildMatrixPath())
	if err != nil {
		return false, err
	}
	added, err := matrix.Append(items...)
	if err != nil || !added {
		return added, err
	}
	return true, matrix.Write()
}

// copyKeyboardFile copies a default keymap or config into config/ unless the
// repo already has one.
func copyKeyboardFile(r *repo.Repo, src string) error {
	data, err := os.ReadFile(src)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	dest := filepath.Join(r.ConfigPath(), filepath.Base(src))
	outcome, err := generator.Write(dest, data, generator.SkipIfExists)
	if err != nil {
		return err
	}
	if outcome == generator.Created {
		output.Verbose(fmt.Sprintf("Copied %s", filepath.Base(src)))
	}
	return nil
}

func keyboardRemoveCmd(app *App) *cobra.Command {
	var keyboardID string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove builds from the build matrix",
		Long: `Removes entries from build.yaml. With --keyboard, every entry building
that board or shield (including split halves) is removed; otherwise the
entry is picked from a menu.

Keymaps and configuration in config/ are left in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyboardRemove(cmd.Context(), app, keyboardID)
		},
	}

	cmd.Flags().StringVarP(&keyboardID, "keyboard", "k", "", "ID of the keyboard to remove")

	return cmd
}

func runKeyboardRemove(ctx context.Context, app *App, keyboardID string) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}
	matrix, err := build.Load(r.BuildMatrixPath())
	if err != nil {
		return err
	}
	items, err := matrix.Include()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fatalf("The build matrix is empty.")
	}

	var removed bool
	if keyboardID != "" {
		ids := []string{keyboardID}
		if catalog, err := hardware.Discover(ctx, r.BoardsPath(), filepath.Join(r.ZMKAppPath(), "boards")); err == nil {
			if kb := catalog.FindKeyboard(keyboardID); kb != nil {
				ids = append(ids, kb.Siblings...)
			}
		}
		removed, err = matrix.RemoveFunc(func(i build.Item) bool {
			return slices.Contains(ids, i.Board) || slices.Contains(ids, i.Shield)
		})
		if err != nil {
			return err
		}
		if !removed {
			return fatalf(`"%s" is not in the build matrix.`, keyboardID)
		}
	} else {
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = item.String()
		}
		i, err := app.Prompter.Select(ctx, input.SelectConfig{Title: "Select a build to remove:", Items: labels})
		if err != nil {
			return err
		}
		if removed, err = matrix.Remove(items[i]); err != nil {
			return err
		}
		keyboardID = labels[i]
	}

	if err := matrix.Write(); err != nil {
		return err
	}
	output.Success(fmt.Sprintf(`Removed "%s" from the build matrix.`, keyboardID))
	return nil
}

const (
	listAll          = "all"
	listKeyboard     = "keyboard"
	listController   = "controller"
	listInterconnect = "interconnect"
)

func keyboardListCmd(app *App) *cobra.Command {
	var listType, board, shield string
	var standalone, showBuild bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supported keyboards or the build matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuild {
				return runListBuild(app)
			}
			return runKeyboardList(cmd.Context(), app, listType, board, shield, standalone)
		},
	}

	cmd.Flags().StringVarP(&listType, "type", "t", listAll, "List only items of this type (all, keyboard, controller, interconnect)")
	cmd.Flags().StringVarP(&board, "board", "b", "", "List only keyboards compatible with this controller board")
	cmd.Flags().StringVarP(&shield, "shield", "s", "", "List only controllers compatible with this shield")
	cmd.Flags().BoolVar(&standalone, "standalone", false, "List only keyboards with onboard controllers")
	cmd.Flags().BoolVar(&showBuild, "build", false, "Show the build matrix")

	return cmd
}

func runListBuild(app *App) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}
	matrix, err := build.Load(r.BuildMatrixPath())
	if err != nil {
		return err
	}
	items, err := matrix.Include()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		output.Info("The build matrix is empty.")
		return nil
	}
	headers, rows := build.Table(items)
	output.Table(headers, rows)
	return nil
}

func runKeyboardList(ctx context.Context, app *App, listType, board, shield string, standalone bool) error {
	switch listType {
	case listAll, listKeyboard, listController, listInterconnect:
	default:
		return fatalf(`Unknown type "%s". Use all, keyboard, controller or interconnect.`, listType)
	}

	r, err := app.Repo()
	if err != nil {
		return err
	}
	catalog, err := app.Catalog(ctx, r)
	if err != nil {
		return err
	}

	keyboards := catalog.Keyboards
	controllers := catalog.Controllers

	switch {
	case board != "":
		controller := catalog.FindController(board)
		if controller == nil {
			return fatalf(`Could not find controller board "%s".`, board)
		}
		keyboards = catalog.CompatibleKeyboards(controller)
		listType = listKeyboard
	case shield != "":
		sh := catalog.FindShield(shield)
		if sh == nil {
			if catalog.FindKeyboard(shield) != nil {
				return fatalf(`Keyboard "%s" is a standalone keyboard.`, shield)
			}
			return fatalf(`Could not find shield "%s".`, shield)
		}
		controllers = catalog.CompatibleControllers(sh)
		listType = listController
	case standalone:
		keyboards = catalog.Standalone()
		listType = listKeyboard
	}

	printGroup := func(header string, list []*hardware.Hardware) {
		if listType == listAll {
			output.Info(header)
		}
		ids := make([]string, len(list))
		for i, h := range list {
			ids[i] = h.ID
		}
		output.Columns(ids)
		output.Plain("")
	}

	if listType == listAll || listType == listKeyboard {
		printGroup("Keyboards:", keyboards)
	}
	if listType == listAll || listType == listController {
		printGroup("Controllers:", controllers)
	}
	if listType == listAll || listType == listInterconnect {
		printGroup("Interconnects:", catalog.Interconnects)
	}
	return nil
}
