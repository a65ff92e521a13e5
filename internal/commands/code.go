package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// CodeCmd opens a keymap or the config repo in the user's editor.
func CodeCmd(app *App) *cobra.Command {
	var conf bool

	cmd := &cobra.Command{
		Use:   "code [keyboard]",
		Short: "Open a keymap in your editor",
		Long: `Opens config/<keyboard>.keymap (or .conf with --conf) in $VISUAL or
$EDITOR. Without a keyboard the config repo itself is opened.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runCode(cmd.Context(), app, id, conf)
		},
	}

	cmd.Flags().BoolVar(&conf, "conf", false, "Open the .conf file instead of the keymap")

	return cmd
}

// editorCommand splits $VISUAL or $EDITOR into a command and arguments.
func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return nil
}

func runCode(ctx context.Context, app *App, id string, conf bool) error {
	r, err := app.Repo()
	if err != nil {
		return err
	}

	path := r.Root()
	if id != "" {
		ext := ".keymap"
		if conf {
			ext = ".conf"
		}
		path = filepath.Join(r.ConfigPath(), id+ext)
		if _, err := os.Stat(path); err != nil {
			return fatalf(`%s does not exist. Run "zmkgen keyboard add -k %s" first.`, path, id)
		}
	}

	editor := editorCommand()
	if editor == nil {
		return fatalf("No editor set. Set $VISUAL or $EDITOR.")
	}
	args := append(editor[1:], path)
	return app.Executor.Run(ctx, editor[0], args...)
}
