package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/zmkgen/internal/output"
)

// ConfigCmd reads and writes user settings.
func ConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config [key[=value]]",
		Short: "Show or change settings",
		Long: `Without arguments, prints every setting. With a key, prints its value.
With key=value, stores the value.

Settings:
  user.home       config repo used outside of any repo directory
  user.templates  template directory layered over the built-in templates
  build.pristine  always rebuild from scratch (true/false)

Environment variables override the file, e.g. ZMKGEN_USER_HOME.

Examples:
  zmkgen config
  zmkgen config user.home=/path/to/zmk-config
  zmkgen config build.pristine`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return runConfig(app, arg, cmd.OutOrStdout())
		},
	}
}

func runConfig(app *App, arg string, w io.Writer) error {
	cfg, err := app.Config()
	if err != nil {
		return err
	}

	if arg == "" {
		for _, key := range cfg.Keys() {
			fmt.Fprintf(w, "%s=%s\n", key, cfg.Get(key))
		}
		return nil
	}

	key, value, set := strings.Cut(arg, "=")
	if !set {
		if !cfg.IsSet(key) {
			return fatalf(`Setting "%s" is not set.`, key)
		}
		fmt.Fprintln(w, cfg.Get(key))
		return nil
	}

	if err := cfg.Set(key, value); err != nil {
		return fatalf("%s", err)
	}
	if err := cfg.Write(); err != nil {
		return err
	}
	output.Verbose(fmt.Sprintf("Wrote %s", cfg.Path()))
	return nil
}
