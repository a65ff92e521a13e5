package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/zmkgen"
	"github.com/simonhull/zmkgen/internal/logger"
	"github.com/simonhull/zmkgen/internal/output"
)

// RootCmd creates the root command for the zmkgen CLI. Subcommands are
// added by the caller.
func RootCmd(app *App) *cobra.Command {
	var verbose bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "zmkgen",
		Short: "Scaffold and maintain ZMK firmware config repositories",
		Long: `zmkgen creates and edits ZMK config repositories.

• Create a config repo with GitHub Actions builds ready to go
• Add keyboards and controllers to the build matrix
• Generate new keyboard shields from layered templates
• Manage west modules and build firmware locally

Learn more: https://zmk.dev`,
		Version:       zmkgen.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			output.SetOutput(cmd.OutOrStdout())
			output.SetVerbose(verbose)

			level, err := logger.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			if verbose && level == logger.LevelSilent {
				level = logger.LevelDebug
			}
			logger.SetDefault(logger.NewLogger(level, cmd.ErrOrStderr()))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", app.ConfigPath, "Settings file (default $XDG_CONFIG_HOME/zmkgen/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Templates, "templates", app.Templates, "Directory of templates layered over the built-in ones")

	return cmd
}

// AddCommands registers every zmkgen subcommand on root.
func AddCommands(root *cobra.Command, app *App) {
	root.AddCommand(InitCmd(app))
	root.AddCommand(KeyboardCmd(app))
	root.AddCommand(ModuleCmd(app))
	root.AddCommand(RenderCmd(app))
	root.AddCommand(BuildCmd(app))
	root.AddCommand(UpdateCmd(app))
	root.AddCommand(ConfigCmd(app))
	root.AddCommand(CodeCmd(app))
	root.AddCommand(VersionCmd())
}

// VersionCmd prints the zmkgen version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the zmkgen version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zmkgen %s\n", zmkgen.Version)
		},
	}
}
