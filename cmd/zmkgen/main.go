package main

import (
	"os"

	"github.com/simonhull/zmkgen/internal/commands"
	"github.com/simonhull/zmkgen/internal/output"
)

func main() {
	app := commands.NewApp()
	rootCmd := commands.RootCmd(app)
	commands.AddCommands(rootCmd, app)

	if err := rootCmd.Execute(); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}
