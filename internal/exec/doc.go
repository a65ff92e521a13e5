// Package exec runs the external tools zmkgen drives: west for updating and
// building the ZMK workspace, and the user's editor.
//
// An Executor runs one command with context cancellation, an optional
// spinner and helpful errors for missing tools:
//
//	e := exec.NewExecutor(&exec.Options{Dir: repo.Root})
//	err := e.RunWithSpinner(ctx, "Updating modules", "west", "update")
//
// West commands are built with the fluent Command API. The maintenance
// steps of a workspace are registered as named tasks:
//
//	err := exec.NewCommand(e, "west").WithArgs("build", "-b", "nice_nano_v2").Run(ctx)
//	err := exec.RunTask(ctx, "update", e)
package exec
