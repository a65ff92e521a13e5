// Package generator turns resolved templates into files on disk.
//
// A Generator ties the template store to the file system:
//
//	gen := generator.New(store)
//	text, err := gen.Render("shield/split/keymap", tmpl.Context{"id": "corne"})
//
// Files are written through operations so that a whole generation can be
// validated before anything touches the disk:
//
//	ops := []generator.Operation{
//	    &generator.WriteFileOp{Path: "corne.keymap", Content: keymap, Policy: generator.FailIfExists},
//	    &generator.WriteFileOp{Path: "corne.conf", Content: conf, Policy: generator.SkipIfExists},
//	}
//	results, err := generator.Execute(ctx, ops, generator.ExecuteOptions{})
//
// # Policies
//
// Every write carries a Policy deciding what happens when the destination
// already exists:
//
//   - FailIfExists: return *DestinationExistsError, write nothing
//   - Overwrite: replace the file
//   - SkipIfExists: leave the file alone and succeed
//   - Ask: let a Resolver decide (interactive menu, optional diff)
//
// # Transactions
//
// Execute stages writes in a Transaction. If a later write fails, files
// created earlier are removed and overwritten files get their previous
// content back.
package generator
