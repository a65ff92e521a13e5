// Package input provides interactive terminal input.
//
// Prompt and Confirm ask single questions; Select shows a filterable menu
// for choosing one item from a list such as keyboards or controller boards.
//
// Commands take a Prompter rather than calling the terminal directly, so
// tests can script the answers:
//
//	p := input.Terminal()
//	id, err := p.Prompt(ctx, input.PromptConfig{
//		Message:   "Keyboard ID",
//		Validator: input.Identifier,
//	})
//
// Every function returns ErrCancelled when the user presses Esc or Ctrl+C.
package input
