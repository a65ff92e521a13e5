package input

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrCancelled is returned when the user aborts a prompt or menu.
var ErrCancelled = errors.New("cancelled by user")

// PromptConfig configures a text prompt.
type PromptConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// SelectConfig configures a menu.
type SelectConfig struct {
	Title  string
	Items  []string
	Filter func(index int, text string) bool // nil matches Items by MatchFold
	Height int                               // rows of items, 0 means 10
}

// Prompter asks the user questions.
type Prompter interface {
	Prompt(ctx context.Context, cfg PromptConfig) (string, error)
	Confirm(ctx context.Context, message string, defaultYes bool) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
}

type terminalPrompter struct{}

// Terminal returns a Prompter reading from the user's terminal.
func Terminal() Prompter {
	return terminalPrompter{}
}

func (terminalPrompter) Prompt(ctx context.Context, cfg PromptConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}

	var opts []survey.AskOpt
	if cfg.Validator != nil {
		validate := cfg.Validator
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(strings.TrimSpace(s))
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return strings.TrimSpace(out), nil
}

func (terminalPrompter) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: defaultYes}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func (terminalPrompter) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	return Select(cfg)
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCancelled
	}
	return err
}

var identifierRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Identifier validates a devicetree-friendly hardware ID such as
// "corne_choc".
func Identifier(s string) error {
	if s == "" {
		return errors.New("an ID is required")
	}
	if !identifierRe.MatchString(s) {
		return fmt.Errorf("%q must start with a letter and contain only lower case letters, digits and underscores", s)
	}
	return nil
}

// NonEmpty rejects blank answers.
func NonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	return nil
}
