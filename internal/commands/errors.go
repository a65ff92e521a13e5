package commands

import "fmt"

// FatalError ends a command with a message meant for the user. It is
// printed as is, without usage help.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	return e.Message
}

// fatalf returns a FatalError with a formatted message.
func fatalf(format string, args ...any) error {
	return &FatalError{Message: fmt.Sprintf(format, args...)}
}

// ErrHomeNotSet is returned when a command needs a config repo, the working
// directory is not inside one and user.home is not set.
var ErrHomeNotSet = &FatalError{Message: `Home directory not set. Run "zmkgen init" to create a new config repo.`}

// HomeMissingError is returned when user.home no longer points at a config
// repo.
type HomeMissingError struct {
	Path string
}

func (e *HomeMissingError) Error() string {
	return fmt.Sprintf("Home directory %q is missing or is not a ZMK config repo.\n"+
		`Run "zmkgen config user.home=/path/to/zmk-config" if you moved it, `+
		`or run "zmkgen init" to create a new config repo.`, e.Path)
}
