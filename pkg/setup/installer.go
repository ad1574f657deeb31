package setup

import (
	"context"
	"errors"
	"fmt"
)

// Mode selects how much a setup attempt installs
type Mode string

const (
	// ModeFull installs browser engines and their operating-system dependencies
	ModeFull Mode = "full"
	// ModeBasic installs browser engines only
	ModeBasic Mode = "basic"
)

// ErrInterpreterNotFound is returned by Available when the interpreter is not on PATH
var ErrInterpreterNotFound = errors.New("interpreter not found")

// Installer installs browser engines for the server's automation runtime
type Installer interface {
	// Name identifies the installer in log output
	Name() string

	// Available reports where the installer's tooling was found, or an error
	// wrapping ErrInterpreterNotFound when it is missing
	Available() (string, error)

	// Install performs one setup attempt in the given mode
	Install(ctx context.Context, mode Mode) error

	// Describe renders what Install would run for mode
	Describe(mode Mode) string
}

// InstallError represents a failed setup attempt
type InstallError struct {
	Mode     Mode
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *InstallError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s setup failed (exit code %d): %v", e.Mode, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s setup failed: %v", e.Mode, e.Err)
}

// Unwrap returns the underlying error
func (e *InstallError) Unwrap() error {
	return e.Err
}
