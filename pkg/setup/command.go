package setup

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ay11sutra/serverboot/pkg/logging"
)

// CommandInstaller installs browsers by running the interpreter's playwright
// module, e.g. `python -m playwright install --with-deps chromium`.
type CommandInstaller struct {
	interpreter string
	browsers    []string
	logger      *logging.Logger
	lookPath    func(string) (string, error)
}

// NewCommandInstaller creates an installer driven by interpreter
func NewCommandInstaller(interpreter string, browsers []string, logger *logging.Logger) *CommandInstaller {
	return &CommandInstaller{
		interpreter: interpreter,
		browsers:    browsers,
		logger:      logger,
		lookPath:    exec.LookPath,
	}
}

// Name returns the interpreter name
func (i *CommandInstaller) Name() string {
	return i.interpreter
}

// Available resolves the interpreter on PATH
func (i *CommandInstaller) Available() (string, error) {
	path, err := i.lookPath(i.interpreter)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInterpreterNotFound, i.interpreter, err)
	}
	return path, nil
}

// Args returns the interpreter arguments for mode
func (i *CommandInstaller) Args(mode Mode) []string {
	args := []string{"-m", "playwright", "install"}
	if mode == ModeFull {
		args = append(args, "--with-deps")
	}
	return append(args, i.browsers...)
}

// Describe renders the command line for mode
func (i *CommandInstaller) Describe(mode Mode) string {
	return i.interpreter + " " + strings.Join(i.Args(mode), " ")
}

// Install runs one installation attempt, streaming its output to the logger
func (i *CommandInstaller) Install(ctx context.Context, mode Mode) error {
	path, err := i.Available()
	if err != nil {
		return &InstallError{Mode: mode, Command: i.interpreter, ExitCode: -1, Err: err}
	}

	cmd := exec.Command(path, i.Args(mode)...)
	return runInstaller(ctx, cmd, mode, i.Describe(mode), i.logger)
}
