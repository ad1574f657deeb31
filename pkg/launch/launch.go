// Package launch hands the process over to the server.
//
// Exec replaces the current process image, so the server inherits the PID,
// stdio and signals and its exit status is the bootstrap's exit status. Where
// exec is unavailable, Child runs the server as a child process, forwards
// termination signals to it and returns its exit code for the caller to exit
// with.
package launch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
)

// Exit codes for failures to start the server, matching the shell's exec
const (
	ExitNotExecutable = 126
	ExitNotFound      = 127
)

// ErrExecUnsupported is returned by Exec on platforms without process replacement
var ErrExecUnsupported = errors.New("process replacement is not supported on this platform")

// Command describes the server process
type Command struct {
	// Path is the runner executable, resolved on PATH when it has no separator
	Path string
	Args []string

	// Env defaults to the current environment when nil
	Env []string

	// Stdio default to the bootstrap's own streams. Exec always inherits them.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

func (c Command) environ() []string {
	if c.Env != nil {
		return c.Env
	}
	return os.Environ()
}

// LaunchError means the server process could not be started
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start server %q: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ExitCode maps the failure to the status a shell would report
func (e *LaunchError) ExitCode() int {
	switch {
	case errors.Is(e.Err, exec.ErrNotFound), errors.Is(e.Err, fs.ErrNotExist):
		return ExitNotFound
	case errors.Is(e.Err, fs.ErrPermission):
		return ExitNotExecutable
	default:
		return 1
	}
}

// resolve finds the runner executable
func resolve(cmd Command) (string, error) {
	path, err := exec.LookPath(cmd.Path)
	if err != nil {
		return "", &LaunchError{Command: cmd.String(), Err: err}
	}
	return path, nil
}

// Exec replaces the current process with cmd. It returns only on failure.
func Exec(cmd Command) error {
	if !ExecSupported {
		return &LaunchError{Command: cmd.String(), Err: ErrExecUnsupported}
	}

	path, err := resolve(cmd)
	if err != nil {
		return err
	}

	argv := append([]string{cmd.Path}, cmd.Args...)
	if err := execve(path, argv, cmd.environ()); err != nil {
		return &LaunchError{Command: cmd.String(), Err: err}
	}
	return nil
}

// Child runs cmd as a child process, forwarding termination signals to it,
// and returns its exit code once it exits. The error is non-nil only when the
// child could not be started.
func Child(cmd Command) (int, error) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, forwardedSignals...)
	defer signal.Stop(signals)

	return runChild(cmd, signals)
}

func runChild(cmd Command, signals <-chan os.Signal) (int, error) {
	path, err := resolve(cmd)
	if err != nil {
		return 0, err
	}

	child := exec.Command(path, cmd.Args...)
	child.Args[0] = cmd.Path
	child.Env = cmd.environ()
	child.Stdin, child.Stdout, child.Stderr = os.Stdin, os.Stdout, os.Stderr
	if cmd.Stdin != nil {
		child.Stdin = cmd.Stdin
	}
	if cmd.Stdout != nil {
		child.Stdout = cmd.Stdout
	}
	if cmd.Stderr != nil {
		child.Stderr = cmd.Stderr
	}

	if err := child.Start(); err != nil {
		return 0, &LaunchError{Command: cmd.String(), Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- child.Wait()
	}()

	for {
		select {
		case sig := <-signals:
			// The child may already be exiting
			//nolint:errcheck
			child.Process.Signal(sig)
		case err := <-done:
			return exitCode(err), nil
		}
	}
}

// exitCode converts a Wait error to a process exit status. A child killed by
// a signal reports 128+signo, as a shell would.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 1
	}

	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return 1
}
