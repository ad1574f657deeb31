package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/ay11sutra/serverboot/pkg/logging"
)

const (
	// maxErrorOutput bounds how much installer output is kept on an InstallError
	maxErrorOutput = 4096

	// pipeDrainDelay bounds how long Wait waits for output after the installer
	// exits, in case it left children holding the pipes
	pipeDrainDelay = 2 * time.Second
)

// runInstaller runs cmd to completion, streaming its output to the logger.
// The process is killed when ctx is done.
func runInstaller(ctx context.Context, cmd *exec.Cmd, mode Mode, command string, logger *logging.Logger) error {
	logger.Verbosef("running %s", command)

	logWriter := logger.Writer(logging.LevelVerbose)
	defer logWriter.Close()
	output := newTailWriter(maxErrorOutput)

	// One writer for both streams keeps lines in the order the installer wrote them
	sink := io.MultiWriter(logWriter, output)
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.WaitDelay = pipeDrainDelay

	if err := cmd.Start(); err != nil {
		return &InstallError{Mode: mode, Command: command, ExitCode: -1, Err: err}
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			// The process may have already exited
			//nolint:errcheck
			cmd.Process.Kill()
		case <-done:
		}
	}()

	err := cmd.Wait()
	close(done)

	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %v", ctxErr, err)
	}

	return &InstallError{
		Mode:     mode,
		Command:  command,
		ExitCode: exitCode,
		Output:   output.String(),
		Err:      err,
	}
}

// tailWriter keeps only the last max bytes written to it
type tailWriter struct {
	max int
	buf []byte
}

func newTailWriter(max int) *tailWriter {
	return &tailWriter{max: max, buf: make([]byte, 0, max)}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n >= w.max {
		w.buf = append(w.buf[:0], p[n-w.max:]...)
		return n, nil
	}

	if over := len(w.buf) + n - w.max; over > 0 {
		w.buf = append(w.buf[:0], w.buf[over:]...)
	}
	w.buf = append(w.buf, p...)
	return n, nil
}

func (w *tailWriter) String() string {
	return string(w.buf)
}
