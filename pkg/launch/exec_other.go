//go:build !unix

package launch

import "os"

// ExecSupported reports whether Exec can replace the process on this platform
const ExecSupported = false

var forwardedSignals = []os.Signal{os.Interrupt}

func execve(string, []string, []string) error {
	return ErrExecUnsupported
}
