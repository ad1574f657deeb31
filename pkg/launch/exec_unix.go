//go:build unix

package launch

import (
	"os"

	"golang.org/x/sys/unix"
)

// ExecSupported reports whether Exec can replace the process on this platform
const ExecSupported = true

var forwardedSignals = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGHUP, unix.SIGQUIT}

func execve(path string, argv, env []string) error {
	return unix.Exec(path, argv, env)
}
