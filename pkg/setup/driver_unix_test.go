//go:build unix

package setup

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/ay11sutra/serverboot/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shellDriver returns a fake driver whose CLI is the shell script body
func shellDriver(body string) *fakeDriver {
	return &fakeDriver{
		command: func(args ...string) *exec.Cmd {
			return exec.Command("sh", append([]string{"-c", body, "driver"}, args...)...)
		},
	}
}

func TestDriverInstaller_FullModeInstallsDeps(t *testing.T) {
	fake := shellDriver("exit 0")
	installer, opts := newTestDriverInstaller([]string{"chromium", "webkit"}, logging.LevelVerbose, fake)

	require.NoError(t, installer.Install(context.Background(), ModeFull))

	assert.Equal(t, 1, fake.downloads)
	assert.Equal(t, [][]string{{"install", "--with-deps", "chromium", "webkit"}}, fake.args)
	assert.Equal(t, []string{"chromium", "webkit"}, opts.Browsers)
	assert.True(t, opts.Verbose)
	assert.NotNil(t, opts.Stdout)
	assert.NotNil(t, opts.Stderr)
}

func TestDriverInstaller_BasicMode(t *testing.T) {
	fake := shellDriver("exit 0")
	installer, _ := newTestDriverInstaller([]string{"chromium"}, logging.LevelQuiet, fake)

	require.NoError(t, installer.Install(context.Background(), ModeBasic))
	assert.Equal(t, [][]string{{"install", "chromium"}}, fake.args)
}

func TestDriverInstaller_InstallFailure(t *testing.T) {
	fake := shellDriver(`echo "Host system is missing dependencies" >&2; exit 1`)
	installer, _ := newTestDriverInstaller([]string{"chromium"}, logging.LevelQuiet, fake)

	err := installer.Install(context.Background(), ModeFull)

	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, 1, installErr.ExitCode)
	assert.Contains(t, installErr.Output, "missing dependencies")
	assert.Equal(t, "playwright-go driver install --with-deps chromium", installErr.Command)
}

func TestDriverInstaller_CancelKillsInstall(t *testing.T) {
	fake := shellDriver("exec sleep 30")
	installer, _ := newTestDriverInstaller([]string{"chromium"}, logging.LevelQuiet, fake)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := installer.Install(ctx, ModeBasic)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}
