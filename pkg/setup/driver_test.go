package setup

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/ay11sutra/serverboot/pkg/logging"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver records driver CLI invocations and runs command in their place
type fakeDriver struct {
	downloadErr error
	downloads   int
	args        [][]string
	command     func(args ...string) *exec.Cmd
}

func (f *fakeDriver) DownloadDriver() error {
	f.downloads++
	return f.downloadErr
}

func (f *fakeDriver) Command(args ...string) *exec.Cmd {
	f.args = append(f.args, args)
	return f.command(args...)
}

func newTestDriverInstaller(browsers []string, level logging.Level, fake *fakeDriver) (*DriverInstaller, *playwright.RunOptions) {
	installer := NewDriverInstaller(browsers, logging.New("setup", level, &bytes.Buffer{}))
	opts := &playwright.RunOptions{}
	installer.newDriver = func(o *playwright.RunOptions) (driver, error) {
		*opts = *o
		return fake, nil
	}
	return installer, opts
}

func TestDriverInstaller_Available(t *testing.T) {
	installer := NewDriverInstaller([]string{"chromium"}, logging.New("setup", logging.LevelQuiet, &bytes.Buffer{}))

	_, err := installer.Available()
	assert.NoError(t, err)
	assert.Equal(t, "playwright-go driver", installer.Name())
}

func TestDriverInstaller_Args(t *testing.T) {
	installer := NewDriverInstaller([]string{"chromium", "firefox"}, logging.New("setup", logging.LevelQuiet, &bytes.Buffer{}))

	assert.Equal(t, []string{"install", "--with-deps", "chromium", "firefox"}, installer.Args(ModeFull))
	assert.Equal(t, []string{"install", "chromium", "firefox"}, installer.Args(ModeBasic))
	assert.Equal(t, "playwright-go driver install --with-deps chromium firefox", installer.Describe(ModeFull))
	assert.Equal(t, "playwright-go driver install chromium firefox", installer.Describe(ModeBasic))
}

func TestDriverInstaller_NewDriverError(t *testing.T) {
	installer := NewDriverInstaller([]string{"chromium"}, logging.New("setup", logging.LevelQuiet, &bytes.Buffer{}))
	cause := errors.New("unsupported platform")
	installer.newDriver = func(*playwright.RunOptions) (driver, error) {
		return nil, cause
	}

	err := installer.Install(context.Background(), ModeBasic)

	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, ModeBasic, installErr.Mode)
	assert.ErrorIs(t, err, cause)
}

func TestDriverInstaller_DownloadError(t *testing.T) {
	cause := errors.New("could not download driver")
	fake := &fakeDriver{downloadErr: cause}
	installer, _ := newTestDriverInstaller([]string{"chromium"}, logging.LevelQuiet, fake)

	err := installer.Install(context.Background(), ModeFull)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, fake.downloads)
	assert.Empty(t, fake.args)
}

func TestDriverInstaller_CancelledContext(t *testing.T) {
	fake := &fakeDriver{}
	installer, _ := newTestDriverInstaller([]string{"chromium"}, logging.LevelQuiet, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := installer.Install(ctx, ModeBasic)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fake.downloads)
	assert.Empty(t, fake.args)
}
