package setup

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ay11sutra/serverboot/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// driver is the part of playwright.PlaywrightDriver the installer uses
type driver interface {
	DownloadDriver() error
	Command(arg ...string) *exec.Cmd
}

// DriverInstaller installs browsers with the Playwright driver bundled by
// playwright-go, so no interpreter is required.
type DriverInstaller struct {
	browsers  []string
	logger    *logging.Logger
	newDriver func(opts *playwright.RunOptions) (driver, error)
}

// NewDriverInstaller creates a driver-backed installer
func NewDriverInstaller(browsers []string, logger *logging.Logger) *DriverInstaller {
	return &DriverInstaller{
		browsers: browsers,
		logger:   logger,
		newDriver: func(opts *playwright.RunOptions) (driver, error) {
			d, err := playwright.NewDriver(opts)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
	}
}

// Name returns the installer name
func (d *DriverInstaller) Name() string {
	return "playwright-go driver"
}

// Available always succeeds; the driver is downloaded on first install
func (d *DriverInstaller) Available() (string, error) {
	return "bundled", nil
}

// Args returns the driver CLI arguments for mode
func (d *DriverInstaller) Args(mode Mode) []string {
	args := []string{"install"}
	if mode == ModeFull {
		args = append(args, "--with-deps")
	}
	return append(args, d.browsers...)
}

// Describe renders the install for mode
func (d *DriverInstaller) Describe(mode Mode) string {
	return d.Name() + " " + strings.Join(d.Args(mode), " ")
}

// Install downloads the driver if needed, then runs its install command
func (d *DriverInstaller) Install(ctx context.Context, mode Mode) error {
	if err := ctx.Err(); err != nil {
		return &InstallError{Mode: mode, Command: d.Describe(mode), ExitCode: -1, Err: err}
	}

	out := d.logger.Writer(logging.LevelVerbose)
	defer out.Close()

	drv, err := d.newDriver(&playwright.RunOptions{
		Browsers: d.browsers,
		Verbose:  d.logger.Enabled(logging.LevelVerbose),
		Stdout:   out,
		Stderr:   out,
	})
	if err != nil {
		return &InstallError{Mode: mode, Command: d.Describe(mode), ExitCode: -1, Err: fmt.Errorf("failed to create playwright driver: %w", err)}
	}

	// The download itself cannot be interrupted
	if err := drv.DownloadDriver(); err != nil {
		return &InstallError{Mode: mode, Command: d.Describe(mode), ExitCode: -1, Err: fmt.Errorf("failed to download playwright driver: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return &InstallError{Mode: mode, Command: d.Describe(mode), ExitCode: -1, Err: err}
	}

	return runInstaller(ctx, drv.Command(d.Args(mode)...), mode, d.Describe(mode), d.logger)
}
