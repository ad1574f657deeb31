// Package bootstrap runs the container startup sequence: best-effort browser
// setup, port resolution, then handover to the server process.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ay11sutra/serverboot/pkg/config"
	"github.com/ay11sutra/serverboot/pkg/launch"
	"github.com/ay11sutra/serverboot/pkg/logging"
	"github.com/ay11sutra/serverboot/pkg/setup"
)

// ExitInterrupted is returned when a signal arrives before the server starts
const ExitInterrupted = 130

// Launcher hands control to the server and reports its exit status
type Launcher interface {
	Launch(cmd launch.Command) (int, error)
}

// processLauncher launches the server with exec or as a child process
type processLauncher struct {
	mode   config.LaunchMode
	logger *logging.Logger
}

// NewLauncher returns a Launcher for mode. Exec mode falls back to a child
// process on platforms without process replacement.
func NewLauncher(mode config.LaunchMode, logger *logging.Logger) Launcher {
	return &processLauncher{mode: mode, logger: logger}
}

func (l *processLauncher) Launch(cmd launch.Command) (int, error) {
	if l.mode == config.LaunchExec {
		if launch.ExecSupported {
			// Exec only returns on failure
			return 0, launch.Exec(cmd)
		}
		l.logger.Verbosef("process replacement unavailable, running server as a child process")
	}
	return launch.Child(cmd)
}

// Bootstrapper runs the startup sequence
type Bootstrapper struct {
	config    *config.Config
	logger    *logging.Logger
	installer setup.Installer
	launcher  Launcher
	handover  func()
}

// Option configures a Bootstrapper
type Option func(*Bootstrapper)

// WithInstaller overrides the installer selected from the configuration
func WithInstaller(installer setup.Installer) Option {
	return func(b *Bootstrapper) {
		b.installer = installer
	}
}

// WithLauncher overrides the process launcher
func WithLauncher(launcher Launcher) Option {
	return func(b *Bootstrapper) {
		b.launcher = launcher
	}
}

// WithHandover registers a hook that runs after setup, just before the
// final interruption check and the launch
func WithHandover(hook func()) Option {
	return func(b *Bootstrapper) {
		b.handover = hook
	}
}

// New creates a Bootstrapper for a validated configuration
func New(cfg *config.Config, logger *logging.Logger, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.installer == nil {
		b.installer = NewInstaller(cfg.Setup, logger.Named("setup"))
	}
	if b.launcher == nil {
		b.launcher = NewLauncher(cfg.Server.Mode, logger.Named("launch"))
	}
	return b
}

// NewInstaller builds the installer for the configured backend
func NewInstaller(cfg config.SetupConfig, logger *logging.Logger) setup.Installer {
	if cfg.Backend == config.BackendDriver {
		return setup.NewDriverInstaller(cfg.Browsers, logger)
	}
	return setup.NewCommandInstaller(cfg.Interpreter, cfg.Browsers, logger)
}

// ServerCommand returns the command that takes over the process
func (b *Bootstrapper) ServerCommand() launch.Command {
	return launch.Command{
		Path: b.config.Server.Runner,
		Args: b.config.ServerArgs(),
	}
}

// Run performs setup and launches the server. It returns the exit status the
// bootstrap should exit with; in exec mode a successful launch never returns.
func (b *Bootstrapper) Run(ctx context.Context) (int, error) {
	b.runSetup(ctx)

	if b.handover != nil {
		b.handover()
	}
	if err := ctx.Err(); err != nil {
		return ExitInterrupted, fmt.Errorf("interrupted before server start: %w", err)
	}

	cmd := b.ServerCommand()
	b.logger.Infof("starting server on %s:%s", b.config.Server.Host, b.config.Server.Port)
	b.logger.Verbosef("server command: %s", cmd)

	code, err := b.launcher.Launch(cmd)
	if err != nil {
		var launchErr *launch.LaunchError
		if errors.As(err, &launchErr) {
			return launchErr.ExitCode(), err
		}
		return 1, err
	}
	return code, nil
}

// runSetup never fails; its result is only logged
func (b *Bootstrapper) runSetup(ctx context.Context) *setup.Result {
	logger := b.logger.Named("setup")
	if b.config.Setup.Skip {
		logger.Infof("browser setup disabled, skipping")
		return setup.Skip("disabled by configuration")
	}
	return setup.Run(ctx, b.installer, logger)
}

// WritePlan prints what Run would do without doing it
func (b *Bootstrapper) WritePlan(w io.Writer) error {
	var plan strings.Builder

	plan.WriteString("Browser setup:\n")
	switch {
	case b.config.Setup.Skip:
		plan.WriteString("  disabled\n")
	default:
		path, err := b.installer.Available()
		if err != nil {
			fmt.Fprintf(&plan, "  %s not found, setup would be skipped\n", b.installer.Name())
		} else {
			fmt.Fprintf(&plan, "  using %s (%s)\n", b.installer.Name(), path)
		}
		fmt.Fprintf(&plan, "  1. %s\n", b.installer.Describe(setup.ModeFull))
		fmt.Fprintf(&plan, "  2. %s (only if 1 fails)\n", b.installer.Describe(setup.ModeBasic))
	}

	plan.WriteString("Server:\n")
	fmt.Fprintf(&plan, "  %s\n", b.ServerCommand())
	fmt.Fprintf(&plan, "  mode: %s\n", b.config.Server.Mode)

	_, err := io.WriteString(w, plan.String())
	return err
}
