// Package setup performs the best-effort browser installation that runs before
// the server starts.
//
// Setup is two sequential attempts: a full install (browsers plus their
// operating-system dependencies) and, only if that fails, a basic install
// (browsers only). Neither outcome stops the bootstrap. Run records what
// happened in a Result and never returns an error.
package setup

import (
	"context"
	"errors"
	"time"

	"github.com/ay11sutra/serverboot/pkg/logging"
)

// Attempt records one installation attempt
type Attempt struct {
	Mode     Mode
	Err      error
	Duration time.Duration
}

// Result describes the outcome of the setup phase
type Result struct {
	// Skipped is true when no attempt was made
	Skipped    bool
	SkipReason string

	Attempts []Attempt
}

// Installed returns the mode of the successful attempt, if any
func (r *Result) Installed() (Mode, bool) {
	for _, a := range r.Attempts {
		if a.Err == nil {
			return a.Mode, true
		}
	}
	return "", false
}

// Skip returns a Result for setup that was deliberately not run
func Skip(reason string) *Result {
	return &Result{Skipped: true, SkipReason: reason}
}

// Run checks for the installer's tooling and, when present, tries a full
// install followed by a basic install if the full one fails.
func Run(ctx context.Context, installer Installer, logger *logging.Logger) *Result {
	path, err := installer.Available()
	if err != nil {
		logger.Warnf("%s not found, skipping browser setup", installer.Name())
		logger.Debugf("lookup error: %v", err)
		return Skip(err.Error())
	}

	logger.Infof("%s found at %s, installing browsers", installer.Name(), path)

	result := &Result{}
	for _, mode := range []Mode{ModeFull, ModeBasic} {
		if ctx.Err() != nil {
			logger.Warnf("browser setup interrupted")
			return result
		}

		start := time.Now()
		err := installer.Install(ctx, mode)
		result.Attempts = append(result.Attempts, Attempt{
			Mode:     mode,
			Err:      err,
			Duration: time.Since(start),
		})

		if err == nil {
			logger.Infof("%s browser setup complete in %s", mode, time.Since(start).Round(time.Millisecond))
			return result
		}

		logger.Warnf("%v", err)
		var installErr *InstallError
		if errors.As(err, &installErr) && installErr.Output != "" {
			logger.Debugf("installer output:\n%s", installErr.Output)
		}
	}

	logger.Warnf("browser setup failed, starting server without it")
	return result
}
