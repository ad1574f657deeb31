// Package main provides serverboot, the container entrypoint that prepares
// the browser-automation runtime and hands the process over to the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/ay11sutra/serverboot/pkg/bootstrap"
	"github.com/ay11sutra/serverboot/pkg/config"
	"github.com/ay11sutra/serverboot/pkg/logging"
)

const version = "0.1.0"

// exitUsage is returned for invalid configuration
const exitUsage = 2

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	DryRun      bool
	ShowVersion bool
}

func main() {
	cliConfig := parseFlags()

	if cliConfig.ShowVersion {
		fmt.Printf("serverboot v%s\n", version)
		return
	}

	cfg, err := loadConfig(cliConfig.ConfigFile, os.Getenv)
	if err != nil {
		log.Printf("Configuration error: %v", err)
		os.Exit(exitUsage)
	}

	logger := logging.New("serverboot", logging.ParseLevel(cfg.Logging.Verbosity), os.Stderr)
	if cfg.Logging.File != "" {
		if fileErr := logger.OpenFile(cfg.Logging.File); fileErr != nil {
			logger.Warnf("file logging disabled: %v", fileErr)
		} else {
			logger.Verbosef("logging to %s (session %s)", logger.LogPath(), logging.GetSessionID())
		}
	}

	if cliConfig.DryRun {
		if planErr := bootstrap.New(cfg, logger).WritePlan(os.Stdout); planErr != nil {
			log.Fatalf("failed to write plan: %v", planErr)
		}
		return
	}

	// Ctrl-C interrupts setup; once the server takes over, signals are its to handle
	ctx, interrupts := watchInterrupts(context.Background(), os.Interrupt, syscall.SIGTERM)
	b := bootstrap.New(cfg, logger, bootstrap.WithHandover(interrupts.Release))

	code, err := b.Run(ctx)
	if err != nil {
		logger.Errorf("%v", err)
	}

	interrupts.Stop()
	logger.Close()
	os.Exit(code)
}

// parseFlags parses command line flags and environment variables
func parseFlags() *CLIConfig {
	cliConfig := &CLIConfig{}

	flag.StringVar(&cliConfig.ConfigFile, "config", os.Getenv(config.EnvConfig), "Path to configuration file (YAML, or set "+config.EnvConfig+")")
	flag.BoolVar(&cliConfig.DryRun, "dry-run", false, "Print the startup plan and exit without installing or launching")
	flag.BoolVar(&cliConfig.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "serverboot - install browser runtime, then start the API server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: serverboot [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %-20s Server port (default %s)\n", config.EnvPort, config.DefaultPort)
		fmt.Fprintf(os.Stderr, "  %-20s Configuration file path\n", config.EnvConfig)
		fmt.Fprintf(os.Stderr, "  %-20s Skip browser setup when true\n", config.EnvSkipSetup)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  serverboot                       # setup, then uvicorn main:app on $PORT\n")
		fmt.Fprintf(os.Stderr, "  PORT=9999 serverboot -dry-run    # show what would run\n")
		fmt.Fprintf(os.Stderr, "  serverboot -config serverboot.yaml\n")
	}

	flag.Parse()
	return cliConfig
}

// loadConfig resolves file, environment and defaults into a validated configuration
func loadConfig(path string, getenv func(string) string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
