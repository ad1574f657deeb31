// Package config resolves the bootstrap configuration: built-in defaults,
// an optional YAML file, then environment overrides. It is resolved once at
// startup and never reloaded.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is used when PORT is unset or empty
	DefaultPort = "8000"
	// DefaultHost binds the server to all interfaces
	DefaultHost = "0.0.0.0"

	// EnvPort is the environment variable carrying the server port
	EnvPort = "PORT"
	// EnvConfig points at an optional YAML configuration file
	EnvConfig = "SERVERBOOT_CONFIG"
	// EnvSkipSetup disables browser setup when truthy
	EnvSkipSetup = "SKIP_BROWSER_SETUP"
)

// Backend selects how browser engines are installed
type Backend string

const (
	// BackendPython installs through the interpreter's playwright module
	BackendPython Backend = "python"
	// BackendDriver installs through the bundled playwright-go driver
	BackendDriver Backend = "driver"
)

// LaunchMode selects how control is handed to the server
type LaunchMode string

const (
	// LaunchExec replaces the bootstrap process with the server
	LaunchExec LaunchMode = "exec"
	// LaunchChild runs the server as a child and forwards signals and exit status
	LaunchChild LaunchMode = "child"
)

// Config is the complete bootstrap configuration
type Config struct {
	Setup   SetupConfig   `yaml:"setup" json:"setup"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SetupConfig controls the best-effort browser installation
type SetupConfig struct {
	Backend     Backend  `yaml:"backend" json:"backend"`
	Interpreter string   `yaml:"interpreter" json:"interpreter"`
	Browsers    []string `yaml:"browsers" json:"browsers"`
	Skip        bool     `yaml:"skip" json:"skip"`
}

// ServerConfig describes the server process that takes over
type ServerConfig struct {
	Runner string     `yaml:"runner" json:"runner"`
	App    string     `yaml:"app" json:"app"`
	Host   string     `yaml:"host" json:"host"`
	Port   string     `yaml:"port" json:"port"`
	Args   []string   `yaml:"args" json:"args"`
	Mode   LaunchMode `yaml:"mode" json:"mode"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
	// File optionally mirrors log entries to a file
	File string `yaml:"file" json:"file"`
}

// Default returns the configuration equivalent to the stock container entrypoint
func Default() *Config {
	return &Config{
		Setup: SetupConfig{
			Backend:     BackendPython,
			Interpreter: "python",
			Browsers:    []string{"chromium"},
		},
		Server: ServerConfig{
			Runner: "uvicorn",
			App:    "main:app",
			Host:   DefaultHost,
			Port:   DefaultPort,
			Mode:   LaunchExec,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays environment overrides read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if port := getenv(EnvPort); port != "" {
		c.Server.Port = port
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}

	if raw := strings.TrimSpace(getenv(EnvSkipSetup)); raw != "" {
		skip, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvSkipSetup, raw, err)
		}
		c.Setup.Skip = skip
	}

	return nil
}

// Validate checks the configuration. The port is passed to the runner
// verbatim and is not checked for being numeric.
func (c *Config) Validate() error {
	switch c.Setup.Backend {
	case BackendPython:
		if c.Setup.Interpreter == "" {
			return fmt.Errorf("setup.interpreter is required for the %s backend", BackendPython)
		}
	case BackendDriver:
	default:
		return fmt.Errorf("invalid setup.backend: %s (must be 'python' or 'driver')", c.Setup.Backend)
	}

	if len(c.Setup.Browsers) == 0 && !c.Setup.Skip {
		return fmt.Errorf("setup.browsers must name at least one browser")
	}

	if c.Server.Runner == "" {
		return fmt.Errorf("server.runner is required")
	}
	if c.Server.App == "" {
		return fmt.Errorf("server.app is required")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	if c.Server.Mode != LaunchExec && c.Server.Mode != LaunchChild {
		return fmt.Errorf("invalid server.mode: %s (must be 'exec' or 'child')", c.Server.Mode)
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// ServerArgs returns the runner arguments: app target, bind host, port, then extras.
func (c *Config) ServerArgs() []string {
	args := []string{c.Server.App, "--host", c.Server.Host, "--port", c.Server.Port}
	return append(args, c.Server.Args...)
}
