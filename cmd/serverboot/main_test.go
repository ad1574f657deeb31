package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ay11sutra/serverboot/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig("", func(string) string { return "" })
		require.NoError(t, err)
		assert.Equal(t, "8000", cfg.Server.Port)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	})

	t.Run("env port", func(t *testing.T) {
		env := map[string]string{config.EnvPort: "9999"}
		cfg, err := loadConfig("", func(k string) string { return env[k] })
		require.NoError(t, err)
		assert.Equal(t, "9999", cfg.Server.Port)
	})

	t.Run("invalid file configuration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "serverboot.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: fork\n"), 0600))

		_, err := loadConfig(path, func(string) string { return "" })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("invalid env", func(t *testing.T) {
		env := map[string]string{config.EnvSkipSetup: "maybe"}
		_, err := loadConfig("", func(k string) string { return env[k] })
		assert.Error(t, err)
	})
}
