package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txtension/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.New(), "")

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7345", cfg.ListenAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.LogColor)
	assert.Equal(t, "file", cfg.Keyring.Backend)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TX_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("TX_KEYRING_BACKEND", "NONE")
	t.Setenv("TX_LOG_COLOR", "true")

	cfg, err := config.Load(config.New(), "")

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, "none", cfg.Keyring.Backend)
	assert.True(t, cfg.LogColor)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txtension.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: /tmp/tx.db\nkeyring:\n  backend: system\n"), 0o600))

	cfg, err := config.Load(config.New(), path)

	require.NoError(t, err)
	assert.Equal(t, "/tmp/tx.db", cfg.DBPath)
	assert.Equal(t, "system", cfg.Keyring.Backend)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("TX_KEYRING_BACKEND", "vault")

	_, err := config.Load(config.New(), "")
	assert.ErrorContains(t, err, "unknown keyring backend")
}
