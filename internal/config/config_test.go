package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the duration of the test, like testing.T.Chdir
// (which needs Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0, cfg.Engine.Workers)
	assert.Equal(t, 40, cfg.Engine.ICP.MinScore)
	assert.Contains(t, cfg.Engine.DisposableDomains, "mailinator.com")
	assert.Contains(t, cfg.Engine.RolePrefixes, "noreply")
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LEADCHECK_STORE_DRIVER", "postgres")
	t.Setenv("LEADCHECK_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
}

func TestInitLogger_ConsoleFormat(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
