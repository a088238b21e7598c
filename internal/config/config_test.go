package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DBPath:        "wars.db",
		LogLevel:      "info",
		ImportWorkers: 4,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("IMPORT_WORKERS", "")
	t.Setenv("CLAN_TAG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "wars.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.ImportWorkers)
	assert.Empty(t, cfg.ClanTag)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/archive.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("IMPORT_WORKERS", "8")
	t.Setenv("METRICS_FILE", "/tmp/warlog.prom")
	t.Setenv("CLAN_TAG", "#A1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/archive.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.ImportWorkers)
	assert.Equal(t, "/tmp/warlog.prom", cfg.MetricsFile)
	assert.Equal(t, "#A1", cfg.ClanTag)
}

func TestLoad_BadWorkers(t *testing.T) {
	t.Setenv("IMPORT_WORKERS", "many")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.LogLevel = "verbose"
	assert.Error(t, c.Validate())
}

func TestValidate_WorkersOutOfRange(t *testing.T) {
	c := validConfig()
	c.ImportWorkers = 0
	assert.Error(t, c.Validate())

	c.ImportWorkers = 65
	assert.Error(t, c.Validate())
}

func TestValidate_EmptyDBPath(t *testing.T) {
	c := validConfig()
	c.DBPath = ""
	assert.Error(t, c.Validate())
}
