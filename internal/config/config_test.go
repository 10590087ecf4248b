package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATA_FILE", "BACKUP_DIR", "BACKUP_INTERVAL", "BACKUP_KEEP", "AUTH_FILE",
		"LOG_LEVEL", "TIMEZONE", "STORE_MAX_FAILURES", "STORE_BREAKER_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "heatmap_data.json", cfg.DataFile)
	assert.Equal(t, "backup", cfg.BackupDir)
	assert.Equal(t, 24*time.Hour, cfg.BackupInterval)
	assert.Equal(t, 7, cfg.BackupKeep)
	assert.Empty(t, cfg.AuthFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, uint32(3), cfg.StoreMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.StoreBreakerTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_FILE", "/var/lib/heatmap/data.json")
	t.Setenv("BACKUP_INTERVAL", "0")
	t.Setenv("BACKUP_KEEP", "not-a-number")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("STORE_MAX_FAILURES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/var/lib/heatmap/data.json", cfg.DataFile)
	assert.Zero(t, cfg.BackupInterval)
	assert.Equal(t, 7, cfg.BackupKeep, "unparsable integers fall back to the default")
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, uint32(5), cfg.StoreMaxFailures)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "backup interval", key: "BACKUP_INTERVAL", value: "daily"},
		{name: "timezone", key: "TIMEZONE", value: "Mars/Olympus_Mons"},
		{name: "breaker failures", key: "STORE_MAX_FAILURES", value: "0"},
		{name: "breaker timeout", key: "STORE_BREAKER_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
