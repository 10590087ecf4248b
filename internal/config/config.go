package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// DataFile is the JSON key-value file holding one record per year.
	DataFile string

	// Periodic snapshots of DataFile.
	BackupDir      string
	BackupInterval time.Duration // 0 disables backups
	BackupKeep     int           // snapshots to retain (0 = unlimited)

	// AuthFile holds "username:argon2id-hash". Empty leaves editing unprotected.
	AuthFile string

	LogLevel string

	// Location decides which calendar day is "today".
	Location *time.Location

	// Write circuit breaker.
	StoreMaxFailures    uint32
	StoreBreakerTimeout time.Duration

	// EnvFileErr is the result of loading .env; reported by the caller once logging is up.
	EnvFileErr error
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfg.EnvFileErr = godotenv.Load()

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DataFile = getenvDefault("DATA_FILE", "heatmap_data.json")
	cfg.BackupDir = getenvDefault("BACKUP_DIR", "backup")
	cfg.AuthFile = os.Getenv("AUTH_FILE")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	interval, err := time.ParseDuration(getenvDefault("BACKUP_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKUP_INTERVAL: %w", err)
	}
	cfg.BackupInterval = interval
	cfg.BackupKeep = getenvInt("BACKUP_KEEP", 7)

	loc, err := time.LoadLocation(getenvDefault("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	maxFailures := getenvInt("STORE_MAX_FAILURES", 3)
	if maxFailures <= 0 {
		return nil, fmt.Errorf("invalid STORE_MAX_FAILURES: must be positive, got %d", maxFailures)
	}
	cfg.StoreMaxFailures = uint32(maxFailures)

	timeout, err := time.ParseDuration(getenvDefault("STORE_BREAKER_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_BREAKER_TIMEOUT: %w", err)
	}
	cfg.StoreBreakerTimeout = timeout

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
