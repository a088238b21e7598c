package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
)

type Config struct {
	DBPath        string `validate:"required"`
	LogLevel      string `validate:"required|in:trace,debug,info,warn,error"`
	ImportWorkers int    `validate:"required|min:1|max:64"`
	MetricsFile   string
	ClanTag       string
}

func Load() (*Config, error) {
	// a missing .env is fine, the environment and defaults still apply
	_ = godotenv.Load()

	workers, err := strconv.Atoi(getEnv("IMPORT_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("IMPORT_WORKERS must be a number: %w", err)
	}

	cfg := &Config{
		DBPath:        getEnv("DB_PATH", "wars.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ImportWorkers: workers,
		MetricsFile:   getEnv("METRICS_FILE", ""),
		ClanTag:       getEnv("CLAN_TAG", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid configuration: %w", v.Errors)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
