package logger

import (
	"io"
	"os"

	"coc-war-tracker/internal/config"

	"github.com/rs/zerolog"
)

// New logs to stderr so that command output on stdout stays clean.
func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := SetLevel(level)

	logger.Debug().
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Int("import_workers", cfg.ImportWorkers).
		Str("clan_tag", cfg.ClanTag).
		Msg("configuration loaded")

	return logger
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	return NewWriter(os.Stderr, level)
}

func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(level)
}
