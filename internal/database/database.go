package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/url"

	"coc-war-tracker/internal/config"
	"coc-war-tracker/internal/constants"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DSN builds the sqlite3 connection string for the archive. Connection
// settings travel in the DSN so every pooled connection gets them.
func DSN(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_foreign_keys", "on")
	q.Set("_cache_size", "-16000")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	version, _, _ := sqlite3.Version()
	logger.Info().Str("path", cfg.DBPath).Str("sqlite", version).Msg("opening war archive")

	db, err := sql.Open("sqlite3", DSN(cfg.DBPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open war archive: %w", err)
	}

	// one writer at a time; readers share the rest of the pool
	db.SetMaxOpenConns(max(cfg.ImportWorkers, 1) + constants.DBReadConns)
	db.SetMaxIdleConns(constants.DBReadConns)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := checkJournal(ctx, db); err != nil {
		db.Close()
		logger.Error().Err(err).Msg("war archive is not usable")
		return nil, err
	}
	if err := migrate(ctx, db, logger); err != nil {
		db.Close()
		logger.Error().Err(err).Msg("failed to migrate war archive")
		return nil, err
	}

	logger.Info().Msg("war archive ready")
	return db, nil
}

func checkJournal(ctx context.Context, db *sql.DB) error {
	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		return fmt.Errorf("failed to read journal mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("unexpected journal mode %q", mode)
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		logger.Debug().
			Int64("version", r.Source.Version).
			Dur("took", r.Duration).
			Msg("migration applied")
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info().Int64("schema_version", version).Int("applied", len(results)).Msg("migrations completed")
	return nil
}
