package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"spellinghive/internal/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies every pending migration for the connection's dialect
func (db *DB) RunMigrations(ctx context.Context, log *logger.Logger) error {
	dir, err := fs.Sub(migrationsFS, "migrations/"+db.Dialect.MigrationsSubdir())
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(db.Dialect.GooseDialect(), db.DB.DB, dir)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	for _, r := range results {
		log.Info("Migration completed", "version", r.Source.Version, "file", r.Source.Path, "duration", r.Duration)
	}
	return nil
}
