// Package testhelper opens migrated throwaway databases for tests.
package testhelper

import (
	"context"
	"path/filepath"
	"testing"

	"spellinghive/internal/database"
	"spellinghive/internal/logger"
)

// NewSQLite opens a migrated SQLite database in t.TempDir() and closes it on cleanup.
func NewSQLite(t *testing.T) *database.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "hive.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(ctx, logger.NewNop()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

// InsertUser adds a bare profile row so foreign keys are satisfied.
func InsertUser(t *testing.T, db *database.DB, id string, grade int) {
	t.Helper()

	_, err := db.ExecContext(context.Background(),
		"INSERT INTO users (id, name, grade) VALUES (?, ?, ?)", id, "Test "+id, grade)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
}
