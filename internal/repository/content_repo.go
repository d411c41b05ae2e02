package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spellinghive/internal/database"
	"spellinghive/internal/models"
)

// ContentRepository is the SQL-backed content cache store
type ContentRepository struct {
	db *database.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *database.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Load returns the cached pack for a key; ok is false on a miss
func (r *ContentRepository) Load(ctx context.Context, kind models.ContentKind, grade, level int) ([]byte, bool, error) {
	var content string
	err := r.db.Querier(ctx).GetContext(ctx, &content,
		"SELECT content_json FROM content_cache WHERE content_type = ? AND grade = ? AND level = ?",
		string(kind), grade, level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cached content: %w", err)
	}
	return []byte(content), true, nil
}

// Save stores a pack; a later write for the same key replaces it
func (r *ContentRepository) Save(ctx context.Context, kind models.ContentKind, grade, level int, data []byte) error {
	q := r.db.Querier(ctx)
	if _, err := q.ExecContext(ctx, q.GetDialect().UpsertContentQuery(), string(kind), grade, level, string(data)); err != nil {
		return fmt.Errorf("failed to save cached content: %w", err)
	}
	return nil
}

// List returns every cached entry for a grade, ordered by kind and level
func (r *ContentRepository) List(ctx context.Context, grade int) ([]models.ContentEntry, error) {
	entries := []models.ContentEntry{}
	err := r.db.Querier(ctx).SelectContext(ctx, &entries,
		"SELECT content_type, grade, level, content_json, created_at FROM content_cache WHERE grade = ? ORDER BY content_type, level",
		grade)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached content: %w", err)
	}
	return entries, nil
}
