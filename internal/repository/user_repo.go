package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spellinghive/internal/database"
	"spellinghive/internal/models"
)

// UserRepository handles database operations for learner profiles
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, name, grade, guardian_email, created_at, last_active"

// Create inserts a new profile; CreatedAt and LastActive are set to now
func (r *UserRepository) Create(ctx context.Context, user *models.UserProfile) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO users (id, name, grade, guardian_email, created_at, last_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		user.ID, user.Name, user.Grade, user.GuardianEmail, now, now)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	user.LastActive = now
	return nil
}

// GetByID retrieves a profile, or nil when it does not exist
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	user := &models.UserProfile{}
	err := r.db.Querier(ctx).GetContext(ctx, user, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List returns all profiles, newest first
func (r *UserRepository) List(ctx context.Context) ([]models.UserProfile, error) {
	users := []models.UserProfile{}
	err := r.db.Querier(ctx).SelectContext(ctx, &users,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// TouchLastActive refreshes the last-active timestamp
func (r *UserRepository) TouchLastActive(ctx context.Context, id string) error {
	_, err := r.db.Querier(ctx).ExecContext(ctx,
		"UPDATE users SET last_active = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}
