package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spellinghive/internal/database"
	"spellinghive/internal/models"
)

// AvatarRepository persists the gamified avatar of each learner
type AvatarRepository struct {
	db *database.DB
}

// NewAvatarRepository creates a new avatar repository
func NewAvatarRepository(db *database.DB) *AvatarRepository {
	return &AvatarRepository{db: db}
}

type avatarRow struct {
	UserID       string    `db:"user_id"`
	TotalXP      int       `db:"total_xp"`
	CurrentLevel int       `db:"current_level"`
	Appearance   string    `db:"appearance"`
	Accessories  string    `db:"accessories"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row avatarRow) toModel() (*models.AvatarState, error) {
	accessories := []string{}
	if row.Accessories != "" {
		if err := json.Unmarshal([]byte(row.Accessories), &accessories); err != nil {
			return nil, fmt.Errorf("failed to decode accessories: %w", err)
		}
	}
	return &models.AvatarState{
		UserID:      row.UserID,
		Experience:  row.TotalXP,
		Level:       row.CurrentLevel,
		Appearance:  models.Appearance(row.Appearance),
		Accessories: accessories,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

// Initialize creates the starting avatar, leaving an existing one untouched
func (r *AvatarRepository) Initialize(ctx context.Context, userID string) error {
	q := r.db.Querier(ctx)
	if _, err := q.ExecContext(ctx, q.GetDialect().InsertAvatarIfAbsentQuery(), userID, string(models.AppearanceHatchling)); err != nil {
		return fmt.Errorf("failed to initialize avatar: %w", err)
	}
	return nil
}

// Get retrieves the avatar, or nil when the learner has none
func (r *AvatarRepository) Get(ctx context.Context, userID string) (*models.AvatarState, error) {
	var row avatarRow
	err := r.db.Querier(ctx).GetContext(ctx, &row, `
		SELECT user_id, total_xp, current_level, appearance, accessories, updated_at
		FROM avatar_state WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get avatar: %w", err)
	}
	return row.toModel()
}

// AddExperience atomically adds gained to the stored total and returns the new total
func (r *AvatarRepository) AddExperience(ctx context.Context, userID string, gained int) (int, error) {
	q := r.db.Querier(ctx)
	_, err := q.ExecContext(ctx,
		"UPDATE avatar_state SET total_xp = total_xp + ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?",
		gained, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to add experience: %w", err)
	}

	var total int
	err = q.GetContext(ctx, &total, "SELECT total_xp FROM avatar_state WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("avatar for %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read experience: %w", err)
	}
	return total, nil
}

// UpdateTier stores the level and appearance derived from the current total
func (r *AvatarRepository) UpdateTier(ctx context.Context, userID string, level int, appearance models.Appearance) error {
	_, err := r.db.Querier(ctx).ExecContext(ctx,
		"UPDATE avatar_state SET current_level = ?, appearance = ? WHERE user_id = ?",
		level, string(appearance), userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar tier: %w", err)
	}
	return nil
}

// ReplaceAccessories overwrites the accessory set
func (r *AvatarRepository) ReplaceAccessories(ctx context.Context, userID string, accessories []string) error {
	if accessories == nil {
		accessories = []string{}
	}
	encoded, err := json.Marshal(accessories)
	if err != nil {
		return fmt.Errorf("failed to encode accessories: %w", err)
	}

	_, err = r.db.Querier(ctx).ExecContext(ctx,
		"UPDATE avatar_state SET accessories = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?",
		string(encoded), userID)
	if err != nil {
		return fmt.Errorf("failed to update accessories: %w", err)
	}
	return nil
}
