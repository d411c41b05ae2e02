package repository

import (
	"context"
	"fmt"

	"spellinghive/internal/database"
	"spellinghive/internal/models"
)

// DailyPracticeRepository is the date-indexed practice log behind streaks
type DailyPracticeRepository struct {
	db *database.DB
}

// NewDailyPracticeRepository creates a new daily practice repository
func NewDailyPracticeRepository(db *database.DB) *DailyPracticeRepository {
	return &DailyPracticeRepository{db: db}
}

const practiceColumns = "user_id, practice_date, minutes_practiced, activities_completed"

// AccumulatePractice adds minutes and activities to a day in one statement
func (r *DailyPracticeRepository) AccumulatePractice(ctx context.Context, userID, date string, minutes, activities int) error {
	q := r.db.Querier(ctx)
	if _, err := q.ExecContext(ctx, q.GetDialect().AccumulatePracticeQuery(), userID, date, minutes, activities); err != nil {
		return fmt.Errorf("failed to record practice: %w", err)
	}
	return nil
}

// PracticeDaysOnOrBefore lists practice days up to and including date, newest first
func (r *DailyPracticeRepository) PracticeDaysOnOrBefore(ctx context.Context, userID, date string) ([]models.DailyPractice, error) {
	days := []models.DailyPractice{}
	err := r.db.Querier(ctx).SelectContext(ctx, &days,
		"SELECT "+practiceColumns+" FROM daily_practice WHERE user_id = ? AND practice_date <= ? ORDER BY practice_date DESC",
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get practice days: %w", err)
	}
	return days, nil
}

// RecentPracticeDays returns up to limit practice days, newest first
func (r *DailyPracticeRepository) RecentPracticeDays(ctx context.Context, userID string, limit int) ([]models.DailyPractice, error) {
	days := []models.DailyPractice{}
	err := r.db.Querier(ctx).SelectContext(ctx, &days,
		"SELECT "+practiceColumns+" FROM daily_practice WHERE user_id = ? ORDER BY practice_date DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent practice days: %w", err)
	}
	return days, nil
}
