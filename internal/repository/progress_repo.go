package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"spellinghive/internal/database"
	"spellinghive/internal/models"
)

// ProgressRepository stores completed spelling and reading exercises
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// HistoryFilter narrows a history query. Zero Grade or Level means any.
type HistoryFilter struct {
	UserID     string
	Grade      int
	Level      int
	PassedOnly bool
	Limit      uint64
}

func (f HistoryFilter) apply(b sq.SelectBuilder) sq.SelectBuilder {
	b = b.Where(sq.Eq{"user_id": f.UserID})
	if f.Grade > 0 {
		b = b.Where(sq.Eq{"grade": f.Grade})
	}
	if f.Level > 0 {
		b = b.Where(sq.Eq{"level": f.Level})
	}
	if f.PassedOnly {
		b = b.Where(sq.Eq{"passed": true})
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}
	return b
}

// InsertSpelling appends a spelling result and sets its ID
func (r *ProgressRepository) InsertSpelling(ctx context.Context, p *models.SpellingProgress) error {
	query := `
		INSERT INTO spelling_progress (user_id, grade, level, difficulty, mode, score, total_words, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.Querier(ctx).ExecReturningID(ctx, query,
		p.UserID, p.Grade, p.Level, p.Difficulty, p.Mode, p.Score, p.TotalWords, p.Passed)
	if err != nil {
		return fmt.Errorf("failed to save spelling result: %w", err)
	}
	p.ID = id
	return nil
}

// InsertReading appends a reading result and sets its ID
func (r *ProgressRepository) InsertReading(ctx context.Context, p *models.ReadingProgress) error {
	query := `
		INSERT INTO reading_progress (user_id, grade, level, story_id, story_number, score, total_questions, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.Querier(ctx).ExecReturningID(ctx, query,
		p.UserID, p.Grade, p.Level, p.StoryID, p.StoryNumber, p.Score, p.TotalQuestions, p.Passed)
	if err != nil {
		return fmt.Errorf("failed to save reading result: %w", err)
	}
	p.ID = id
	return nil
}

// SpellingHistory lists spelling results, highest level first then newest
func (r *ProgressRepository) SpellingHistory(ctx context.Context, f HistoryFilter) ([]models.SpellingProgress, error) {
	query, args, err := f.apply(
		sq.Select("id", "user_id", "grade", "level", "difficulty", "mode", "score", "total_words", "passed", "completed_at").
			From("spelling_progress").
			OrderBy("level DESC", "completed_at DESC", "id DESC"),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build spelling history query: %w", err)
	}

	history := []models.SpellingProgress{}
	if err := r.db.Querier(ctx).SelectContext(ctx, &history, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get spelling history: %w", err)
	}
	return history, nil
}

// ReadingHistory lists reading results, highest level and story first then newest
func (r *ProgressRepository) ReadingHistory(ctx context.Context, f HistoryFilter) ([]models.ReadingProgress, error) {
	query, args, err := f.apply(
		sq.Select("id", "user_id", "grade", "level", "story_id", "story_number", "score", "total_questions", "passed", "completed_at").
			From("reading_progress").
			OrderBy("level DESC", "story_number DESC", "completed_at DESC", "id DESC"),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build reading history query: %w", err)
	}

	history := []models.ReadingProgress{}
	if err := r.db.Querier(ctx).SelectContext(ctx, &history, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get reading history: %w", err)
	}
	return history, nil
}

// HighestPassedLevel returns the highest passed spelling level for a grade, 0 when none
func (r *ProgressRepository) HighestPassedLevel(ctx context.Context, userID string, grade int) (int, error) {
	var level int
	err := r.db.Querier(ctx).GetContext(ctx, &level,
		"SELECT COALESCE(MAX(level), 0) FROM spelling_progress WHERE user_id = ? AND grade = ? AND passed = ?",
		userID, grade, true)
	if err != nil {
		return 0, fmt.Errorf("failed to get highest level: %w", err)
	}
	return level, nil
}

// CompletedStories returns the ids of passed stories at a grade and level
func (r *ProgressRepository) CompletedStories(ctx context.Context, userID string, grade, level int) ([]string, error) {
	query, args, err := sq.Select("DISTINCT story_id").
		From("reading_progress").
		Where(sq.Eq{"user_id": userID, "grade": grade, "level": level, "passed": true}).
		OrderBy("story_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build completed stories query: %w", err)
	}

	stories := []string{}
	if err := r.db.Querier(ctx).SelectContext(ctx, &stories, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get completed stories: %w", err)
	}
	return stories, nil
}
