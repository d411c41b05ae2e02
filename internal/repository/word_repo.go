package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"spellinghive/internal/database"
	"spellinghive/internal/models"
)

// WordRepository handles the Golden Hive and the attempt log
type WordRepository struct {
	db *database.DB
}

// NewWordRepository creates a new word repository
func NewWordRepository(db *database.DB) *WordRepository {
	return &WordRepository{db: db}
}

// NormalizeWord is the key form of a word
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

const masteredColumns = `id, user_id, word, definition, origin, phonics_pattern,
	times_spelled_correctly, used_in_dictation, last_reviewed, mastered_at`

// UpsertMastered adds a word to the hive or bumps its correct count.
// Definition, origin and pattern are kept from the first mastery.
func (r *WordRepository) UpsertMastered(ctx context.Context, userID string, word models.SpellingWord) error {
	q := r.db.Querier(ctx)
	_, err := q.ExecContext(ctx, q.GetDialect().UpsertMasteredWordQuery(),
		userID, NormalizeWord(word.Word), word.Definition, word.Origin, word.PhonicsPattern)
	if err != nil {
		return fmt.Errorf("failed to upsert mastered word: %w", err)
	}
	return nil
}

// GetMastered retrieves one mastered word, or nil
func (r *WordRepository) GetMastered(ctx context.Context, userID, word string) (*models.MasteredWord, error) {
	w := &models.MasteredWord{}
	err := r.db.Querier(ctx).GetContext(ctx, w,
		"SELECT "+masteredColumns+" FROM mastered_words WHERE user_id = ? AND word = ?",
		userID, NormalizeWord(word))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mastered word: %w", err)
	}
	return w, nil
}

// ListMastered returns the learner's hive, most recently mastered first
func (r *WordRepository) ListMastered(ctx context.Context, userID string) ([]models.MasteredWord, error) {
	words := []models.MasteredWord{}
	err := r.db.Querier(ctx).SelectContext(ctx, &words,
		"SELECT "+masteredColumns+" FROM mastered_words WHERE user_id = ? ORDER BY mastered_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mastered words: %w", err)
	}
	return words, nil
}

// MarkUsedInDictation flags a mastered word; ErrNotFound when it is not in the hive
func (r *WordRepository) MarkUsedInDictation(ctx context.Context, userID, word string) error {
	existing, err := r.GetMastered(ctx, userID, word)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("mastered word %q: %w", word, models.ErrNotFound)
	}

	_, err = r.db.Querier(ctx).ExecContext(ctx,
		"UPDATE mastered_words SET used_in_dictation = ? WHERE id = ?", true, existing.ID)
	if err != nil {
		return fmt.Errorf("failed to mark word used in dictation: %w", err)
	}
	return nil
}

// AppendAttempt logs one spelling attempt and sets its ID
func (r *WordRepository) AppendAttempt(ctx context.Context, attempt *models.WordAttempt) error {
	query := `
		INSERT INTO word_attempts (user_id, word, user_input, correct, phonics_hint)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.Querier(ctx).ExecReturningID(ctx, query,
		attempt.UserID, NormalizeWord(attempt.Word), attempt.UserInput, attempt.Correct, attempt.PhonicsHint)
	if err != nil {
		return fmt.Errorf("failed to log attempt: %w", err)
	}
	attempt.ID = id
	return nil
}

// AttemptHistory returns the latest attempts at a word, newest first
func (r *WordRepository) AttemptHistory(ctx context.Context, userID, word string, limit int) ([]models.WordAttempt, error) {
	attempts := []models.WordAttempt{}
	err := r.db.Querier(ctx).SelectContext(ctx, &attempts, `
		SELECT id, user_id, word, user_input, correct, phonics_hint, attempted_at
		FROM word_attempts
		WHERE user_id = ? AND word = ?
		ORDER BY attempted_at DESC, id DESC
		LIMIT ?`, userID, NormalizeWord(word), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt history: %w", err)
	}
	return attempts, nil
}
