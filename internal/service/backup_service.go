package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"spellinghive/internal/database"
	"spellinghive/internal/logger"
	"spellinghive/internal/models"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData is the complete learner data export. Generated content is
// left out since it can be regenerated.
type BackupData struct {
	Version       string                    `json:"version"`
	ExportedAt    time.Time                 `json:"exported_at"`
	DatabaseType  string                    `json:"database_type"`
	Users         []models.UserProfile      `json:"users"`
	Avatars       []AvatarBackup            `json:"avatars"`
	Spelling      []models.SpellingProgress `json:"spelling_progress"`
	Reading       []models.ReadingProgress  `json:"reading_progress"`
	MasteredWords []models.MasteredWord     `json:"mastered_words"`
	Attempts      []models.WordAttempt      `json:"word_attempts"`
	Practice      []models.DailyPractice    `json:"daily_practice"`
}

// AvatarBackup is an avatar_state row; accessories stay as stored JSON
type AvatarBackup struct {
	UserID       string    `db:"user_id" json:"user_id"`
	TotalXP      int       `db:"total_xp" json:"total_xp"`
	CurrentLevel int       `db:"current_level" json:"current_level"`
	Appearance   string    `db:"appearance" json:"appearance"`
	Accessories  string    `db:"accessories" json:"accessories"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// backupTables lists learner tables children first, the order Clear deletes in
var backupTables = []string{
	"daily_practice",
	"word_attempts",
	"mastered_words",
	"reading_progress",
	"spelling_progress",
	"avatar_state",
	"users",
}

// BackupService handles learner data backup and restore
type BackupService struct {
	db  *database.DB
	log *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log *logger.Logger) *BackupService {
	return &BackupService{db: db, log: log.With("service", "backup")}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) (*BackupData, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(ctx, file)
	if err != nil {
		return nil, err
	}

	s.log.Info("Database exported", "path", outputPath,
		"users", len(backup.Users), "spelling", len(backup.Spelling), "reading", len(backup.Reading),
		"mastered_words", len(backup.MasteredWords), "attempts", len(backup.Attempts), "practice_days", len(backup.Practice))
	return backup, nil
}

// ExportToWriter encodes a complete backup to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:       BackupVersion,
		ExportedAt:    time.Now().UTC(),
		DatabaseType:  s.db.Dialect.DriverName(),
		Users:         []models.UserProfile{},
		Avatars:       []AvatarBackup{},
		Spelling:      []models.SpellingProgress{},
		Reading:       []models.ReadingProgress{},
		MasteredWords: []models.MasteredWord{},
		Attempts:      []models.WordAttempt{},
		Practice:      []models.DailyPractice{},
	}

	exports := []struct {
		name  string
		dest  any
		query string
	}{
		{"users", &backup.Users,
			"SELECT id, name, grade, guardian_email, created_at, last_active FROM users ORDER BY created_at, id"},
		{"avatars", &backup.Avatars,
			"SELECT user_id, total_xp, current_level, appearance, accessories, updated_at FROM avatar_state ORDER BY user_id"},
		{"spelling progress", &backup.Spelling,
			"SELECT id, user_id, grade, level, difficulty, mode, score, total_words, passed, completed_at FROM spelling_progress ORDER BY id"},
		{"reading progress", &backup.Reading,
			"SELECT id, user_id, grade, level, story_id, story_number, score, total_questions, passed, completed_at FROM reading_progress ORDER BY id"},
		{"mastered words", &backup.MasteredWords,
			"SELECT " + masteredExportColumns + " FROM mastered_words ORDER BY id"},
		{"word attempts", &backup.Attempts,
			"SELECT id, user_id, word, user_input, correct, phonics_hint, attempted_at FROM word_attempts ORDER BY id"},
		{"daily practice", &backup.Practice,
			"SELECT user_id, practice_date, minutes_practiced, activities_completed FROM daily_practice ORDER BY user_id, practice_date"},
	}

	for _, e := range exports {
		if err := s.db.SelectContext(ctx, e.dest, e.query); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", e.name, err)
		}
	}
	return backup, nil
}

const masteredExportColumns = `id, user_id, word, definition, origin, phonics_pattern,
	times_spelled_correctly, used_in_dictation, last_reviewed, mastered_at`

// Import restores a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup in one transaction. Row ids are
// reassigned by the database; user ids are kept.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	s.log.Info("Importing backup", "version", backup.Version, "exported_at", backup.ExportedAt)

	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		q := s.db.Querier(ctx)

		for _, u := range backup.Users {
			if _, err := q.ExecContext(ctx,
				"INSERT INTO users (id, name, grade, guardian_email, created_at, last_active) VALUES (?, ?, ?, ?, ?, ?)",
				u.ID, u.Name, u.Grade, u.GuardianEmail, u.CreatedAt, u.LastActive); err != nil {
				return fmt.Errorf("failed to import user %s: %w", u.ID, err)
			}
		}

		for _, a := range backup.Avatars {
			if _, err := q.ExecContext(ctx,
				"INSERT INTO avatar_state (user_id, total_xp, current_level, appearance, accessories, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
				a.UserID, a.TotalXP, a.CurrentLevel, a.Appearance, a.Accessories, a.UpdatedAt); err != nil {
				return fmt.Errorf("failed to import avatar for %s: %w", a.UserID, err)
			}
		}

		for _, p := range backup.Spelling {
			if _, err := q.ExecContext(ctx, `
				INSERT INTO spelling_progress (user_id, grade, level, difficulty, mode, score, total_words, passed, completed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.UserID, p.Grade, p.Level, p.Difficulty, p.Mode, p.Score, p.TotalWords, p.Passed, p.CompletedAt); err != nil {
				return fmt.Errorf("failed to import spelling progress %d: %w", p.ID, err)
			}
		}

		for _, p := range backup.Reading {
			if _, err := q.ExecContext(ctx, `
				INSERT INTO reading_progress (user_id, grade, level, story_id, story_number, score, total_questions, passed, completed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.UserID, p.Grade, p.Level, p.StoryID, p.StoryNumber, p.Score, p.TotalQuestions, p.Passed, p.CompletedAt); err != nil {
				return fmt.Errorf("failed to import reading progress %d: %w", p.ID, err)
			}
		}

		for _, w := range backup.MasteredWords {
			if _, err := q.ExecContext(ctx, `
				INSERT INTO mastered_words (user_id, word, definition, origin, phonics_pattern,
					times_spelled_correctly, used_in_dictation, last_reviewed, mastered_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				w.UserID, w.Word, w.Definition, w.Origin, w.PhonicsPattern,
				w.TimesSpelledCorrectly, w.UsedInDictation, w.LastReviewed, w.MasteredAt); err != nil {
				return fmt.Errorf("failed to import mastered word %q: %w", w.Word, err)
			}
		}

		for _, a := range backup.Attempts {
			if _, err := q.ExecContext(ctx, `
				INSERT INTO word_attempts (user_id, word, user_input, correct, phonics_hint, attempted_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				a.UserID, a.Word, a.UserInput, a.Correct, a.PhonicsHint, a.AttemptedAt); err != nil {
				return fmt.Errorf("failed to import attempt %d: %w", a.ID, err)
			}
		}

		for _, d := range backup.Practice {
			if _, err := q.ExecContext(ctx, `
				INSERT INTO daily_practice (user_id, practice_date, minutes_practiced, activities_completed)
				VALUES (?, ?, ?, ?)`,
				d.UserID, d.Date, d.MinutesPracticed, d.ActivitiesCompleted); err != nil {
				return fmt.Errorf("failed to import practice day %s for %s: %w", d.Date, d.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("Database import completed", "users", len(backup.Users))
	return nil
}

// Clear deletes all learner data, keeping cached content and the word filter
func (s *BackupService) Clear(ctx context.Context) error {
	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		q := s.db.Querier(ctx)
		for _, table := range backupTables {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			s.log.Info("Cleared table", "table", table)
		}
		return nil
	})
}
