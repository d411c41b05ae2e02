package service

import (
	"context"
	"fmt"
	"strings"

	"spellinghive/internal/database"
	"spellinghive/internal/gamification"
	"spellinghive/internal/logger"
	"spellinghive/internal/models"
	"spellinghive/internal/phonics"
	"spellinghive/internal/repository"
	"spellinghive/internal/streak"
	"spellinghive/internal/validation"
)

// wordHistoryLimit is how many attempts WordHistory returns
const wordHistoryLimit = 10

// recentPracticeDays is how many days StreakSummary lists
const recentPracticeDays = 30

// AttemptInput is one word of a spelling exercise as reported by the client
type AttemptInput struct {
	Word           string `json:"word"`
	UserInput      string `json:"user_input"`
	Correct        bool   `json:"correct"`
	PhonicsHint    string `json:"phonics_hint,omitempty"`
	Definition     string `json:"definition,omitempty"`
	Origin         string `json:"origin,omitempty"`
	PhonicsPattern string `json:"phonics_pattern,omitempty"`
}

// SpellingSubmission is a finished spelling exercise
type SpellingSubmission struct {
	UserID     string
	Grade      int
	Level      int
	Difficulty string
	Mode       string
	Attempts   []AttemptInput
}

// ReadingSubmission is a finished story quiz
type ReadingSubmission struct {
	UserID      string
	Grade       int
	Level       int
	StoryID     string
	StoryNumber int
	Score       int
	Total       int
	Passed      bool
}

// SubmissionResult reports what a submission earned
type SubmissionResult struct {
	ExperienceGained int               `json:"xp_gained"`
	TotalExperience  int               `json:"total_xp"`
	Level            int               `json:"current_level"`
	Appearance       models.Appearance `json:"appearance"`
	Score            int               `json:"score"`
	Total            int               `json:"total"`
	Passed           bool              `json:"passed"`
	LeveledUp        bool              `json:"leveled_up"`
	TierChanged      bool              `json:"tier_changed"`
}

// StreakSummary is the current streak with the recent practice log
type StreakSummary struct {
	CurrentStreak int                    `json:"current_streak"`
	Days          []models.DailyPractice `json:"days"`
}

// TierNotifier is told when a learner's avatar reaches a new appearance
type TierNotifier interface {
	NotifyTierChange(ctx context.Context, user *models.UserProfile, avatar models.AvatarState) error
}

// ProgressService records results and reads learner progress
type ProgressService struct {
	db       *database.DB
	users    *repository.UserRepository
	avatars  *repository.AvatarRepository
	words    *repository.WordRepository
	progress *repository.ProgressRepository
	tracker  *streak.Tracker
	policy   Policy
	notifier TierNotifier
	log      *logger.Logger
}

// NewProgressService creates a new progress service. notifier may be nil.
func NewProgressService(
	db *database.DB,
	users *repository.UserRepository,
	avatars *repository.AvatarRepository,
	words *repository.WordRepository,
	progress *repository.ProgressRepository,
	tracker *streak.Tracker,
	policy Policy,
	notifier TierNotifier,
	log *logger.Logger,
) *ProgressService {
	return &ProgressService{
		db:       db,
		users:    users,
		avatars:  avatars,
		words:    words,
		progress: progress,
		tracker:  tracker,
		policy:   policy,
		notifier: notifier,
		log:      log.With("service", "progress"),
	}
}

func validateSpelling(sub SpellingSubmission) error {
	if err := validation.First(
		validation.ValidateGrade(sub.Grade),
		validation.ValidateLevel(sub.Level),
		validation.ValidateDifficulty(sub.Difficulty),
		validation.ValidateMode(sub.Mode),
	); err != nil {
		return err
	}
	if len(sub.Attempts) == 0 {
		return validation.ValidationError{Field: "words_attempted", Message: "at least one attempt is required"}
	}
	for _, a := range sub.Attempts {
		if err := validation.ValidateWord(a.Word); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProgressService) requireUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return user, nil
}

// SubmitSpellingResult stores a spelling exercise with its attempts, mastered
// words, experience and practice credit in one transaction.
func (s *ProgressService) SubmitSpellingResult(ctx context.Context, sub SpellingSubmission) (*SubmissionResult, error) {
	if err := validateSpelling(sub); err != nil {
		return nil, err
	}

	score := 0
	for _, a := range sub.Attempts {
		if a.Correct {
			score++
		}
	}
	total := len(sub.Attempts)
	passed := s.policy.Passed(sub.Mode, score, total)

	var (
		user   *models.UserProfile
		earned award
	)
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.requireUser(ctx, sub.UserID); err != nil {
			return err
		}

		record := &models.SpellingProgress{
			UserID:     sub.UserID,
			Grade:      sub.Grade,
			Level:      sub.Level,
			Difficulty: sub.Difficulty,
			Mode:       sub.Mode,
			Score:      score,
			TotalWords: total,
			Passed:     passed,
		}
		if err := s.progress.InsertSpelling(ctx, record); err != nil {
			return err
		}

		for _, a := range sub.Attempts {
			if err := s.logAttempt(ctx, sub.UserID, a); err != nil {
				return err
			}
		}

		if earned, err = s.award(ctx, sub.UserID, score, s.policy.Multipliers.Spelling); err != nil {
			return err
		}
		return s.creditPractice(ctx, sub.UserID, s.policy.SpellingMinutes)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Spelling result recorded",
		"user_id", sub.UserID, "grade", sub.Grade, "level", sub.Level,
		"score", score, "total", total, "passed", passed, "xp_gained", earned.gained)
	s.notifyTier(ctx, user, earned)

	return earned.result(score, total, passed), nil
}

// SubmitReadingResult stores a story quiz result with its experience and practice credit
func (s *ProgressService) SubmitReadingResult(ctx context.Context, sub ReadingSubmission) (*SubmissionResult, error) {
	if err := validation.First(
		validation.ValidateGrade(sub.Grade),
		validation.ValidateLevel(sub.Level),
		validation.ValidateScore(sub.Score, sub.Total),
	); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sub.StoryID) == "" {
		return nil, validation.ValidationError{Field: "story_id", Message: "story id is required"}
	}
	if sub.StoryNumber < 1 {
		return nil, validation.ValidationError{Field: "story_number", Message: "story number must be at least 1"}
	}

	var (
		user   *models.UserProfile
		earned award
	)
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.requireUser(ctx, sub.UserID); err != nil {
			return err
		}

		record := &models.ReadingProgress{
			UserID:         sub.UserID,
			Grade:          sub.Grade,
			Level:          sub.Level,
			StoryID:        sub.StoryID,
			StoryNumber:    sub.StoryNumber,
			Score:          sub.Score,
			TotalQuestions: sub.Total,
			Passed:         sub.Passed,
		}
		if err := s.progress.InsertReading(ctx, record); err != nil {
			return err
		}

		if earned, err = s.award(ctx, sub.UserID, sub.Score, s.policy.Multipliers.Reading); err != nil {
			return err
		}
		return s.creditPractice(ctx, sub.UserID, s.policy.ReadingMinutes)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Reading result recorded",
		"user_id", sub.UserID, "story_id", sub.StoryID,
		"score", sub.Score, "total", sub.Total, "passed", sub.Passed, "xp_gained", earned.gained)
	s.notifyTier(ctx, user, earned)

	return earned.result(sub.Score, sub.Total, sub.Passed), nil
}

func (s *ProgressService) logAttempt(ctx context.Context, userID string, a AttemptInput) error {
	hint := a.PhonicsHint
	if hint == "" && !a.Correct {
		hint = phonics.Analyze(a.Word, a.UserInput).Hint()
	}

	entry := &models.WordAttempt{
		UserID:      userID,
		Word:        a.Word,
		UserInput:   a.UserInput,
		Correct:     a.Correct,
		PhonicsHint: hint,
	}
	if err := s.words.AppendAttempt(ctx, entry); err != nil {
		return err
	}
	if !a.Correct {
		return nil
	}

	return s.words.UpsertMastered(ctx, userID, models.SpellingWord{
		Word:           a.Word,
		Definition:     a.Definition,
		Origin:         a.Origin,
		PhonicsPattern: a.PhonicsPattern,
	})
}

type award struct {
	gained int
	before models.AvatarState
	after  models.AvatarState
}

func (a award) result(score, total int, passed bool) *SubmissionResult {
	return &SubmissionResult{
		ExperienceGained: a.gained,
		TotalExperience:  a.after.Experience,
		Level:            a.after.Level,
		Appearance:       a.after.Appearance,
		Score:            score,
		Total:            total,
		Passed:           passed,
		LeveledUp:        a.after.Level > a.before.Level,
		TierChanged:      a.after.Appearance != a.before.Appearance,
	}
}

// award adds experience in the store and re-derives the tier from the new total
func (s *ProgressService) award(ctx context.Context, userID string, rawScore, multiplier int) (award, error) {
	gained := gamification.ExperienceFor(rawScore, multiplier)
	total, err := s.avatars.AddExperience(ctx, userID, gained)
	if err != nil {
		return award{}, err
	}

	a := award{
		gained: gained,
		before: gamification.Derive(models.AvatarState{UserID: userID, Experience: total - gained}),
		after:  gamification.Derive(models.AvatarState{UserID: userID, Experience: total}),
	}
	if err := s.avatars.UpdateTier(ctx, userID, a.after.Level, a.after.Appearance); err != nil {
		return award{}, err
	}
	return a, nil
}

func (s *ProgressService) creditPractice(ctx context.Context, userID string, minutes int) error {
	if err := s.tracker.RecordPractice(ctx, userID, s.tracker.Today(), minutes, 1); err != nil {
		return err
	}
	return s.users.TouchLastActive(ctx, userID)
}

func (s *ProgressService) notifyTier(ctx context.Context, user *models.UserProfile, a award) {
	if s.notifier == nil || user == nil || a.after.Appearance == a.before.Appearance {
		return
	}
	if err := s.notifier.NotifyTierChange(ctx, user, a.after); err != nil {
		s.log.Warn("Failed to send tier change notice", "user_id", user.ID, "error", err)
	}
}

// GetProgressSnapshot returns everything the progress screen shows for a grade.
// An unknown learner yields empty history and a nil avatar.
func (s *ProgressService) GetProgressSnapshot(ctx context.Context, userID string, grade int) (*models.ProgressSnapshot, error) {
	if err := validation.ValidateGrade(grade); err != nil {
		return nil, err
	}

	filter := repository.HistoryFilter{UserID: userID, Grade: grade}
	spelling, err := s.progress.SpellingHistory(ctx, filter)
	if err != nil {
		return nil, err
	}
	reading, err := s.progress.ReadingHistory(ctx, filter)
	if err != nil {
		return nil, err
	}
	highest, err := s.progress.HighestPassedLevel(ctx, userID, grade)
	if err != nil {
		return nil, err
	}
	avatar, err := s.avatars.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, err := s.tracker.CurrentStreak(ctx, userID, s.tracker.Today())
	if err != nil {
		return nil, err
	}

	return &models.ProgressSnapshot{
		Spelling:      spelling,
		Reading:       reading,
		HighestLevel:  highest,
		Avatar:        avatar,
		CurrentStreak: current,
	}, nil
}

// GetGoldenHive returns the learner's mastered words tagged with their tier
func (s *ProgressService) GetGoldenHive(ctx context.Context, userID string) ([]models.HiveWord, error) {
	words, err := s.words.ListMastered(ctx, userID)
	if err != nil {
		return nil, err
	}

	hive := make([]models.HiveWord, 0, len(words))
	for _, w := range words {
		hive = append(hive, models.HiveWord{MasteredWord: w, Badge: w.Tier()})
	}
	return hive, nil
}

// CheckSpelling diagnoses one attempt without storing anything
func (s *ProgressService) CheckSpelling(expected, actual string) (phonics.Diagnosis, error) {
	if err := validation.ValidateWord(expected); err != nil {
		return phonics.Diagnosis{}, err
	}
	return phonics.Analyze(strings.TrimSpace(expected), strings.TrimSpace(actual)), nil
}

// RecordPractice adds manually reported practice to today and returns the current streak
func (s *ProgressService) RecordPractice(ctx context.Context, userID string, minutes, activities int) (int, error) {
	if err := validation.ValidateMinutes(minutes); err != nil {
		return 0, err
	}
	if activities <= 0 {
		activities = 1
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return 0, err
	}

	today := s.tracker.Today()
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.tracker.RecordPractice(ctx, userID, today, minutes, activities); err != nil {
			return err
		}
		return s.users.TouchLastActive(ctx, userID)
	})
	if err != nil {
		return 0, err
	}

	return s.tracker.CurrentStreak(ctx, userID, today)
}

// StreakSummary returns the current streak and the recent practice days
func (s *ProgressService) StreakSummary(ctx context.Context, userID string) (*StreakSummary, error) {
	current, err := s.tracker.CurrentStreak(ctx, userID, s.tracker.Today())
	if err != nil {
		return nil, err
	}
	days, err := s.tracker.RecentDays(ctx, userID, recentPracticeDays)
	if err != nil {
		return nil, err
	}
	return &StreakSummary{CurrentStreak: current, Days: days}, nil
}

// MarkUsedInDictation flags a hive word as used in a dictation exercise
func (s *ProgressService) MarkUsedInDictation(ctx context.Context, userID, word string) error {
	if err := validation.ValidateWord(word); err != nil {
		return err
	}
	return s.words.MarkUsedInDictation(ctx, userID, word)
}

// GetAvatar returns the avatar, or nil when the learner has none
func (s *ProgressService) GetAvatar(ctx context.Context, userID string) (*models.AvatarState, error) {
	return s.avatars.Get(ctx, userID)
}

// UpdateAccessories replaces the avatar's accessories and returns the updated avatar
func (s *ProgressService) UpdateAccessories(ctx context.Context, userID string, accessories []string) (*models.AvatarState, error) {
	var updated *models.AvatarState
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.avatars.Get(ctx, userID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("avatar for %s: %w", userID, models.ErrNotFound)
		}

		if err := s.avatars.ReplaceAccessories(ctx, userID, gamification.NormalizeAccessories(accessories)); err != nil {
			return err
		}
		updated, err = s.avatars.Get(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// WordHistory returns the latest attempts at one word, newest first
func (s *ProgressService) WordHistory(ctx context.Context, userID, word string) ([]models.WordAttempt, error) {
	if err := validation.ValidateWord(word); err != nil {
		return nil, err
	}
	return s.words.AttemptHistory(ctx, userID, word, wordHistoryLimit)
}

// CompletedStories returns the ids of stories passed at a grade and level
func (s *ProgressService) CompletedStories(ctx context.Context, userID string, grade, level int) ([]string, error) {
	if err := validation.First(
		validation.ValidateGrade(grade),
		validation.ValidateLevel(level),
	); err != nil {
		return nil, err
	}
	return s.progress.CompletedStories(ctx, userID, grade, level)
}
