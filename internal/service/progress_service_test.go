package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellinghive/internal/database"
	"spellinghive/internal/database/testhelper"
	"spellinghive/internal/logger"
	"spellinghive/internal/models"
	"spellinghive/internal/phonics"
	"spellinghive/internal/repository"
	"spellinghive/internal/streak"
	"spellinghive/internal/validation"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	welcomed []string
	tiers    []models.AvatarState
}

func (n *recordingNotifier) NotifyWelcome(ctx context.Context, user *models.UserProfile) error {
	n.welcomed = append(n.welcomed, user.ID)
	return nil
}

func (n *recordingNotifier) NotifyTierChange(ctx context.Context, user *models.UserProfile, avatar models.AvatarState) error {
	n.tiers = append(n.tiers, avatar)
	return nil
}

type testEnv struct {
	db       *database.DB
	progress *ProgressService
	users    *UserService
	avatars  *repository.AvatarRepository
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testhelper.NewSQLite(t)
	log := logger.NewNop()
	userRepo := repository.NewUserRepository(db)
	avatarRepo := repository.NewAvatarRepository(db)
	tracker := streak.NewTracker(repository.NewDailyPracticeRepository(db), streak.DefaultMinMinutes, time.UTC).
		WithClock(func() time.Time { return testNow })
	notifier := &recordingNotifier{}

	return &testEnv{
		db: db,
		progress: NewProgressService(db, userRepo, avatarRepo,
			repository.NewWordRepository(db), repository.NewProgressRepository(db),
			tracker, DefaultPolicy(), notifier, log),
		users:    NewUserService(db, userRepo, avatarRepo, notifier, log),
		avatars:  avatarRepo,
		notifier: notifier,
	}
}

func (e *testEnv) createUser(t *testing.T) string {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), NewUser{Name: "Ada", Grade: 2})
	require.NoError(t, err)
	return user.ID
}

func (e *testEnv) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM "+table))
	return n
}

func spelling(userID, mode string, attempts ...AttemptInput) SpellingSubmission {
	return SpellingSubmission{
		UserID:     userID,
		Grade:      2,
		Level:      1,
		Difficulty: models.DifficultyEasy,
		Mode:       mode,
		Attempts:   attempts,
	}
}

func TestPolicyPassed(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name  string
		mode  string
		score int
		total int
		want  bool
	}{
		{"gateway at 80%", models.ModeGateway, 8, 10, true},
		{"gateway below 80%", models.ModeGateway, 7, 10, false},
		{"practice at 70%", models.ModePractice, 7, 10, true},
		{"practice below 70%", models.ModePractice, 2, 3, false},
		{"empty total", models.ModePractice, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Passed(tt.mode, tt.score, tt.total))
		})
	}
}

func TestSubmitSpellingResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)

	result, err := env.progress.SubmitSpellingResult(ctx, spelling(userID, models.ModePractice,
		AttemptInput{Word: "cake", UserInput: "cake", Correct: true, Definition: "a sweet baked food"},
		AttemptInput{Word: "Cake", UserInput: "cake", Correct: true},
		AttemptInput{Word: "rain", UserInput: "ran", Correct: false},
	))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 3, result.Total)
	assert.False(t, result.Passed)
	assert.Equal(t, 20, result.ExperienceGained)
	assert.Equal(t, 1, result.Level)
	assert.Equal(t, models.AppearanceHatchling, result.Appearance)
	assert.False(t, result.TierChanged)

	hive, err := env.progress.GetGoldenHive(ctx, userID)
	require.NoError(t, err)
	require.Len(t, hive, 1)
	assert.Equal(t, "cake", hive[0].Word)
	assert.Equal(t, 2, hive[0].TimesSpelledCorrectly)
	assert.Equal(t, "a sweet baked food", hive[0].Definition)
	assert.Equal(t, models.TierLearning, hive[0].Badge)

	history, err := env.progress.WordHistory(ctx, userID, "rain")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, phonics.Analyze("rain", "ran").Hint(), history[0].PhonicsHint)
	assert.NotEmpty(t, history[0].PhonicsHint)

	avatar, err := env.progress.GetAvatar(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, avatar)
	assert.Equal(t, 20, avatar.Experience)

	// 5 minutes of spelling does not reach the daily minimum
	summary, err := env.progress.StreakSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CurrentStreak)
	require.Len(t, summary.Days, 1)
	assert.Equal(t, 5, summary.Days[0].MinutesPracticed)
}

func TestSubmitSpellingResultGatewayPass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)

	attempts := []AttemptInput{
		{Word: "boat", UserInput: "boat", Correct: true},
		{Word: "coat", UserInput: "coat", Correct: true},
		{Word: "goat", UserInput: "goat", Correct: true},
		{Word: "road", UserInput: "road", Correct: true},
		{Word: "toad", UserInput: "tode", Correct: false},
	}
	result, err := env.progress.SubmitSpellingResult(ctx, spelling(userID, models.ModeGateway, attempts...))
	require.NoError(t, err)
	assert.True(t, result.Passed)

	snapshot, err := env.progress.GetProgressSnapshot(ctx, userID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.HighestLevel)
	require.Len(t, snapshot.Spelling, 1)
	assert.Equal(t, models.ModeGateway, snapshot.Spelling[0].Mode)
	require.NotNil(t, snapshot.Avatar)
	assert.Equal(t, 40, snapshot.Avatar.Experience)
}

func TestSubmitSpellingResultIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A profile without an avatar makes the experience step fail mid-transaction
	testhelper.InsertUser(t, env.db, "no-avatar", 2)

	_, err := env.progress.SubmitSpellingResult(ctx, spelling("no-avatar", models.ModePractice,
		AttemptInput{Word: "cake", UserInput: "cake", Correct: true},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	for _, table := range []string{"spelling_progress", "word_attempts", "mastered_words", "daily_practice"} {
		assert.Zero(t, env.count(t, table), table)
	}
}

func TestSubmitSpellingResultErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)
	attempt := AttemptInput{Word: "cake", UserInput: "cake", Correct: true}

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.progress.SubmitSpellingResult(ctx, spelling("nobody", models.ModePractice, attempt))
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("no attempts", func(t *testing.T) {
		_, err := env.progress.SubmitSpellingResult(ctx, spelling(userID, models.ModePractice))
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("bad mode", func(t *testing.T) {
		_, err := env.progress.SubmitSpellingResult(ctx, spelling(userID, "speedrun", attempt))
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("bad grade", func(t *testing.T) {
		sub := spelling(userID, models.ModePractice, attempt)
		sub.Grade = 9
		_, err := env.progress.SubmitSpellingResult(ctx, sub)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	assert.Zero(t, env.count(t, "spelling_progress"))
}

func TestSubmitReadingResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)

	_, err := env.progress.SubmitSpellingResult(ctx, spelling(userID, models.ModePractice,
		AttemptInput{Word: "cake", UserInput: "cake", Correct: true},
	))
	require.NoError(t, err)

	result, err := env.progress.SubmitReadingResult(ctx, ReadingSubmission{
		UserID: userID, Grade: 2, Level: 1, StoryID: "g2-l1-s1", StoryNumber: 1,
		Score: 4, Total: 5, Passed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 80, result.ExperienceGained)
	assert.Equal(t, 90, result.TotalExperience)

	// 5 spelling minutes plus 10 reading minutes reach the daily minimum
	summary, err := env.progress.StreakSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CurrentStreak)

	stories, err := env.progress.CompletedStories(ctx, userID, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2-l1-s1"}, stories)

	_, err = env.progress.SubmitReadingResult(ctx, ReadingSubmission{
		UserID: userID, Grade: 2, Level: 1, StoryID: "g2-l1-s2", StoryNumber: 2, Score: 6, Total: 5,
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestReadingResultRequiresStoryNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)

	for _, number := range []int{0, -1} {
		_, err := env.progress.SubmitReadingResult(ctx, ReadingSubmission{
			UserID: userID, Grade: 2, Level: 1, StoryID: "g2-l1-s1", StoryNumber: number,
			Score: 4, Total: 5, Passed: true,
		})
		var verr validation.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "story_number", verr.Field)
	}
	assert.Zero(t, env.count(t, "reading_progress"))
}

func TestTierChangeNotifiesGuardian(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)

	_, err := env.avatars.AddExperience(ctx, userID, 2990)
	require.NoError(t, err)

	result, err := env.progress.SubmitSpellingResult(ctx, spelling(userID, models.ModePractice,
		AttemptInput{Word: "cake", UserInput: "cake", Correct: true},
	))
	require.NoError(t, err)
	assert.Equal(t, 3000, result.TotalExperience)
	assert.Equal(t, 4, result.Level)
	assert.Equal(t, models.AppearanceApprentice, result.Appearance)
	assert.True(t, result.LeveledUp)
	assert.True(t, result.TierChanged)

	require.Len(t, env.notifier.tiers, 1)
	assert.Equal(t, models.AppearanceApprentice, env.notifier.tiers[0].Appearance)

	avatar, err := env.progress.GetAvatar(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, avatar.Level)
	assert.Equal(t, models.AppearanceApprentice, avatar.Appearance)
}

func TestRecordPractice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)

	_, err := env.progress.RecordPractice(ctx, userID, 0, 1)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = env.progress.RecordPractice(ctx, "nobody", 20, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	current, err := env.progress.RecordPractice(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, current)

	current, err = env.progress.RecordPractice(ctx, userID, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, current)

	summary, err := env.progress.StreakSummary(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summary.Days, 1)
	assert.Equal(t, "2026-03-10", summary.Days[0].Date)
	assert.Equal(t, 20, summary.Days[0].MinutesPracticed)
	assert.Equal(t, 3, summary.Days[0].ActivitiesCompleted)
}

func TestGoldenHiveTiers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)

	for i := 0; i < 5; i++ {
		_, err := env.progress.SubmitSpellingResult(ctx, spelling(userID, models.ModePractice,
			AttemptInput{Word: "bright", UserInput: "bright", Correct: true},
		))
		require.NoError(t, err)
	}

	hive, err := env.progress.GetGoldenHive(ctx, userID)
	require.NoError(t, err)
	require.Len(t, hive, 1)
	assert.Equal(t, models.TierExpert, hive[0].Badge)

	require.NoError(t, env.progress.MarkUsedInDictation(ctx, userID, "Bright"))
	hive, err = env.progress.GetGoldenHive(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.TierMaster, hive[0].Badge)

	err = env.progress.MarkUsedInDictation(ctx, userID, "unknown")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateAccessories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.createUser(t)

	avatar, err := env.progress.UpdateAccessories(ctx, userID, []string{"crown", "", "wand", "crown"})
	require.NoError(t, err)
	assert.Equal(t, []string{"crown", "wand"}, avatar.Accessories)

	_, err = env.progress.UpdateAccessories(ctx, "nobody", []string{"crown"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReadsForUnknownUserAreEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	snapshot, err := env.progress.GetProgressSnapshot(ctx, "nobody", 2)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Spelling)
	assert.Empty(t, snapshot.Reading)
	assert.Nil(t, snapshot.Avatar)
	assert.Zero(t, snapshot.HighestLevel)
	assert.Zero(t, snapshot.CurrentStreak)

	avatar, err := env.progress.GetAvatar(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, avatar)
}

func TestCheckSpelling(t *testing.T) {
	env := newTestEnv(t)

	diagnosis, err := env.progress.CheckSpelling("cake", "cak")
	require.NoError(t, err)
	assert.False(t, diagnosis.Correct)
	require.Len(t, diagnosis.Diffs, 1)
	assert.Equal(t, phonics.Missing, diagnosis.Diffs[0].Kind)

	_, err = env.progress.CheckSpelling("  ", "cak")
	assert.ErrorIs(t, err, models.ErrValidation)
}
