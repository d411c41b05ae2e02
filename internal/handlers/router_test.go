package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellinghive/internal/database/testhelper"
	"spellinghive/internal/logger"
	"spellinghive/internal/models"
	"spellinghive/internal/repository"
	"spellinghive/internal/security"
	"spellinghive/internal/service"
	"spellinghive/internal/streak"
)

type fakeContent struct {
	words []models.SpellingWord
	err   error
}

func (f *fakeContent) SpellingWords(ctx context.Context, grade, level int) ([]models.SpellingWord, error) {
	return f.words, f.err
}

func (f *fakeContent) StoryPack(ctx context.Context, grade, level int) ([]models.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Story{{ID: "s1", Title: "The Brave Bee"}}, nil
}

type fakePronouncer struct {
	mu    sync.Mutex
	words []string
}

func (f *fakePronouncer) PronounceAsync(word string, rate float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.words = append(f.words, word)
}

type testServer struct {
	handler    http.Handler
	content    *fakeContent
	pronouncer *fakePronouncer
}

func newTestServer(t *testing.T, contentBudget int) *testServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db := testhelper.NewSQLite(t)
	log := logger.NewNop()
	userRepo := repository.NewUserRepository(db)
	avatarRepo := repository.NewAvatarRepository(db)
	tracker := streak.NewTracker(repository.NewDailyPracticeRepository(db), streak.DefaultMinMinutes, time.UTC)

	progress := service.NewProgressService(db, userRepo, avatarRepo,
		repository.NewWordRepository(db), repository.NewProgressRepository(db),
		tracker, service.DefaultPolicy(), nil, log)
	users := service.NewUserService(db, userRepo, avatarRepo, nil, log)

	content := &fakeContent{words: []models.SpellingWord{{Word: "cake", Difficulty: 2}}}
	pronouncer := &fakePronouncer{}

	return &testServer{
		handler: NewRouter(RouterConfig{
			Users:          NewUserHandler(users, progress, log),
			Content:        NewContentHandler(content, pronouncer, AudioURLPath, log),
			Phonics:        NewPhonicsHandler(log),
			DB:             db,
			AudioDir:       t.TempDir(),
			GeneralLimiter: security.NewRateLimiter(ctx, 1000, time.Minute),
			ContentLimiter: security.NewRateLimiter(ctx, contentBudget, time.Minute),
			Log:            log,
		}),
		content:    content,
		pronouncer: pronouncer,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), dst), recorder.Body.String())
}

func (s *testServer) createUser(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users", map[string]any{"name": "Ada"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User models.UserProfile `json:"user"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, service.DefaultGrade, resp.User.Grade)
	return resp.User.ID
}

func TestUserRoutes(t *testing.T) {
	srv := newTestServer(t, 10)
	id := srv.createUser(t)

	rec := srv.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Users []models.UserProfile `json:"users"`
	}
	decodeBody(t, rec, &list)
	require.Len(t, list.Users, 1)
	assert.Equal(t, id, list.Users[0].ID)

	rec = srv.do(t, http.MethodGet, "/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ada"`)

	rec = srv.do(t, http.MethodGet, "/api/users/nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user": null}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/users", map[string]any{"name": "Ada", "grade": 9})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"grade"`)
}

func TestSpellingResultFlow(t *testing.T) {
	srv := newTestServer(t, 10)
	id := srv.createUser(t)

	rec := srv.do(t, http.MethodPost, "/api/users/"+id+"/spelling-result", map[string]any{
		"grade":      2,
		"level":      1,
		"difficulty": "easy",
		"words_attempted": []map[string]any{
			{"word": "cake", "user_input": "cake", "correct": true},
			{"word": "cake", "user_input": "cake", "correct": true},
			{"word": "rain", "user_input": "ran", "correct": false},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result service.SubmissionResult
	decodeBody(t, rec, &result)
	assert.Equal(t, 20, result.ExperienceGained)
	assert.Equal(t, 2, result.Score)

	rec = srv.do(t, http.MethodGet, "/api/users/"+id+"/golden-hive", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hive struct {
		Words []models.HiveWord `json:"words"`
	}
	decodeBody(t, rec, &hive)
	require.Len(t, hive.Words, 1)
	assert.Equal(t, 2, hive.Words[0].TimesSpelledCorrectly)
	assert.Equal(t, models.TierLearning, hive.Words[0].Badge)

	rec = srv.do(t, http.MethodGet, "/api/users/"+id+"/words/rain/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_input":"ran"`)

	rec = srv.do(t, http.MethodGet, "/api/users/"+id+"/progress?grade=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.ProgressSnapshot
	decodeBody(t, rec, &snapshot)
	assert.Len(t, snapshot.Spelling, 1)
	require.NotNil(t, snapshot.Avatar)
	assert.Equal(t, 20, snapshot.Avatar.Experience)

	rec = srv.do(t, http.MethodGet, "/api/users/"+id+"/progress?grade=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpellingResultForUnknownUser(t *testing.T) {
	srv := newTestServer(t, 10)

	rec := srv.do(t, http.MethodPost, "/api/users/nobody/spelling-result", map[string]any{
		"grade": 2, "level": 1, "difficulty": "easy",
		"words_attempted": []map[string]any{{"word": "cake", "user_input": "cake", "correct": true}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadingAndStoriesRoutes(t *testing.T) {
	srv := newTestServer(t, 10)
	id := srv.createUser(t)

	rec := srv.do(t, http.MethodPost, "/api/users/"+id+"/reading-result", map[string]any{
		"grade": 2, "level": 3, "story_id": "s1", "story_number": 1,
		"score": 3, "total_questions": 4, "passed": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/users/"+id+"/stories/completed?grade=2&level=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"story_ids": ["s1"]}`, rec.Body.String())
}

func TestStreakAndAvatarRoutes(t *testing.T) {
	srv := newTestServer(t, 10)
	id := srv.createUser(t)

	rec := srv.do(t, http.MethodPost, "/api/users/"+id+"/streak", map[string]any{"minutes": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/users/"+id+"/streak", map[string]any{"minutes": 20})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"current_streak": 1}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/users/"+id+"/streak", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"current_streak":1`)

	rec = srv.do(t, http.MethodPut, "/api/users/"+id+"/avatar", map[string]any{"accessories": []string{"crown", "crown"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Avatar models.AvatarState `json:"avatar"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, []string{"crown"}, resp.Avatar.Accessories)

	rec = srv.do(t, http.MethodPut, "/api/users/nobody/avatar", map[string]any{"accessories": []string{"crown"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/users/nobody/avatar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"avatar": null}`, rec.Body.String())
}

func TestDictationOfUnknownWord(t *testing.T) {
	srv := newTestServer(t, 10)
	id := srv.createUser(t)

	rec := srv.do(t, http.MethodPost, "/api/users/"+id+"/golden-hive/zebra/dictation", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckSpellingRoute(t *testing.T) {
	srv := newTestServer(t, 10)

	rec := srv.do(t, http.MethodPost, "/api/spelling/check", map[string]any{"expected": "cake", "actual": "cak"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"correct":false`)
	assert.Contains(t, rec.Body.String(), `"kind":"missing"`)

	rec = srv.do(t, http.MethodPost, "/api/spelling/check", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPhonicsRuleRoutes(t *testing.T) {
	srv := newTestServer(t, 10)

	rec := srv.do(t, http.MethodGet, "/api/phonics/rules?category=vowel_teams", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Rules []struct {
			Pattern string `json:"pattern"`
		} `json:"rules"`
	}
	decodeBody(t, rec, &listed)
	assert.Len(t, listed.Rules, 9)
	assert.NotContains(t, rec.Body.String(), `"pattern":"igh"`)

	rec = srv.do(t, http.MethodGet, "/api/phonics/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pattern":"igh"`)

	rec = srv.do(t, http.MethodGet, "/api/phonics/rules?category=blends", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "category")

	rec = srv.do(t, http.MethodGet, "/api/phonics/rules/kn", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"silent_letters"`)

	rec = srv.do(t, http.MethodGet, "/api/phonics/rules/zz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rule":null}`, rec.Body.String())
}

func TestContentRoutes(t *testing.T) {
	srv := newTestServer(t, 10)

	rec := srv.do(t, http.MethodPost, "/api/content/spelling-words", map[string]any{"grade": 2, "level": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"word":"cake"`)

	rec = srv.do(t, http.MethodPost, "/api/content/story-pack", map[string]any{"grade": 2, "level": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"The Brave Bee"`)

	rec = srv.do(t, http.MethodPost, "/api/content/spelling-words", map[string]any{"grade": 13, "level": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/content/story-pack", map[string]any{"grade": 2, "level": 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	srv.content.err = fmt.Errorf("upstream timeout: %w", models.ErrGenerationFailed)
	rec = srv.do(t, http.MethodPost, "/api/content/spelling-words", map[string]any{"grade": 2, "level": 1})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestContentRateLimit(t *testing.T) {
	srv := newTestServer(t, 1)

	rec := srv.do(t, http.MethodPost, "/api/content/spelling-words", map[string]any{"grade": 2, "level": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/content/spelling-words", map[string]any{"grade": 2, "level": 1})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// The general budget is separate
	rec = srv.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPronounceRoute(t *testing.T) {
	srv := newTestServer(t, 10)

	rec := srv.do(t, http.MethodPost, "/api/pronounce", map[string]any{"word": "Rain", "rate": 0.5})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"audio_url": "/audio/word_rain_0.50.mp3"}`, rec.Body.String())
	assert.Equal(t, []string{"Rain"}, srv.pronouncer.words)

	rec = srv.do(t, http.MethodPost, "/api/pronounce", map[string]any{"word": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndFallback(t *testing.T) {
	srv := newTestServer(t, 10)

	rec := srv.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = srv.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Route not found"}`, rec.Body.String())
}
