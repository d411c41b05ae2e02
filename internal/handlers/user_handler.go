package handlers

import (
	"net/http"

	"spellinghive/internal/logger"
	"spellinghive/internal/models"
	"spellinghive/internal/service"
)

// UserHandler serves learner profiles and their progress
type UserHandler struct {
	users    *service.UserService
	progress *service.ProgressService
	log      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService, progress *service.ProgressService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		progress: progress,
		log:      log.With("handler", "user"),
	}
}

type createUserRequest struct {
	Name          string `json:"name"`
	Grade         int    `json:"grade"`
	GuardianEmail string `json:"guardian_email"`
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, "Failed to create user", err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), service.NewUser{
		Name:          req.Name,
		Grade:         req.Grade,
		GuardianEmail: req.GuardianEmail,
	})
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to list users", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// GetUser handles GET /api/users/{id}; an unknown id yields a null user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Progress handles GET /api/users/{id}/progress?grade=
func (h *UserHandler) Progress(w http.ResponseWriter, r *http.Request) {
	grade, err := queryInt(r, "grade", service.DefaultGrade)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get progress", err)
		return
	}

	snapshot, err := h.progress.GetProgressSnapshot(r.Context(), r.PathValue("id"), grade)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get progress", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type spellingResultRequest struct {
	Grade          int                    `json:"grade"`
	Level          int                    `json:"level"`
	Difficulty     string                 `json:"difficulty"`
	Mode           string                 `json:"mode"`
	WordsAttempted []service.AttemptInput `json:"words_attempted"`
}

// SpellingResult handles POST /api/users/{id}/spelling-result
func (h *UserHandler) SpellingResult(w http.ResponseWriter, r *http.Request) {
	var req spellingResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, "Failed to save spelling result", err)
		return
	}
	if req.Mode == "" {
		req.Mode = models.ModePractice
	}

	result, err := h.progress.SubmitSpellingResult(r.Context(), service.SpellingSubmission{
		UserID:     r.PathValue("id"),
		Grade:      req.Grade,
		Level:      req.Level,
		Difficulty: req.Difficulty,
		Mode:       req.Mode,
		Attempts:   req.WordsAttempted,
	})
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to save spelling result", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type readingResultRequest struct {
	Grade          int    `json:"grade"`
	Level          int    `json:"level"`
	StoryID        string `json:"story_id"`
	StoryNumber    int    `json:"story_number"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	Passed         bool   `json:"passed"`
}

// ReadingResult handles POST /api/users/{id}/reading-result
func (h *UserHandler) ReadingResult(w http.ResponseWriter, r *http.Request) {
	var req readingResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, "Failed to save reading result", err)
		return
	}

	result, err := h.progress.SubmitReadingResult(r.Context(), service.ReadingSubmission{
		UserID:      r.PathValue("id"),
		Grade:       req.Grade,
		Level:       req.Level,
		StoryID:     req.StoryID,
		StoryNumber: req.StoryNumber,
		Score:       req.Score,
		Total:       req.TotalQuestions,
		Passed:      req.Passed,
	})
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to save reading result", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GoldenHive handles GET /api/users/{id}/golden-hive
func (h *UserHandler) GoldenHive(w http.ResponseWriter, r *http.Request) {
	words, err := h.progress.GetGoldenHive(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get golden hive", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"words": words})
}

// MarkDictation handles POST /api/users/{id}/golden-hive/{word}/dictation
func (h *UserHandler) MarkDictation(w http.ResponseWriter, r *http.Request) {
	err := h.progress.MarkUsedInDictation(r.Context(), r.PathValue("id"), r.PathValue("word"))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to mark word", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WordHistory handles GET /api/users/{id}/words/{word}/history
func (h *UserHandler) WordHistory(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.progress.WordHistory(r.Context(), r.PathValue("id"), r.PathValue("word"))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get word history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}

type streakRequest struct {
	Minutes    int `json:"minutes"`
	Activities int `json:"activities"`
}

// RecordStreak handles POST /api/users/{id}/streak
func (h *UserHandler) RecordStreak(w http.ResponseWriter, r *http.Request) {
	var req streakRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, "Failed to record practice", err)
		return
	}

	current, err := h.progress.RecordPractice(r.Context(), r.PathValue("id"), req.Minutes, req.Activities)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to record practice", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"current_streak": current})
}

// GetStreak handles GET /api/users/{id}/streak
func (h *UserHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	summary, err := h.progress.StreakSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get streak", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetAvatar handles GET /api/users/{id}/avatar
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	avatar, err := h.progress.GetAvatar(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get avatar", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"avatar": avatar})
}

type avatarRequest struct {
	Accessories []string `json:"accessories"`
}

// UpdateAvatar handles PUT /api/users/{id}/avatar
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, "Failed to update avatar", err)
		return
	}

	avatar, err := h.progress.UpdateAccessories(r.Context(), r.PathValue("id"), req.Accessories)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to update avatar", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"avatar": avatar})
}

// CompletedStories handles GET /api/users/{id}/stories/completed?grade=&level=
func (h *UserHandler) CompletedStories(w http.ResponseWriter, r *http.Request) {
	grade, err := queryInt(r, "grade", service.DefaultGrade)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get completed stories", err)
		return
	}
	level, err := queryInt(r, "level", 1)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get completed stories", err)
		return
	}

	stories, err := h.progress.CompletedStories(r.Context(), r.PathValue("id"), grade, level)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to get completed stories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"story_ids": stories})
}

type checkSpellingRequest struct {
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// CheckSpelling handles POST /api/spelling/check
func (h *UserHandler) CheckSpelling(w http.ResponseWriter, r *http.Request) {
	var req checkSpellingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, "Failed to check spelling", err)
		return
	}

	diagnosis, err := h.progress.CheckSpelling(req.Expected, req.Actual)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to check spelling", err)
		return
	}
	writeJSON(w, http.StatusOK, diagnosis)
}
