package handlers

import (
	"context"
	"net/http"
	"time"

	"spellinghive/internal/logger"
	"spellinghive/internal/security"
)

// AudioURLPath is where rendered pronunciations are served
const AudioURLPath = "/audio/"

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig carries everything the router wires together
type RouterConfig struct {
	Users          *UserHandler
	Content        *ContentHandler
	Phonics        *PhonicsHandler
	DB             Pinger
	AudioDir       string
	GeneralLimiter *security.RateLimiter
	ContentLimiter *security.RateLimiter
	Log            *logger.Logger
}

// NewRouter registers every route and wraps the mux in the shared middleware
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	contentLimit := RateLimit(cfg.ContentLimiter, "Too many content generation requests, please try again later.")

	// Learner routes
	mux.HandleFunc("POST /api/users", cfg.Users.CreateUser)
	mux.HandleFunc("GET /api/users", cfg.Users.ListUsers)
	mux.HandleFunc("GET /api/users/{id}", cfg.Users.GetUser)
	mux.HandleFunc("GET /api/users/{id}/progress", cfg.Users.Progress)
	mux.HandleFunc("POST /api/users/{id}/spelling-result", cfg.Users.SpellingResult)
	mux.HandleFunc("POST /api/users/{id}/reading-result", cfg.Users.ReadingResult)
	mux.HandleFunc("GET /api/users/{id}/golden-hive", cfg.Users.GoldenHive)
	mux.HandleFunc("POST /api/users/{id}/golden-hive/{word}/dictation", cfg.Users.MarkDictation)
	mux.HandleFunc("GET /api/users/{id}/words/{word}/history", cfg.Users.WordHistory)
	mux.HandleFunc("POST /api/users/{id}/streak", cfg.Users.RecordStreak)
	mux.HandleFunc("GET /api/users/{id}/streak", cfg.Users.GetStreak)
	mux.HandleFunc("GET /api/users/{id}/avatar", cfg.Users.GetAvatar)
	mux.HandleFunc("PUT /api/users/{id}/avatar", cfg.Users.UpdateAvatar)
	mux.HandleFunc("GET /api/users/{id}/stories/completed", cfg.Users.CompletedStories)
	mux.HandleFunc("POST /api/spelling/check", cfg.Users.CheckSpelling)
	mux.HandleFunc("GET /api/phonics/rules", cfg.Phonics.Rules)
	mux.HandleFunc("GET /api/phonics/rules/{pattern}", cfg.Phonics.Rule)

	// Content routes
	mux.Handle("POST /api/content/spelling-words", contentLimit(http.HandlerFunc(cfg.Content.SpellingWords)))
	mux.Handle("POST /api/content/story-pack", contentLimit(http.HandlerFunc(cfg.Content.StoryPack)))
	mux.HandleFunc("POST /api/pronounce", cfg.Content.Pronounce)
	mux.Handle("GET "+AudioURLPath, http.StripPrefix(AudioURLPath, http.FileServer(http.Dir(cfg.AudioDir))))

	mux.HandleFunc("GET /health", health(cfg.DB, cfg.Log))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Route not found"})
	})

	return Chain(mux,
		Logging(cfg.Log),
		Recover(cfg.Log),
		RateLimit(cfg.GeneralLimiter, "Too many requests, please try again later."),
	)
}

func health(db Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				log.Warn("Health check database ping failed", "error", err)
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, map[string]any{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
