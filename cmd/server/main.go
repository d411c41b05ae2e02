package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spellinghive/internal/audio"
	"spellinghive/internal/config"
	"spellinghive/internal/content"
	"spellinghive/internal/database"
	"spellinghive/internal/handlers"
	"spellinghive/internal/logger"
	"spellinghive/internal/repository"
	"spellinghive/internal/scheduler"
	"spellinghive/internal/security"
	"spellinghive/internal/service"
	"spellinghive/internal/streak"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()

	log.Info("Database connection established", "type", cfg.Database.Type)

	if err := db.RunMigrations(ctx, log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Seed bad words filter
	if err := db.SeedBadWords(ctx, database.BadWordsURL, log); err != nil {
		log.Warn("Failed to seed bad words filter", "error", err)
	}

	// Content cache
	store, closeStore, err := openContentStore(cfg, db, log)
	if err != nil {
		log.Fatal("Failed to open content store", "error", err)
	}
	defer closeStore()

	var generator content.Generator = content.DisabledGenerator{}
	if cfg.OpenAI.APIKey != "" {
		generator, err = content.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.Timeout, log)
		if err != nil {
			log.Fatal("Failed to create content generator", "error", err)
		}
	} else {
		log.Warn("OPENAI_API_KEY not set, only cached content will be served")
	}
	cache := content.NewCache(store, generator, db, log)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	avatarRepo := repository.NewAvatarRepository(db)
	wordRepo := repository.NewWordRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	practiceRepo := repository.NewDailyPracticeRepository(db)

	// Initialize services
	loc := streak.ParseTimezone(cfg.Progress.Timezone)
	tracker := streak.NewTracker(practiceRepo, cfg.Progress.StreakMinimumMinutes, loc)

	emailService, err := service.NewEmailService(ctx, cfg.Email, log)
	if err != nil {
		log.Fatal("Failed to create email service", "error", err)
	}

	userService := service.NewUserService(db, userRepo, avatarRepo, emailService, log)
	progressService := service.NewProgressService(db, userRepo, avatarRepo, wordRepo, progressRepo,
		tracker, service.PolicyFromConfig(cfg.Progress), emailService, log)

	pronouncer := audio.NewPronouncer(cfg.Audio.Dir, log)

	// Initialize handlers
	handler := handlers.NewRouter(handlers.RouterConfig{
		Users:          handlers.NewUserHandler(userService, progressService, log),
		Content:        handlers.NewContentHandler(cache, pronouncer, handlers.AudioURLPath, log),
		Phonics:        handlers.NewPhonicsHandler(log),
		DB:             db,
		AudioDir:       cfg.Audio.Dir,
		GeneralLimiter: security.NewRateLimiter(ctx, cfg.RateLimit.GeneralRequests, cfg.RateLimit.GeneralWindow),
		ContentLimiter: security.NewRateLimiter(ctx, cfg.RateLimit.ContentRequests, cfg.RateLimit.ContentWindow),
		Log:            log,
	})

	// Nightly content warm-up
	if cfg.Content.PregenerateCron != "" {
		sched := scheduler.New(cache, cfg.Content.PregenerateGrade, cfg.Content.PregenerateLevels, loc, log)
		if err := sched.Start(cfg.Content.PregenerateCron); err != nil {
			log.Fatal("Failed to start pre-generation scheduler", "error", err)
		}
		defer sched.Stop()
	}

	addr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error("Server failed", "error", err)
	}

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}

// openContentStore selects where generated packs are kept
func openContentStore(cfg *config.Config, db *database.DB, log *logger.Logger) (content.Store, func(), error) {
	switch cfg.Content.Store {
	case "redis":
		store, err := content.NewRedisStore(cfg.Content.RedisAddr, cfg.Content.RedisPassword, cfg.Content.RedisDB, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Content cache backed by redis", "addr", cfg.Content.RedisAddr)
		return store, func() { store.Close() }, nil
	default:
		return repository.NewContentRepository(db), func() {}, nil
	}
}
