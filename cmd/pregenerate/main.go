package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spellinghive/internal/config"
	"spellinghive/internal/content"
	"spellinghive/internal/database"
	"spellinghive/internal/logger"
	"spellinghive/internal/repository"
)

func main() {
	grade := flag.Int("grade", 0, "Grade to pre-generate (default: CONTENT_PREGENERATE_GRADE)")
	levels := flag.Int("levels", 0, "Highest level to pre-generate (default: CONTENT_PREGENERATE_LEVELS)")
	status := flag.Bool("status", false, "List cached packs for the grade and exit")
	flag.Usage = printUsage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *grade == 0 {
		*grade = cfg.Content.PregenerateGrade
	}
	if *levels == 0 {
		*levels = cfg.Content.PregenerateLevels
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	if *status {
		printStatus(ctx, repository.NewContentRepository(db), *grade, log)
		return
	}

	if err := db.SeedBadWords(ctx, database.BadWordsURL, log); err != nil {
		log.Warn("Failed to seed bad words filter", "error", err)
	}

	store, closeStore, err := openContentStore(cfg, db, log)
	if err != nil {
		log.Fatal("Failed to open content store", "error", err)
	}
	defer closeStore()

	generator, err := content.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.Timeout, log)
	if err != nil {
		log.Fatal("Failed to create content generator", "error", err)
	}

	cache := content.NewCache(store, generator, db, log)
	report := cache.Pregenerate(ctx, *grade, *levels)

	fmt.Printf("Grade %d: %d level(s) ready, %d failed\n", report.Grade, len(report.Completed), len(report.Failed))
	for _, f := range report.Failed {
		fmt.Printf("  level %d: %s\n", f.Level, f.Error)
	}
	if err := report.Err(); err != nil {
		closeStore()
		db.Close()
		os.Exit(1)
	}
}

func printStatus(ctx context.Context, repo *repository.ContentRepository, grade int, log *logger.Logger) {
	entries, err := repo.List(ctx, grade)
	if err != nil {
		log.Fatal("Failed to list cached content", "error", err)
	}
	if len(entries) == 0 {
		fmt.Printf("No cached content for grade %d\n", grade)
		return
	}
	fmt.Printf("Cached content for grade %d:\n", grade)
	for _, e := range entries {
		fmt.Printf("  level %2d  %-15s  %s\n", e.Level, e.Kind, e.CreatedAt.Format("2006-01-02 15:04"))
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
		return store, func() { store.Close() }, nil
	default:
		return repository.NewContentRepository(db), func() {}, nil
	}
}

func printUsage() {
	fmt.Println("Spelling Hive Content Pre-generation Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pregenerate [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -grade <n>     Grade to pre-generate (default: CONTENT_PREGENERATE_GRADE)")
	fmt.Println("  -levels <n>    Generate levels 1..n (default: CONTENT_PREGENERATE_LEVELS)")
	fmt.Println("  -status        List cached packs for the grade (SQL store only)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  OPENAI_API_KEY   Required for generation")
	fmt.Println("  CONTENT_STORE    sql or redis (default: sql)")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
}
