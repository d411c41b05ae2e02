package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate checks enums and ranges. Load calls it automatically.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Type) {
	case "sqlite", "sqlite3", "":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for %s", c.Database.Type)
		}
	default:
		return fmt.Errorf("database.type must be sqlite, postgres or mysql (got %q)", c.Database.Type)
	}

	switch c.Content.Store {
	case "sql", "redis":
	default:
		return fmt.Errorf("content.store must be sql or redis (got %q)", c.Content.Store)
	}
	if c.Content.PregenerateGrade < 1 || c.Content.PregenerateGrade > 12 {
		return fmt.Errorf("content.pregenerate_grade must be within 1..12 (got %d)", c.Content.PregenerateGrade)
	}
	if c.Content.PregenerateLevels < 1 || c.Content.PregenerateLevels > 10 {
		return fmt.Errorf("content.pregenerate_levels must be within 1..10 (got %d)", c.Content.PregenerateLevels)
	}
	if c.Content.PregenerateCron != "" {
		if _, err := cron.ParseStandard(c.Content.PregenerateCron); err != nil {
			return fmt.Errorf("content.pregenerate_cron: %w", err)
		}
	}

	if err := c.Progress.validate(); err != nil {
		return fmt.Errorf("progress: %w", err)
	}

	if c.RateLimit.GeneralRequests <= 0 || c.RateLimit.ContentRequests <= 0 {
		return fmt.Errorf("rate_limit request budgets must be > 0")
	}
	if c.RateLimit.GeneralWindow <= 0 || c.RateLimit.ContentWindow <= 0 {
		return fmt.Errorf("rate_limit windows must be > 0")
	}

	return nil
}

func (p *ProgressConfig) validate() error {
	if p.SpellingMultiplier <= 0 || p.ReadingMultiplier <= 0 {
		return fmt.Errorf("multipliers must be > 0")
	}
	if p.SpellingMinutes < 0 || p.ReadingMinutes < 0 {
		return fmt.Errorf("minute credits must be >= 0")
	}
	for name, v := range map[string]float64{"gateway_threshold": p.GatewayThreshold, "practice_threshold": p.PracticeThreshold} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be within (0, 1] (got %v)", name, v)
		}
	}
	if p.StreakMinimumMinutes <= 0 {
		return fmt.Errorf("streak_minimum_minutes must be > 0 (got %d)", p.StreakMinimumMinutes)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}
