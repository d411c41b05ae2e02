package config

import (
	"time"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Content   ContentConfig   `yaml:"content"`
	Progress  ProgressConfig  `yaml:"progress"`
	Email     EmailConfig     `yaml:"email"`
	Audio     AudioConfig     `yaml:"audio"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"             env:"PORT"                    env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig selects the relational store
type DatabaseConfig struct {
	Type string `yaml:"type" env:"DATABASE_TYPE" env-default:"sqlite"`
	Path string `yaml:"path" env:"DB_PATH"       env-default:"./spellinghive.db"`
	URL  string `yaml:"url"  env:"DATABASE_URL"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Mode  string `yaml:"mode"  env:"LOG_MODE"  env-default:"development"`
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// OpenAIConfig configures the content generator
type OpenAIConfig struct {
	APIKey  string        `yaml:"api_key"  env:"OPENAI_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string        `yaml:"model"    env:"OPENAI_MODEL"    env-default:"gpt-4o-mini"`
	Timeout time.Duration `yaml:"timeout"  env:"OPENAI_TIMEOUT"  env-default:"90s"`
}

// ContentConfig configures the content cache and the pre-generation sweep
type ContentConfig struct {
	Store             string `yaml:"store"              env:"CONTENT_STORE"              env-default:"sql"`
	RedisAddr         string `yaml:"redis_addr"         env:"REDIS_ADDR"                 env-default:"localhost:6379"`
	RedisPassword     string `yaml:"redis_password"     env:"REDIS_PASSWORD"`
	RedisDB           int    `yaml:"redis_db"           env:"REDIS_DB"                   env-default:"0"`
	PregenerateGrade  int    `yaml:"pregenerate_grade"  env:"CONTENT_PREGENERATE_GRADE"  env-default:"2"`
	PregenerateLevels int    `yaml:"pregenerate_levels" env:"CONTENT_PREGENERATE_LEVELS" env-default:"10"`
	PregenerateCron   string `yaml:"pregenerate_cron"   env:"CONTENT_PREGENERATE_CRON"`
}

// ProgressConfig is the scoring and streak policy
type ProgressConfig struct {
	SpellingMultiplier   int     `yaml:"spelling_multiplier"    env:"XP_SPELLING_MULTIPLIER"  env-default:"10"`
	ReadingMultiplier    int     `yaml:"reading_multiplier"     env:"XP_READING_MULTIPLIER"   env-default:"20"`
	SpellingMinutes      int     `yaml:"spelling_minutes"       env:"SPELLING_MINUTES_CREDIT" env-default:"5"`
	ReadingMinutes       int     `yaml:"reading_minutes"        env:"READING_MINUTES_CREDIT"  env-default:"10"`
	GatewayThreshold     float64 `yaml:"gateway_threshold"      env:"GATEWAY_THRESHOLD"       env-default:"0.8"`
	PracticeThreshold    float64 `yaml:"practice_threshold"     env:"PRACTICE_THRESHOLD"      env-default:"0.7"`
	StreakMinimumMinutes int     `yaml:"streak_minimum_minutes" env:"STREAK_MINIMUM_MINUTES"  env-default:"15"`
	Timezone             string  `yaml:"timezone"               env:"PRACTICE_TIMEZONE"       env-default:"UTC"`
}

// EmailConfig configures tier-change notices; an empty sender disables them
type EmailConfig struct {
	FromAddress string `yaml:"from_address" env:"SES_FROM_EMAIL"`
	FromName    string `yaml:"from_name"    env:"SES_FROM_NAME" env-default:"Spelling Hive"`
	Region      string `yaml:"region"       env:"AWS_REGION"    env-default:"us-east-1"`
}

// AudioConfig configures the pronounce capability
type AudioConfig struct {
	Dir string `yaml:"dir" env:"AUDIO_DIR" env-default:"./static/audio"`
}

// RateLimitConfig holds per-client request budgets
type RateLimitConfig struct {
	GeneralRequests int           `yaml:"general_requests" env:"RATE_LIMIT_GENERAL_REQUESTS" env-default:"60"`
	GeneralWindow   time.Duration `yaml:"general_window"   env:"RATE_LIMIT_GENERAL_WINDOW"   env-default:"1m"`
	ContentRequests int           `yaml:"content_requests" env:"RATE_LIMIT_CONTENT_REQUESTS" env-default:"10"`
	ContentWindow   time.Duration `yaml:"content_window"   env:"RATE_LIMIT_CONTENT_WINDOW"   env-default:"15m"`
}
