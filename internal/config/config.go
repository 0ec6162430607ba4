package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"`
	SRS       SRSConfig       `mapstructure:"srs"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Session   SessionConfig   `mapstructure:"session"   validate:"required"`
	Goals     GoalsConfig     `mapstructure:"goals"     validate:"required"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Prefetch  PrefetchConfig  `mapstructure:"prefetch"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// RateLimit is the sustained number of requests per second allowed per user.
	// Zero disables rate limiting.
	RateLimit      float64       `mapstructure:"rate_limit"       validate:"gte=0"`
	RateBurst      int           `mapstructure:"rate_burst"       validate:"gte=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"  validate:"gte=0"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// The memory driver keeps everything in process and needs no URL.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"            validate:"required,oneof=postgres memory"`
	URL             string        `mapstructure:"url"               validate:"required_if=Driver postgres,omitempty,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	// MigrateOnStart applies pending migrations before serving.
	MigrateOnStart bool `mapstructure:"migrate_on_start"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	ClockSkew time.Duration `mapstructure:"clock_skew" validate:"gte=0"`
}

// LLMConfig contains the story generation settings. Without an API key,
// stories come from the built-in template generator only.
type LLMConfig struct {
	GeminiAPIKey    string        `mapstructure:"gemini_api_key"`
	ModelName       string        `mapstructure:"model_name"        validate:"required"`
	Temperature     float32       `mapstructure:"temperature"       validate:"gte=0,lte=2"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens" validate:"gt=0"`
	MaxRetries      int           `mapstructure:"max_retries"       validate:"gte=0,lte=5"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"       validate:"gte=0"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"         validate:"gte=0"`
	CacheSize       int           `mapstructure:"cache_size"        validate:"gte=0"`
}

// SRSConfig overrides the review policy. Empty values keep the defaults.
type SRSConfig struct {
	BaseIntervalDays    []int   `mapstructure:"base_interval_days"    validate:"omitempty,len=6,dive,gte=0"`
	ConfidenceDecay     float64 `mapstructure:"confidence_decay"      validate:"gte=0,lt=1"`
	IncorrectReviewDays int     `mapstructure:"incorrect_review_days" validate:"gte=0"`
}

// SchedulerConfig bounds the review queue.
type SchedulerConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"required,gt=0,ltefield=MaxLimit"`
	MaxLimit     int `mapstructure:"max_limit"     validate:"required,gt=0"`
}

// SessionConfig controls session ingestion.
type SessionConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gte=1,lte=10"`
}

// GoalsConfig controls weekly goal windows.
type GoalsConfig struct {
	WeekStart string `mapstructure:"week_start" validate:"required,oneof=sunday monday tuesday wednesday thursday friday saturday"`
}

// CatalogConfig points at an optional vocabulary seed file (JSON, CSV or
// XLSX). When SeedFile is empty the bundled seed is used.
type CatalogConfig struct {
	SeedFile  string `mapstructure:"seed_file"`
	SheetName string `mapstructure:"sheet_name"`
}

// PrefetchConfig controls background story generation after a session is
// recorded. Zero workers disables prefetching.
type PrefetchConfig struct {
	Workers     int           `mapstructure:"workers"      validate:"gte=0,lte=32"`
	QueueSize   int           `mapstructure:"queue_size"   validate:"gte=0"`
	TaskTimeout time.Duration `mapstructure:"task_timeout" validate:"gte=0"`
}
