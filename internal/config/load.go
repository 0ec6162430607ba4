package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. LEXILOOP_SERVER_PORT.
const EnvPrefix = "LEXILOOP"

// Load configuration from a .env file, an optional config.yaml in the
// working directory and environment variables. Environment variables take
// precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile is Load with an explicit YAML config file. An empty path
// looks for config.yaml in the working directory and tolerates its absence.
func LoadFromFile(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"llm.gemini_api_key",
		"catalog.seed_file",
		"catalog.sheet_name",
		"srs.base_interval_days",
		"srs.confidence_decay",
		"srs.incorrect_review_days",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrate_on_start", false)

	v.SetDefault("auth.clock_skew", 30*time.Second)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_output_tokens", 2048)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", 2*time.Second)
	v.SetDefault("llm.cache_ttl", 24*time.Hour)
	v.SetDefault("llm.cache_size", 1000)

	v.SetDefault("scheduler.default_limit", 20)
	v.SetDefault("scheduler.max_limit", 100)

	v.SetDefault("session.max_attempts", 3)

	v.SetDefault("goals.week_start", "monday")

	v.SetDefault("prefetch.workers", 2)
	v.SetDefault("prefetch.queue_size", 100)
	v.SetDefault("prefetch.task_timeout", 60*time.Second)
}

// Weekday returns the configured first day of the goal week.
func (c GoalsConfig) Weekday() time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), c.WeekStart) {
			return d
		}
	}
	return time.Monday
}
