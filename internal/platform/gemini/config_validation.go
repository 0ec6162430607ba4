package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexiloop/lexiloop-api/internal/config"
	"github.com/lexiloop/lexiloop-api/internal/generation"
)

// validateConfig checks that the API key and model are set. Out of range
// retry settings are logged and replaced by defaults later.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		logger.ErrorContext(ctx, "missing Gemini API key")
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		logger.ErrorContext(ctx, "missing Gemini model name")
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.MaxRetries < 0 {
		logger.WarnContext(ctx, "invalid max retries value, using default",
			slog.Int("value", cfg.MaxRetries),
			slog.Int("default", defaultMaxRetries))
	}

	if cfg.RetryDelay <= 0 {
		logger.WarnContext(ctx, "invalid retry delay, using default",
			slog.Duration("value", cfg.RetryDelay),
			slog.Duration("default", defaultRetryDelay))
	}

	return nil
}
