package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
)

// Chain tries generators in order and returns the first story that passes
// quality validation.
type Chain struct {
	generators []Generator
	logger     *slog.Logger
}

var _ Generator = (*Chain)(nil)

// NewChain creates a Chain over generators. At least one generator is required.
func NewChain(logger *slog.Logger, generators ...Generator) (*Chain, error) {
	if len(generators) == 0 {
		return nil, fmt.Errorf("%w: at least one generator is required", ErrInvalidConfig)
	}
	for _, g := range generators {
		if g == nil {
			return nil, fmt.Errorf("%w: nil generator", ErrInvalidConfig)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		generators: generators,
		logger:     logger.With(slog.String("component", "story_generator_chain")),
	}, nil
}

// Name implements Generator.Name
func (c *Chain) Name() string {
	return "chain"
}

// GenerateStory implements Generator.GenerateStory. The returned story
// carries its quality score. When every generator fails, the last error is
// returned; a story that fails validation yields ErrLowQuality.
func (c *Chain) GenerateStory(ctx context.Context, req Request) (*Story, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	var lastErr error
	for _, g := range c.generators {
		story, err := g.GenerateStory(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			log.Warn("story generator failed",
				slog.String("generator", g.Name()),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}

		result := Validate(story.Content, req.Words, req.MaxLength)
		if !result.Valid {
			log.Warn("generated story rejected",
				slog.String("generator", g.Name()),
				slog.Float64("quality_score", result.QualityScore),
				slog.Any("issues", result.Issues))
			lastErr = fmt.Errorf("%w: %s scored %.2f", ErrLowQuality, g.Name(), result.QualityScore)
			continue
		}

		story.QualityScore = result.QualityScore
		log.Debug("story generated",
			slog.String("generator", g.Name()),
			slog.Float64("quality_score", result.QualityScore),
			slog.Int("word_count", story.WordCount))
		return story, nil
	}

	if errors.Is(lastErr, ErrLowQuality) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, lastErr)
}
