package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/lexiloop/lexiloop-api/internal/config"
	"github.com/lexiloop/lexiloop-api/internal/generation"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// contentGenerator is the part of the genai client the generator uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	logger     *slog.Logger
	models     contentGenerator
	model      string
	genConfig  *genai.GenerateContentConfig
	maxRetries int
	retryDelay time.Duration
	now        func() time.Time
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new instance of GeminiGenerator.
//
// Parameters:
//   - ctx: Context for creating the API client
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name and retry settings
//
// Returns:
//   - A properly initialized GeminiGenerator or an error wrapping
//     generation.ErrInvalidConfig
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, client.Models, cfg), nil
}

func newGenerator(logger *slog.Logger, models contentGenerator, cfg config.LLMConfig) *GeminiGenerator {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(generation.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(cfg.Temperature),
		MaxOutputTokens:   cfg.MaxOutputTokens,
	}

	return &GeminiGenerator{
		logger:     logger.With(slog.String("component", "gemini_generator")),
		models:     models,
		model:      cfg.ModelName,
		genConfig:  genConfig,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		now:        time.Now,
	}
}

// Name implements generation.Generator.Name
func (g *GeminiGenerator) Name() string {
	return generation.SourceGemini
}

// GenerateStory implements generation.Generator.GenerateStory
func (g *GeminiGenerator) GenerateStory(ctx context.Context, req generation.Request) (*generation.Story, error) {
	prompt, err := generation.BuildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return generation.NewStory(text, req, g.Name(), g.now()), nil
}

// callWithRetry calls the Gemini API with exponential backoff retry logic.
//
// It makes up to maxRetries+1 attempts, waiting
// retryDelay * 2^attempt * (0.5 + rand(0, 0.5)) between them. Permanent
// errors (blocked content, empty responses, client errors) are returned
// immediately.
func (g *GeminiGenerator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		log.Debug("making Gemini API call",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", g.maxRetries+1))

		resp, err := g.models.GenerateContent(ctx, g.model, contents, g.genConfig)
		if err == nil {
			text, perr := extractText(resp)
			if perr != nil {
				log.Warn("permanent Gemini error, not retrying", slog.String("error", perr.Error()))
				return "", perr
			}
			return text, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !isTransient(err) {
			log.Error("Gemini API call rejected", slog.String("error", err.Error()))
			return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
		}

		lastErr = err
		log.Warn("Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		if attempt == g.maxRetries {
			break
		}

		delay := g.backoff(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		generation.ErrTransientFailure, g.maxRetries, lastErr)
}

func (g *GeminiGenerator) backoff(attempt int) time.Duration {
	base := float64(g.retryDelay) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(base * jitter)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}
	return text, nil
}
