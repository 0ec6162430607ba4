package api

import (
	"log/slog"
	"net/http"

	"github.com/lexiloop/lexiloop-api/internal/api/shared"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service/story"
)

// StoryHandler handles story generation requests.
type StoryHandler struct {
	stories story.Service
	logger  *slog.Logger
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories story.Service, logger *slog.Logger) *StoryHandler {
	if stories == nil {
		panic("story service cannot be nil for StoryHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for StoryHandler")
	}
	return &StoryHandler{
		stories: stories,
		logger:  logger.With(slog.String("component", "story_handler")),
	}
}

// GenerateStory handles POST /stories requests.
func (h *StoryHandler) GenerateStory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req StoryRequest
	if r.ContentLength != 0 {
		if err := shared.DecodeJSON(w, r, &req); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
			return
		}
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	generated, err := h.stories.Generate(r.Context(), userID, req.toGeneration())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate story")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, generated)
}
