package api

import (
	"log/slog"
	"net/http"

	"github.com/lexiloop/lexiloop-api/internal/api/shared"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service/review"
)

// ReviewHandler serves the review queue.
type ReviewHandler struct {
	scheduler review.Scheduler
	logger    *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(scheduler review.Scheduler, logger *slog.Logger) *ReviewHandler {
	if scheduler == nil {
		panic("scheduler cannot be nil for ReviewHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "review_handler")),
	}
}

// GetReviewQueue handles GET /review-queue?limit=N requests.
func (h *ReviewHandler) GetReviewQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", h.scheduler.DefaultLimit())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.scheduler.GetDueQueue(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build review queue")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReviewQueueResponse{Items: items, Count: len(items)})
}
