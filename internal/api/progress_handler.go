package api

import (
	"log/slog"
	"net/http"

	"github.com/lexiloop/lexiloop-api/internal/api/shared"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service/goals"
	"github.com/lexiloop/lexiloop-api/internal/service/stats"
)

// ProgressHandler serves progress statistics and weekly goals.
type ProgressHandler struct {
	stats  stats.Service
	goals  goals.Tracker
	logger *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(statsService stats.Service, tracker goals.Tracker, logger *slog.Logger) *ProgressHandler {
	if statsService == nil || tracker == nil {
		panic("services cannot be nil for ProgressHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ProgressHandler")
	}
	return &ProgressHandler{
		stats:  statsService,
		goals:  tracker,
		logger: logger.With(slog.String("component", "progress_handler")),
	}
}

// GetStats handles GET /progress/stats requests.
func (h *ProgressHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	progress, err := h.stats.GetStats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progress)
}

// SetWeeklyGoal handles POST /progress/goals/weekly requests.
func (h *ProgressHandler) SetWeeklyGoal(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req SetGoalRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	status, err := h.goals.SetWeeklyGoal(r.Context(), userID, domain.GoalType(req.Type), req.Target)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to set weekly goal")
		return
	}

	log.Debug("weekly goal set",
		slog.String("user_id", userID.String()),
		slog.String("goal_type", req.Type),
		slog.Int("target", req.Target))
	shared.RespondWithJSON(w, r, http.StatusOK, goalToResponse(*status))
}

// GetWeeklyGoals handles GET /progress/goals/weekly requests.
func (h *ProgressHandler) GetWeeklyGoals(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	statuses, err := h.goals.GetGoals(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load weekly goals")
		return
	}

	resp := GoalsResponse{Goals: make([]GoalResponse, 0, len(statuses))}
	for _, s := range statuses {
		resp.Goals = append(resp.Goals, goalToResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

func goalToResponse(s goals.Status) GoalResponse {
	return GoalResponse{
		Type:        s.Type,
		Target:      s.Target,
		Current:     s.Current,
		WindowStart: s.WindowStart,
		WindowEnd:   s.WindowEnd,
		Active:      s.Active,
		Completed:   s.Completed,
	}
}
