package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/api/shared"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service/session"
)

// SessionRecordedHook is called after a session is recorded for userID. It
// must not block.
type SessionRecordedHook func(userID uuid.UUID)

// SessionHandler handles study session submissions.
type SessionHandler struct {
	processor session.Processor
	hooks     []SessionRecordedHook
	logger    *slog.Logger
}

// NewSessionHandler creates a new SessionHandler. Hooks run in order after
// every successful submission.
func NewSessionHandler(
	processor session.Processor,
	logger *slog.Logger,
	hooks ...SessionRecordedHook,
) *SessionHandler {
	if processor == nil {
		panic("processor cannot be nil for SessionHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for SessionHandler")
	}
	return &SessionHandler{
		processor: processor,
		hooks:     hooks,
		logger:    logger.With(slog.String("component", "session_handler")),
	}
}

// SubmitSession handles POST /sessions requests.
// It records a completed study session and returns its summary.
func (h *SessionHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req StudySessionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		log.Debug("invalid session payload", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	summary, err := h.processor.Ingest(r.Context(), userID, req.toDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record study session")
		return
	}

	log.Debug("study session recorded",
		slog.String("user_id", userID.String()),
		slog.String("session_id", summary.SessionID.String()),
		slog.Int("outcomes", len(summary.Results)))
	for _, hook := range h.hooks {
		hook(userID)
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, summary)
}
