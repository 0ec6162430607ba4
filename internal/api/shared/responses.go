package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/redact"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// ResponseOption customizes an error response.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	level   *slog.Level
	headers map[string]string
}

// WithLogLevel overrides the level the error is logged at.
func WithLogLevel(level slog.Level) ResponseOption {
	return func(opts *responseOptions) {
		opts.level = &level
	}
}

// WithHeader sets a response header before the status is written.
func WithHeader(key, value string) ResponseOption {
	return func(opts *responseOptions) {
		if opts.headers == nil {
			opts.headers = make(map[string]string)
		}
		opts.headers[key] = value
	}
}

// RespondWithJSON writes data as JSON with the given status.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// RespondWithError writes an error body carrying message and the request's
// trace ID. Use it when there is no underlying error worth logging.
func RespondWithError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	opts ...ResponseOption,
) {
	RespondWithErrorAndLog(w, r, status, message, nil, opts...)
}

// RespondWithErrorAndLog writes message to the client and logs err, redacted,
// on the request logger. The raw error never reaches the response body.
//
// 5xx responses are logged at ERROR, 429 at WARN and everything else at
// DEBUG unless WithLogLevel says otherwise.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	err error,
	opts ...ResponseOption,
) {
	var options responseOptions
	for _, opt := range opts {
		opt(&options)
	}

	traceID := GetTraceID(r.Context())
	attrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", message),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	level := levelForStatus(status)
	if options.level != nil {
		level = *options.level
	}
	logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "API error response", attrs...)

	for key, value := range options.headers {
		w.Header().Set(key, value)
	}
	RespondWithJSON(w, r, status, ErrorResponse{Error: message, TraceID: traceID})
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status == http.StatusTooManyRequests:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}
