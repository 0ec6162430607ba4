package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	traceID := GetTraceID(traced)
	assert.Len(t, traceID, 32)
	assert.NotContains(t, traceID, "-")
	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(ctx)))

	assert.Empty(t, GetTraceID(context.WithValue(ctx, TraceIDKey, 123)))
}

func TestUserIDFromContext(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	got, ok := UserIDFromContext(WithUserID(context.Background(), userID))
	assert.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok = UserIDFromContext(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)

	_, ok = UserIDFromContext(context.Background())
	assert.False(t, ok)
}

type decodeTarget struct {
	Word  string `json:"word"  validate:"required"`
	Level int    `json:"level" validate:"gte=0,lte=5"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"word":"lucid","level":2}`},
		{name: "malformed", body: `{"word":`, wantErr: true},
		{name: "unknown field", body: `{"word":"lucid","extra":true}`, wantErr: true},
		{name: "trailing object", body: `{"word":"lucid"}{"word":"brisk"}`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
		{name: "too large", body: `{"word":"` + strings.Repeat("a", MaxRequestBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var target decodeTarget
			err := DecodeJSON(httptest.NewRecorder(), req, &target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "lucid", target.Word)
			assert.Equal(t, 2, target.Level)
		})
	}
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("not ok")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(&decodeTarget{Word: "lucid", Level: 3}))
	assert.Error(t, ValidateRequest(&decodeTarget{Level: 3}))
	assert.Error(t, ValidateRequest(&decodeTarget{Word: "lucid", Level: 9}))
	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.Error(t, ValidateRequest(selfValidating{}))
}

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithJSON(rec, req, http.StatusCreated, map[string]string{"word": "lucid"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"word":"lucid"}`, rec.Body.String())
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, http.StatusNotFound, "Word not found")

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Word not found", body.Error)
	assert.Equal(t, GetTraceID(req.Context()), body.TraceID)
}

func TestRespondWithError_Headers(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, http.StatusTooManyRequests, "Too many requests",
		WithHeader("Retry-After", "2"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	var logs bytes.Buffer
	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error", status: http.StatusServiceUnavailable, wantLevel: "ERROR"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
		{name: "client error", status: http.StatusBadRequest, wantLevel: "DEBUG"},
		{name: "overridden level", status: http.StatusUnauthorized, opts: []ResponseOption{WithLogLevel(slog.LevelWarn)}, wantLevel: "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/progress/stats", nil)

			RespondWithErrorAndLog(rec, req, tt.status, "Something failed",
				errors.New("dial postgres://lexi:secret@db:5432/lexiloop failed"), tt.opts...)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, `{"error":"Something failed"}`, rec.Body.String())

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.NotContains(t, logs.String(), "secret")
		})
	}
}
