package redact_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lexiloop/lexiloop-api/internal/redact"
	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{
			name:     "no sensitive data",
			input:    "session ingested for word brave",
			expected: "session ingested for word brave",
		},
		{
			name:     "database connection string",
			input:    "dial failed: postgres://lexi:hunter22@db:5432/lexiloop",
			expected: "dial failed: [REDACTED_CREDENTIAL]db:5432/lexiloop",
		},
		{
			name:     "password parameter",
			input:    "connect with password=secret123 failed",
			expected: "connect with [REDACTED_CREDENTIAL] failed",
		},
		{
			name:     "gemini key",
			input:    "request rejected for AIzaSyA1234567890abcdefghijklmn",
			expected: "request rejected for [REDACTED_KEY]",
		},
		{
			name: "JWT token",
			input: "bad token eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
				"eyJ1aWQiOiIxMjMifQ.SflKxwRJSMeKKF2QT4fwpMeJf36POk6yJV_adQssw5c",
			expected: "bad token [REDACTED_JWT]",
		},
		{
			name:     "email",
			input:    "user learner@example.com not found",
			expected: "user [REDACTED_EMAIL] not found",
		},
		{
			name:     "sql",
			input:    "query failed: SELECT word FROM mastery_records WHERE user_id = $1",
			expected: "query failed: [REDACTED_SQL]",
		},
		{
			name:     "file path",
			input:    "cannot read /etc/lexiloop/seed.xlsx",
			expected: "cannot read [REDACTED_PATH]",
		},
		{
			name:     "host and port",
			input:    "dial tcp db.internal.example:5432: refused",
			expected: "dial tcp [REDACTED_HOST]: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, redact.String(tt.input))
		})
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", redact.Error(nil))

	err := fmt.Errorf("store: %w", errors.New("password=topsecret rejected"))
	assert.Equal(t, "store: [REDACTED_CREDENTIAL] rejected", redact.Error(err))
}
