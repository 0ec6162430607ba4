package gemini

import (
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// isTransient reports whether an API call error may succeed on retry.
// Rate limiting, server errors and errors that never reached the API are
// transient; any other API status is permanent.
func isTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
