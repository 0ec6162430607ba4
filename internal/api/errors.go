package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lexiloop/lexiloop-api/internal/api/shared"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/generation"
	"github.com/lexiloop/lexiloop-api/internal/service"
	"github.com/lexiloop/lexiloop-api/internal/service/auth"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Persistence failures are checked before conflicts: exhausted retries
	// wrap both.
	case errors.Is(err, store.ErrPersistenceFailure):
		return http.StatusServiceUnavailable

	// Unknown words in a request are a client error even when the cause
	// is a catalog miss.
	case errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrConcurrencyConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrEmptySession),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, generation.ErrInvalidRequest):
		return http.StatusBadRequest

	case errors.Is(err, generation.ErrLowQuality),
		errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, store.ErrPersistenceFailure):
		return "Progress could not be saved, please retry"

	case errors.Is(err, domain.ErrInvalidReference):
		return "Unknown vocabulary word"
	case errors.Is(err, domain.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrSessionExists):
		return "Study session already recorded"
	case errors.Is(err, store.ErrConcurrencyConflict):
		return "Concurrent update detected, please retry"

	case errors.Is(err, domain.ErrEmptySession):
		return "Test session has no outcomes"
	case errors.Is(err, service.ErrInvalidLimit):
		return "Limit must be greater than zero"
	case errors.Is(err, service.ErrInvalidAmount):
		return "Amount must be greater than zero"

	case errors.Is(err, generation.ErrInvalidRequest):
		return "Invalid story request"
	case errors.Is(err, generation.ErrLowQuality):
		return "Could not generate a story of sufficient quality"
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Story generation failed"
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		if vErr.Field != "" {
			return fmt.Sprintf("Invalid %s: %s", vErr.Field, vErr.Message)
		}
		return "Validation error"
	}
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrInvalidID) {
		return "Validation error"
	}

	return "An unexpected error occurred"
}

// SanitizeValidationError turns request validation failures into a short
// message naming the first offending field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", toSnakeCase(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HandleAPIError writes the status and safe message for err. A non-empty
// message overrides the safe message for server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	safe := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && message != "" {
		safe = message
	}
	shared.RespondWithErrorAndLog(w, r, status, safe, err)
}

// HandleValidationError writes a 400 response for a failed request decode or
// validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}
