// Package auth validates the bearer tokens that identify learners. Tokens
// are issued by an external identity service and signed with a shared
// HMAC secret; this package never issues credentials itself.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccessTokenType is the "type" claim carried by access tokens.
const AccessTokenType = "access"

// JWTService defines operations for validating JWT access tokens.
type JWTService interface {
	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns the claims containing user information if the token is valid,
	// or an error if validation fails (expired, invalid signature, wrong type, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated contents of an access token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType indicates the purpose of the token.
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
