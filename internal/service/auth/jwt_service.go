package auth

import (
	"context"
	"time"
)

// JWTService issues and validates the bearer tokens that protect /api routes
// when authentication is enabled.
type JWTService interface {
	// GenerateToken creates a signed access token for subject, typically a
	// client or operator name.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// ValidateToken verifies signature and lifetime of tokenString and returns
	// its claims. Expired tokens yield ErrExpiredToken, every other failure
	// ErrInvalidToken or ErrTokenNotYetValid.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
