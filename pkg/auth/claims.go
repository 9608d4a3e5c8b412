package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting an owner JWT.
// Only owners authenticate with JWTs; employee and terminal identities are
// redis session records resolved by the identity resolver.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	BusinessID *uuid.UUID
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to owner clients.
type AccessTokenClaims struct {
	UserID     uuid.UUID  `json:"user_id"`
	BusinessID *uuid.UUID `json:"business_id,omitempty"`
	jwt.RegisteredClaims
}
