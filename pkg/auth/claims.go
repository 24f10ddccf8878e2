package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Name   string
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to cashiers.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name,omitempty"`
	jwt.RegisteredClaims
}
