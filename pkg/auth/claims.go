package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rafidahmed/tinbari-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Name   string
	Role   enums.UserRole
}

// AccessTokenClaims represents the typed JWT issued to operators.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Name   string         `json:"name"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
