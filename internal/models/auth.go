package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims carries the session identity inside an access token.
type JWTClaims struct {
	UserID    string      `json:"user_id"`
	ProfileID string      `json:"profile_id"`
	Role      ProfileRole `json:"role"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	jwt.RegisteredClaims
}

// LoginRequest is the credential payload; Role optionally overrides the
// stored profile role for this account.
type LoginRequest struct {
	Email    string       `json:"email" validate:"required,email"`
	Password string       `json:"password" validate:"required"`
	Role     *ProfileRole `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

// SignupRequest registers a new citizen account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// SessionUser is the profile view returned on login and /auth/me.
type SessionUser struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Role    ProfileRole `json:"role"`
	Credits int         `json:"credits"`
}

// LoginResponse carries the session token and the resolved profile.
type LoginResponse struct {
	User      SessionUser `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
	IssuedAt  time.Time   `json:"issued_at"`
}
