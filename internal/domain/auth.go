package domain

import (
	"context"
	"time"
)

// LoginRequest carries admin credentials plus request metadata for auditing.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
	RequestID string `json:"-"`
}

// AuthResult is returned on a successful login.
type AuthResult struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminClaims are the verified contents of an admin token.
type AdminClaims struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthUsecase interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Verify(token string) (*AdminClaims, error)
}
