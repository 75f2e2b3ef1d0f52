package core

import (
	"context"
	"errors"
	"time"
)

// Identity represents an authenticated principal returned to handlers.
// It never carries password material.
type Identity struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
}

var (
	// ErrInvalidCredentials is returned when username/password is wrong.
	// Callers must not be able to tell an unknown username apart from a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired is returned when a bearer token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned when a bearer token fails signature or
	// structural validation.
	ErrTokenInvalid = errors.New("token invalid")
)

// AuthService defines authentication behaviour. Failed verification yields
// ErrInvalidCredentials; any other error is a store failure.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*UserRecord, error)
}
