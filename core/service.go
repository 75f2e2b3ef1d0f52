package core

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// dummyLoginHash is compared against when the username does not exist, so the
// absent-user path costs one bcrypt verification like the wrong-password path.
const dummyLoginHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// RepositoryAuthService verifies credentials against the user repository
// using bcrypt hashes.
type RepositoryAuthService struct {
	users UserRepository
}

func NewRepositoryAuthService(users UserRepository) *RepositoryAuthService {
	return &RepositoryAuthService{users: users}
}

// Authenticate looks up the user and checks the password hash. An unknown
// username and a wrong password both return ErrInvalidCredentials so the
// failure reason is indistinguishable to the caller; store failures are
// returned as-is for the handler to surface.
func (s *RepositoryAuthService) Authenticate(ctx context.Context, username, password string) (*UserRecord, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			bcrypt.CompareHashAndPassword([]byte(dummyLoginHash), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// HashPassword derives a salted bcrypt hash with the given cost. A cost of
// zero or below falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
