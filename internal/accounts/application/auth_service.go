package application

import (
	"context"
	"errors"
	"time"

	accounts "campus-parking/internal/accounts/domain"
	"campus-parking/internal/auth"
)

const defaultTokenTTL = 12 * time.Hour

// AuthService implements the mock campus SSO login flow: an SSO id is
// exchanged for a signed JWT carrying the user's role.
type AuthService struct {
	users  accounts.UserRepository
	secret []byte
	ttl    time.Duration
}

// AuthOption configures the service.
type AuthOption func(*AuthService)

// WithTokenTTL overrides the token lifetime.
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewAuthService constructs the service.
func NewAuthService(users accounts.UserRepository, secret []byte, opts ...AuthOption) (*AuthService, error) {
	if users == nil {
		return nil, errors.New("auth service: nil user repository")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth service: empty jwt secret")
	}
	s := &AuthService{users: users, secret: secret, ttl: defaultTokenTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login resolves the SSO id and issues a token.
func (s *AuthService) Login(ctx context.Context, ssoID string) (string, *accounts.User, error) {
	if ssoID == "" {
		return "", nil, accounts.ErrEmptySSOID
	}
	user, err := s.users.FindBySSOID(ctx, ssoID)
	if err != nil {
		return "", nil, err
	}
	role, ok := auth.NormalizeRole(user.Role)
	if !ok {
		return "", nil, errors.New("auth service: user has invalid role")
	}
	token, err := auth.SignJWT(s.secret, user.ID, role, user.FullName, user.SSOID, s.ttl)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
