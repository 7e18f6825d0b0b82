package accounts

import (
	"context"
	"errors"
)

// User is a campus account known to the mock SSO.
type User struct {
	ID       string
	SSOID    string
	FullName string
	Role     string
}

var (
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("accounts: user not found")
	// ErrEmptySSOID is returned when the SSO id is missing.
	ErrEmptySSOID = errors.New("accounts: empty sso id")
	// ErrEmptyUserID is returned when the user id is missing.
	ErrEmptyUserID = errors.New("accounts: empty user id")
)

// Validate checks user invariants.
func (u User) Validate() error {
	if u.ID == "" {
		return ErrEmptyUserID
	}
	if u.SSOID == "" {
		return ErrEmptySSOID
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	FindBySSOID(ctx context.Context, ssoID string) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	Save(ctx context.Context, user *User) error
}
