package memory

import (
	"context"
	"sync"

	accounts "campus-parking/internal/accounts/domain"
)

// UserRepository is an in-memory user registry.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*accounts.User
	bySSOID map[string]string
}

// NewUserRepository constructs a repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*accounts.User),
		bySSOID: make(map[string]string),
	}
}

// FindBySSOID resolves a user by SSO id.
func (r *UserRepository) FindBySSOID(ctx context.Context, ssoID string) (*accounts.User, error) {
	_ = ctx
	if ssoID == "" {
		return nil, accounts.ErrEmptySSOID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySSOID[ssoID]
	if !ok {
		return nil, accounts.ErrUserNotFound
	}
	user := *r.byID[id]
	return &user, nil
}

// Get returns a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*accounts.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, accounts.ErrUserNotFound
	}
	copy := *user
	return &copy, nil
}

// Save inserts or replaces a user.
func (r *UserRepository) Save(ctx context.Context, user *accounts.User) error {
	_ = ctx
	if user == nil {
		return accounts.ErrEmptyUserID
	}
	if err := user.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *user
	r.byID[copy.ID] = &copy
	r.bySSOID[copy.SSOID] = copy.ID
	return nil
}
