package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	accounts "campus-parking/internal/accounts/domain"
)

const defaultUserTable = "users"

// UserRepository is a Postgres implementation of the user registry.
type UserRepository struct {
	db    *sql.DB
	table string
}

// UserRepositoryOption configures the repository.
type UserRepositoryOption func(*UserRepository)

// WithUserTable overrides the default table.
func WithUserTable(table string) UserRepositoryOption {
	return func(r *UserRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewUserRepository constructs a repository with defaults.
func NewUserRepository(db *sql.DB, opts ...UserRepositoryOption) *UserRepository {
	repo := &UserRepository{db: db, table: defaultUserTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// FindBySSOID resolves a user by SSO id.
func (r *UserRepository) FindBySSOID(ctx context.Context, ssoID string) (*accounts.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	if ssoID == "" {
		return nil, accounts.ErrEmptySSOID
	}
	query := fmt.Sprintf(`
SELECT id, sso_id, full_name, role
FROM %s
WHERE sso_id = $1
LIMIT 1`, r.table)

	return r.scan(r.db.QueryRowContext(ctx, query, ssoID))
}

// Get returns a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*accounts.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, sso_id, full_name, role
FROM %s
WHERE id = $1`, r.table)

	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

// Save upserts a user keyed by id.
func (r *UserRepository) Save(ctx context.Context, user *accounts.User) error {
	if r == nil || r.db == nil {
		return errors.New("user repo: nil db")
	}
	if user == nil {
		return accounts.ErrEmptyUserID
	}
	if err := user.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, sso_id, full_name, role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET sso_id = EXCLUDED.sso_id, full_name = EXCLUDED.full_name, role = EXCLUDED.role`, r.table)

	_, err := r.db.ExecContext(ctx, query, user.ID, user.SSOID, user.FullName, user.Role)
	return err
}

func (r *UserRepository) scan(row *sql.Row) (*accounts.User, error) {
	var user accounts.User
	if err := row.Scan(&user.ID, &user.SSOID, &user.FullName, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
