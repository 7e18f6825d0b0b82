package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campus-parking/internal/eventing"
	parking "campus-parking/internal/parking/domain"
)

const defaultSessionTable = "parking_sessions"

// SessionStore is a Postgres implementation of the session store.
type SessionStore struct {
	db    *sql.DB
	table string
}

// SessionStoreOption configures the store.
type SessionStoreOption func(*SessionStore)

// WithSessionTable overrides the default table.
func WithSessionTable(table string) SessionStoreOption {
	return func(s *SessionStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewSessionStore constructs a store with defaults.
func NewSessionStore(db *sql.DB, opts ...SessionStoreOption) *SessionStore {
	store := &SessionStore{db: db, table: defaultSessionTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Create opens an active session for a slot. The partial unique index
// on (slot_id) WHERE is_active guarantees at most one open session per
// slot even across processes.
func (s *SessionStore) Create(ctx context.Context, slotID, userID string, entry time.Time) (*parking.Session, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("session store: nil db")
	}
	session, err := parking.NewSession(eventing.NewEventID(), slotID, userID, entry)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, slot_id, user_id, entry_time, is_active)
VALUES ($1, $2, NULLIF($3, ''), $4, TRUE)`, s.table)

	if _, err := pick(ctx, s.db).ExecContext(ctx, query, session.ID, slotID, userID, entry.UTC()); err != nil {
		return nil, err
	}
	return session, nil
}

// FindActiveBySlot returns the slot's open session, or nil when none.
func (s *SessionStore) FindActiveBySlot(ctx context.Context, slotID string) (*parking.Session, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("session store: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, slot_id, COALESCE(user_id, ''), entry_time, exit_time, amount_due, is_active
FROM %s
WHERE slot_id = $1 AND is_active
ORDER BY entry_time DESC
LIMIT 1`, s.table)

	session, err := scanSession(pick(ctx, s.db).QueryRowContext(ctx, query, slotID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return session, err
}

// Close ends a session. Closing an already closed session is rejected.
func (s *SessionStore) Close(ctx context.Context, sessionID string, exit time.Time, amountDue int64) (*parking.Session, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("session store: nil db")
	}
	query := fmt.Sprintf(`
UPDATE %s
SET exit_time = $2, amount_due = $3, is_active = FALSE
WHERE id = $1 AND is_active`, s.table)

	result, err := pick(ctx, s.db).ExecContext(ctx, query, sessionID, exit.UTC(), amountDue)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		existing, err := s.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, parking.ErrSessionClosed
		}
		return nil, parking.ErrSessionNotFound
	}
	return s.Get(ctx, sessionID)
}

// Get returns a session by id.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*parking.Session, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("session store: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, slot_id, COALESCE(user_id, ''), entry_time, exit_time, amount_due, is_active
FROM %s
WHERE id = $1`, s.table)

	session, err := scanSession(pick(ctx, s.db).QueryRowContext(ctx, query, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, parking.ErrSessionNotFound
	}
	return session, err
}

// ListActive returns all open sessions, newest first.
func (s *SessionStore) ListActive(ctx context.Context) ([]parking.Session, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("session store: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, slot_id, COALESCE(user_id, ''), entry_time, exit_time, amount_due, is_active
FROM %s
WHERE is_active
ORDER BY entry_time DESC`, s.table)

	return s.list(ctx, query)
}

// ListByUser returns a user's sessions, newest first.
func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]parking.Session, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("session store: nil db")
	}
	if userID == "" {
		return nil, nil
	}
	query := fmt.Sprintf(`
SELECT id, slot_id, COALESCE(user_id, ''), entry_time, exit_time, amount_due, is_active
FROM %s
WHERE user_id = $1
ORDER BY entry_time DESC`, s.table)

	return s.list(ctx, query, userID)
}

func (s *SessionStore) list(ctx context.Context, query string, args ...any) ([]parking.Session, error) {
	rows, err := pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []parking.Session
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row *sql.Row) (*parking.Session, error) {
	return scanSessionRow(row)
}

func scanSessionRow(row rowScanner) (*parking.Session, error) {
	var session parking.Session
	var exit sql.NullTime
	var amount sql.NullInt64
	if err := row.Scan(&session.ID, &session.SlotID, &session.UserID, &session.EntryTime, &exit, &amount, &session.Active); err != nil {
		return nil, err
	}
	if exit.Valid {
		t := exit.Time
		session.ExitTime = &t
	}
	if amount.Valid {
		v := amount.Int64
		session.AmountDue = &v
	}
	return &session, nil
}
