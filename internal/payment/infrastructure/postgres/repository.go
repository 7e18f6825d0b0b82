// Package postgres persists payment transactions.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	payment "campus-parking/internal/payment/domain"
)

const defaultTransactionTable = "transactions"

type Repository struct {
	db    *sql.DB
	table string
}

type Option func(*Repository)

// WithTransactionTable overrides the backing table name.
func WithTransactionTable(name string) Option {
	return func(r *Repository) {
		if name != "" {
			r.table = name
		}
	}
}

func NewRepository(db *sql.DB, opts ...Option) (*Repository, error) {
	if db == nil {
		return nil, errors.New("postgres: nil db")
	}
	r := &Repository{db: db, table: defaultTransactionTable}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Repository) Create(ctx context.Context, txn *payment.Transaction) error {
	if txn == nil {
		return payment.ErrEmptyTransactionID
	}
	if err := txn.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, session_id, user_id, amount, status, gateway_ref, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $7)
	`, r.table)
	_, err := r.db.ExecContext(ctx, query,
		txn.ID, txn.SessionID, txn.UserID, txn.Amount, string(txn.Status), txn.GatewayRef, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status payment.TransactionStatus, gatewayRef string) (*payment.Transaction, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, gateway_ref = COALESCE(NULLIF($3, ''), gateway_ref), updated_at = $4
		WHERE id = $1
	`, r.table)
	result, err := r.db.ExecContext(ctx, query, id, string(status), gatewayRef, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	if affected == 0 {
		return nil, payment.ErrTransactionNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) Get(ctx context.Context, id string) (*payment.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, COALESCE(user_id, ''), amount, status, COALESCE(gateway_ref, ''), created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.table)
	return scanTransactionRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]payment.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, COALESCE(user_id, ''), amount, status, COALESCE(gateway_ref, ''), created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.table)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []payment.Transaction
	for rows.Next() {
		txn, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *txn)
	}
	return out, rows.Err()
}

func (r *Repository) FindSuccessfulBySession(ctx context.Context, sessionID string) (*payment.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, COALESCE(user_id, ''), amount, status, COALESCE(gateway_ref, ''), created_at, updated_at
		FROM %s
		WHERE session_id = $1 AND status = 'success'
		LIMIT 1
	`, r.table)
	txn, err := scanTransactionRow(r.db.QueryRowContext(ctx, query, sessionID))
	if errors.Is(err, payment.ErrTransactionNotFound) {
		return nil, nil
	}
	return txn, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransactionRow(row rowScanner) (*payment.Transaction, error) {
	var (
		txn    payment.Transaction
		status string
	)
	err := row.Scan(&txn.ID, &txn.SessionID, &txn.UserID, &txn.Amount, &status, &txn.GatewayRef, &txn.CreatedAt, &txn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payment.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	txn.Status = payment.TransactionStatus(status)
	return &txn, nil
}
