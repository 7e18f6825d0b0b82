package payment

import (
	"context"
	"errors"
	"time"
)

// TransactionStatus tracks a payment attempt's lifecycle.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// Transaction records one payment attempt for a closed session. The
// amount is the session's amount due; it is never recomputed here.
type Transaction struct {
	ID         string
	SessionID  string
	UserID     string
	Amount     int64
	Status     TransactionStatus
	GatewayRef string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	// ErrTransactionNotFound is returned when a transaction id misses.
	ErrTransactionNotFound = errors.New("payment: transaction not found")
	// ErrSessionNotPayable is returned for sessions without an amount due.
	ErrSessionNotPayable = errors.New("payment: session has no amount due")
	// ErrAlreadyPaid is returned when the session settled previously.
	ErrAlreadyPaid = errors.New("payment: session already paid")
	// ErrGatewayDeclined is returned when the gateway rejects the payment.
	ErrGatewayDeclined = errors.New("payment: gateway declined")

	ErrEmptyTransactionID = errors.New("payment: empty transaction id")
	ErrEmptySessionID     = errors.New("payment: empty session id")
)

// Validate checks transaction invariants.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return ErrEmptyTransactionID
	}
	if t.SessionID == "" {
		return ErrEmptySessionID
	}
	switch t.Status {
	case StatusPending, StatusSuccess, StatusFailed:
		return nil
	default:
		return errors.New("payment: invalid transaction status")
	}
}

// TransactionRepository persists payment transactions.
type TransactionRepository interface {
	Create(ctx context.Context, txn *Transaction) error
	UpdateStatus(ctx context.Context, id string, status TransactionStatus, gatewayRef string) (*Transaction, error)
	Get(ctx context.Context, id string) (*Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]Transaction, error)
	FindSuccessfulBySession(ctx context.Context, sessionID string) (*Transaction, error)
}
