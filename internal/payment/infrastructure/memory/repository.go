// Package memory provides an in-memory transaction repository for tests
// and sandbox runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	payment "campus-parking/internal/payment/domain"
)

type Repository struct {
	mu   sync.RWMutex
	byID map[string]*payment.Transaction
}

func NewRepository() *Repository {
	return &Repository{byID: make(map[string]*payment.Transaction)}
}

func (r *Repository) Create(ctx context.Context, txn *payment.Transaction) error {
	if txn == nil {
		return payment.ErrEmptyTransactionID
	}
	if err := txn.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *txn
	r.byID[txn.ID] = &cp
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status payment.TransactionStatus, gatewayRef string) (*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.byID[id]
	if !ok {
		return nil, payment.ErrTransactionNotFound
	}
	txn.Status = status
	if gatewayRef != "" {
		txn.GatewayRef = gatewayRef
	}
	txn.UpdatedAt = time.Now().UTC()
	cp := *txn
	return &cp, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*payment.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	txn, ok := r.byID[id]
	if !ok {
		return nil, payment.ErrTransactionNotFound
	}
	cp := *txn
	return &cp, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]payment.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []payment.Transaction
	for _, txn := range r.byID {
		if txn.UserID == userID {
			out = append(out, *txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) FindSuccessfulBySession(ctx context.Context, sessionID string) (*payment.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, txn := range r.byID {
		if txn.SessionID == sessionID && txn.Status == payment.StatusSuccess {
			cp := *txn
			return &cp, nil
		}
	}
	return nil, nil
}
