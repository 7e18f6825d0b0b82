package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"campus-parking/internal/audit"
	"campus-parking/internal/auth"
	"campus-parking/internal/eventing"
	"campus-parking/internal/observability/metrics"
	parking "campus-parking/internal/parking/domain"
	payment "campus-parking/internal/payment/domain"
)

// Gateway charges a payment and returns the gateway reference.
type Gateway interface {
	Charge(ctx context.Context, transactionID, userID string, amount int64) (string, error)
}

// Service settles closed parking sessions through a payment gateway.
type Service struct {
	transactions payment.TransactionRepository
	sessions     parking.SessionStore
	gateway      Gateway
	auditor      audit.Logger
	logger       *log.Logger
}

type Option func(*Service)

// WithAuditor records payment outcomes in the audit trail.
func WithAuditor(a audit.Logger) Option {
	return func(s *Service) { s.auditor = a }
}

func NewService(transactions payment.TransactionRepository, sessions parking.SessionStore, gateway Gateway, logger *log.Logger, opts ...Option) (*Service, error) {
	if transactions == nil {
		return nil, errors.New("payment: nil transaction repository")
	}
	if sessions == nil {
		return nil, errors.New("payment: nil session store")
	}
	if gateway == nil {
		return nil, errors.New("payment: nil gateway")
	}
	if logger == nil {
		return nil, errors.New("payment: nil logger")
	}
	s := &Service{transactions: transactions, sessions: sessions, gateway: gateway, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Process charges the amount due on a closed session. The session must
// be closed with a computed amount, and not already settled.
func (s *Service) Process(ctx context.Context, sessionID, userID string) (*payment.Transaction, error) {
	if sessionID == "" {
		return nil, payment.ErrEmptySessionID
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Active || session.AmountDue == nil {
		return nil, payment.ErrSessionNotPayable
	}
	prior, err := s.transactions.FindSuccessfulBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return nil, payment.ErrAlreadyPaid
	}

	txn := &payment.Transaction{
		ID:        "txn-" + eventing.NewEventID(),
		SessionID: sessionID,
		UserID:    userID,
		Amount:    *session.AmountDue,
		Status:    payment.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}

	started := time.Now()
	ref, chargeErr := s.gateway.Charge(ctx, txn.ID, userID, txn.Amount)
	if chargeErr != nil {
		metrics.ObservePayment(metrics.ResultError, time.Since(started))
		if _, err := s.transactions.UpdateStatus(ctx, txn.ID, payment.StatusFailed, ""); err != nil {
			s.logger.Printf("payment: mark transaction %s failed: %v", txn.ID, err)
		}
		s.record(ctx, userID, audit.ActionPaymentFailed, txn)
		if errors.Is(chargeErr, payment.ErrGatewayDeclined) {
			return nil, chargeErr
		}
		return nil, fmt.Errorf("payment: charge: %w", chargeErr)
	}

	metrics.ObservePayment(metrics.ResultSuccess, time.Since(started))
	updated, err := s.transactions.UpdateStatus(ctx, txn.ID, payment.StatusSuccess, ref)
	if err != nil {
		return nil, err
	}
	s.record(ctx, userID, audit.ActionPaymentSucceeded, updated)
	return updated, nil
}

// History lists the caller's transactions, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]payment.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

// Receipt returns a settled transaction with its session, for receipts.
func (s *Service) Receipt(ctx context.Context, transactionID, userID string) (*payment.Transaction, *parking.Session, error) {
	txn, err := s.transactions.Get(ctx, transactionID)
	if err != nil {
		return nil, nil, err
	}
	if txn.UserID != "" && txn.UserID != userID {
		return nil, nil, payment.ErrTransactionNotFound
	}
	if txn.Status != payment.StatusSuccess {
		return nil, nil, payment.ErrTransactionNotFound
	}
	session, err := s.sessions.Get(ctx, txn.SessionID)
	if err != nil {
		return nil, nil, err
	}
	return txn, session, nil
}

func (s *Service) record(ctx context.Context, userID, action string, txn *payment.Transaction) {
	if s.auditor == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{
		"sessionId": txn.SessionID,
		"amount":    txn.Amount,
	})
	entry := audit.Entry{
		Actor:         userID,
		Role:          string(auth.RoleFromContext(ctx)),
		Action:        action,
		ResourceType:  audit.ResourceTransaction,
		ResourceID:    txn.ID,
		Metadata:      meta,
		PayloadDigest: audit.DigestJSON(meta),
	}
	if info, ok := audit.RequestFromContext(ctx); ok {
		entry.IP = info.IP
		entry.UserAgent = info.UserAgent
	}
	if err := s.auditor.Log(ctx, entry); err != nil {
		s.logger.Printf("payment: audit %s: %v", action, err)
	}
}
