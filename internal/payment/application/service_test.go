package application

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"campus-parking/internal/audit"
	"campus-parking/internal/auth"
	parking "campus-parking/internal/parking/domain"
	parkingmem "campus-parking/internal/parking/infrastructure/memory"
	payment "campus-parking/internal/payment/domain"
	paymentmem "campus-parking/internal/payment/infrastructure/memory"
)

type stubGateway struct {
	ref string
	err error
}

func (g stubGateway) Charge(_ context.Context, _, _ string, _ int64) (string, error) {
	return g.ref, g.err
}

func closedSession(t *testing.T, store *parkingmem.Store) *parking.Session {
	t.Helper()
	ctx := context.Background()
	if err := store.PutZone(ctx, parking.Zone{ID: "zone-a", Name: "Zone A", HourlyRate: 5000}); err != nil {
		t.Fatalf("put zone: %v", err)
	}
	if err := store.PutSlot(ctx, parking.Slot{ID: "slot-1", SensorID: "S-001", ZoneID: "zone-a", Status: parking.StatusFree}); err != nil {
		t.Fatalf("put slot: %v", err)
	}
	entry := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	session, err := store.Create(ctx, "slot-1", "user-1", entry)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	closed, err := store.Close(ctx, session.ID, entry.Add(2*time.Hour), 10000)
	if err != nil {
		t.Fatalf("close session: %v", err)
	}
	return closed
}

func newTestService(t *testing.T, store *parkingmem.Store, gateway Gateway) *Service {
	t.Helper()
	service, err := NewService(paymentmem.NewRepository(), store, gateway, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestProcessChargesClosedSession(t *testing.T) {
	store := parkingmem.NewStore()
	session := closedSession(t, store)
	service := newTestService(t, store, stubGateway{ref: "bkpay-ref-1"})

	txn, err := service.Process(context.Background(), session.ID, "user-1")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if txn.Status != payment.StatusSuccess {
		t.Fatalf("status=%s, want success", txn.Status)
	}
	if txn.Amount != 10000 {
		t.Fatalf("amount=%d, want 10000", txn.Amount)
	}
	if txn.GatewayRef != "bkpay-ref-1" {
		t.Fatalf("gateway ref=%s", txn.GatewayRef)
	}
}

func TestProcessRejectsSecondPayment(t *testing.T) {
	store := parkingmem.NewStore()
	session := closedSession(t, store)
	service := newTestService(t, store, stubGateway{ref: "bkpay-ref-1"})
	ctx := context.Background()

	if _, err := service.Process(ctx, session.ID, "user-1"); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	_, err := service.Process(ctx, session.ID, "user-1")
	if !errors.Is(err, payment.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestProcessRejectsActiveSession(t *testing.T) {
	store := parkingmem.NewStore()
	ctx := context.Background()
	if err := store.PutZone(ctx, parking.Zone{ID: "zone-a", Name: "Zone A", HourlyRate: 5000}); err != nil {
		t.Fatalf("put zone: %v", err)
	}
	if err := store.PutSlot(ctx, parking.Slot{ID: "slot-1", SensorID: "S-001", ZoneID: "zone-a", Status: parking.StatusOccupied}); err != nil {
		t.Fatalf("put slot: %v", err)
	}
	session, err := store.Create(ctx, "slot-1", "user-1", time.Now())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	service := newTestService(t, store, stubGateway{ref: "bkpay-ref-1"})

	_, err = service.Process(ctx, session.ID, "user-1")
	if !errors.Is(err, payment.ErrSessionNotPayable) {
		t.Fatalf("expected ErrSessionNotPayable, got %v", err)
	}
}

func TestProcessDeclinedChargeMarksFailed(t *testing.T) {
	store := parkingmem.NewStore()
	session := closedSession(t, store)
	service := newTestService(t, store, stubGateway{err: payment.ErrGatewayDeclined})
	ctx := context.Background()

	_, err := service.Process(ctx, session.ID, "user-1")
	if !errors.Is(err, payment.ErrGatewayDeclined) {
		t.Fatalf("expected ErrGatewayDeclined, got %v", err)
	}

	history, err := service.History(ctx, "user-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Status != payment.StatusFailed {
		t.Fatalf("expected one failed transaction, got %+v", history)
	}
}

func TestProcessUnknownSession(t *testing.T) {
	store := parkingmem.NewStore()
	service := newTestService(t, store, stubGateway{ref: "bkpay-ref-1"})

	_, err := service.Process(context.Background(), "sess-missing", "user-1")
	if !errors.Is(err, parking.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

type captureAuditor struct {
	entries []audit.Entry
}

func (a *captureAuditor) Log(_ context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return nil
}

func TestProcessAuditsActorRole(t *testing.T) {
	store := parkingmem.NewStore()
	session := closedSession(t, store)
	auditor := &captureAuditor{}
	service, err := NewService(paymentmem.NewRepository(), store, stubGateway{ref: "bkpay-ref-1"},
		log.New(io.Discard, "", 0), WithAuditor(auditor))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx := auth.WithIdentity(context.Background(), "user-1", auth.RoleStudent, "Sinh Vien A")
	if _, err := service.Process(ctx, session.ID, "user-1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(auditor.entries) != 1 {
		t.Fatalf("entries=%d, want 1", len(auditor.entries))
	}
	entry := auditor.entries[0]
	if entry.Action != audit.ActionPaymentSucceeded {
		t.Fatalf("action=%s, want %s", entry.Action, audit.ActionPaymentSucceeded)
	}
	if entry.Role != string(auth.RoleStudent) {
		t.Fatalf("role=%q, want student", entry.Role)
	}
	if entry.Actor != "user-1" {
		t.Fatalf("actor=%q, want user-1", entry.Actor)
	}
}
