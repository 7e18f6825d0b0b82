package parking

import (
	"context"
	"time"
)

// SlotStore holds each slot's current status and sensor mapping.
type SlotStore interface {
	// FindBySensor resolves the slot owning a sensor id. The match is
	// exact; a miss returns ErrUnknownSensor.
	FindBySensor(ctx context.Context, sensorID string) (*Slot, error)
	// UpdateStatus writes a new status and last-updated timestamp.
	UpdateStatus(ctx context.Context, slotID string, status SlotStatus, ts time.Time) error
	// Touch refreshes the last-updated timestamp without changing status.
	Touch(ctx context.Context, slotID string, ts time.Time) error
	// List returns all slots.
	List(ctx context.Context) ([]Slot, error)
}

// SessionStore holds parking sessions keyed by slot.
type SessionStore interface {
	Create(ctx context.Context, slotID, userID string, entry time.Time) (*Session, error)
	// FindActiveBySlot returns the slot's open session, or nil when none.
	FindActiveBySlot(ctx context.Context, slotID string) (*Session, error)
	Close(ctx context.Context, sessionID string, exit time.Time, amountDue int64) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	ListActive(ctx context.Context) ([]Session, error)
	ListByUser(ctx context.Context, userID string) ([]Session, error)
}

// ZoneRates resolves the hourly rate for a slot's owning zone.
type ZoneRates interface {
	HourlyRateForSlot(ctx context.Context, slotID string) (int64, error)
	ListZones(ctx context.Context) ([]Zone, error)
}

// Atomic runs a function inside a transactional boundary. The slot
// status write and the session create/close of one report commit or
// roll back as a single unit.
type Atomic interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
