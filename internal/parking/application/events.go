package application

import (
	"time"

	parking "campus-parking/internal/parking/domain"
)

// SlotStatusChanged is published after a slot's status moves.
type SlotStatusChanged struct {
	SlotID         string
	PreviousStatus parking.SlotStatus
	NewStatus      parking.SlotStatus
	OccurredAt     time.Time
}

// SessionOpened is published when an entry transition opens a session.
type SessionOpened struct {
	SessionID  string
	SlotID     string
	EntryTime  time.Time
	OccurredAt time.Time
}

// SessionClosed is published when an exit transition closes a session.
type SessionClosed struct {
	SessionID  string
	SlotID     string
	EntryTime  time.Time
	ExitTime   time.Time
	Fee        parking.FeeBreakdown
	OccurredAt time.Time
}
