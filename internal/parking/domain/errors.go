package parking

import "errors"

var (
	// ErrInvalidStatus is returned for a status outside free/occupied/unknown.
	ErrInvalidStatus = errors.New("parking: invalid slot status")
	// ErrInvalidReport is returned when a sensor report is missing fields.
	ErrInvalidReport = errors.New("parking: invalid sensor report")
	// ErrUnknownSensor is returned when no slot maps to a sensor id.
	ErrUnknownSensor = errors.New("parking: unknown sensor")
	// ErrInvalidInterval is returned when exit time is before entry time.
	ErrInvalidInterval = errors.New("parking: exit before entry")
	// ErrStoreUnavailable marks transient store failures; callers may retry.
	ErrStoreUnavailable = errors.New("parking: store unavailable")

	// ErrSlotNotFound is returned when a slot id does not exist.
	ErrSlotNotFound = errors.New("parking: slot not found")
	// ErrZoneNotFound is returned when a zone lookup misses.
	ErrZoneNotFound = errors.New("parking: zone not found")
	// ErrSessionNotFound is returned when a session id does not exist.
	ErrSessionNotFound = errors.New("parking: session not found")
	// ErrSessionClosed is returned when closing an already closed session.
	ErrSessionClosed = errors.New("parking: session already closed")
	// ErrActiveSessionExists is returned when opening a second active
	// session for the same slot.
	ErrActiveSessionExists = errors.New("parking: active session exists for slot")

	ErrEmptySlotID      = errors.New("parking: empty slot id")
	ErrEmptySensorID    = errors.New("parking: empty sensor id")
	ErrEmptyZoneID      = errors.New("parking: empty zone id")
	ErrEmptySessionID   = errors.New("parking: empty session id")
	ErrNegativeRate     = errors.New("parking: negative hourly rate")
	ErrInvalidEntryTime = errors.New("parking: invalid entry time")
	ErrNilSession       = errors.New("parking: nil session")
)
