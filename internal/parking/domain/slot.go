package parking

import (
	"strings"
	"time"
)

// SlotStatus is the occupancy state reported by a slot's sensor.
type SlotStatus string

const (
	StatusFree     SlotStatus = "free"
	StatusOccupied SlotStatus = "occupied"
	StatusUnknown  SlotStatus = "unknown"
)

// NormalizeStatus lowercases a raw sensor status and validates it.
// Anything outside the three known states is rejected, never stored.
func NormalizeStatus(value string) (SlotStatus, error) {
	switch SlotStatus(strings.ToLower(strings.TrimSpace(value))) {
	case StatusFree:
		return StatusFree, nil
	case StatusOccupied:
		return StatusOccupied, nil
	case StatusUnknown:
		return StatusUnknown, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Slot is a single physical parking space monitored by one sensor.
// Exactly one slot owns a given sensor id.
type Slot struct {
	ID          string
	SensorID    string
	Label       string
	ZoneID      string
	Status      SlotStatus
	LastUpdated time.Time
}

// Validate checks slot invariants.
func (s Slot) Validate() error {
	if s.ID == "" {
		return ErrEmptySlotID
	}
	if s.SensorID == "" {
		return ErrEmptySensorID
	}
	switch s.Status {
	case StatusFree, StatusOccupied, StatusUnknown:
		return nil
	default:
		return ErrInvalidStatus
	}
}
