package parking

import "time"

// Session records one vehicle's stay in one slot, from entry to exit.
// A session is active iff it has neither an exit time nor an amount due.
// At most one active session exists per slot at any time.
type Session struct {
	ID        string     `json:"id"`
	SlotID    string     `json:"slotId"`
	UserID    string     `json:"userId,omitempty"` // empty for anonymous sensor-originated entries
	EntryTime time.Time  `json:"entryTime"`
	ExitTime  *time.Time `json:"exitTime,omitempty"`
	AmountDue *int64     `json:"amountDue,omitempty"`
	Active    bool       `json:"active"`
}

// NewSession opens an active session for a slot.
func NewSession(id, slotID, userID string, entry time.Time) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	if slotID == "" {
		return nil, ErrEmptySlotID
	}
	if entry.IsZero() {
		return nil, ErrInvalidEntryTime
	}
	return &Session{
		ID:        id,
		SlotID:    slotID,
		UserID:    userID,
		EntryTime: entry,
		Active:    true,
	}, nil
}

// Close ends the session with the given exit time and computed amount.
// Closing is a one-shot mutation; a closed session never changes again.
func (s *Session) Close(exit time.Time, amountDue int64) error {
	if s == nil {
		return ErrNilSession
	}
	if !s.Active || s.ExitTime != nil || s.AmountDue != nil {
		return ErrSessionClosed
	}
	if exit.Before(s.EntryTime) {
		return ErrInvalidInterval
	}
	s.ExitTime = &exit
	s.AmountDue = &amountDue
	s.Active = false
	return nil
}

// Clone returns a detached copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	copy := *s
	if s.ExitTime != nil {
		exit := *s.ExitTime
		copy.ExitTime = &exit
	}
	if s.AmountDue != nil {
		amount := *s.AmountDue
		copy.AmountDue = &amount
	}
	return &copy
}
