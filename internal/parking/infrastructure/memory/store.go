package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	parking "campus-parking/internal/parking/domain"
)

// Store is an in-memory reference implementation of the slot, session
// and zone stores. It backs the processor tests and can run the whole
// service without a database.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	slots        map[string]*parking.Slot
	bySensor     map[string]string
	zones        map[string]*parking.Zone
	sessions     map[string]*parking.Session
	activeBySlot map[string]string

	nextSessionSeq int
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		slots:        make(map[string]*parking.Slot),
		bySensor:     make(map[string]string),
		zones:        make(map[string]*parking.Zone),
		sessions:     make(map[string]*parking.Session),
		activeBySlot: make(map[string]string),
	}
}

// PutZone inserts or replaces a zone.
func (s *Store) PutZone(ctx context.Context, zone parking.Zone) error {
	_ = ctx
	if err := zone.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.zones[zone.ID] = &zone
	s.mu.Unlock()
	return nil
}

// PutSlot inserts or replaces a slot. One sensor maps to exactly one
// slot; binding a sensor already owned by another slot is rejected.
func (s *Store) PutSlot(ctx context.Context, slot parking.Slot) error {
	_ = ctx
	if err := slot.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.bySensor[slot.SensorID]; ok && owner != slot.ID {
		return fmt.Errorf("memory store: sensor %s already bound to slot %s", slot.SensorID, owner)
	}
	if existing, ok := s.slots[slot.ID]; ok && existing.SensorID != slot.SensorID {
		delete(s.bySensor, existing.SensorID)
	}
	s.slots[slot.ID] = &slot
	s.bySensor[slot.SensorID] = slot.ID
	return nil
}

// InsertZone satisfies the provisioning zone writer.
func (s *Store) InsertZone(ctx context.Context, zone parking.Zone) error {
	return s.PutZone(ctx, zone)
}

// Insert satisfies the provisioning slot writer.
func (s *Store) Insert(ctx context.Context, slot parking.Slot) error {
	return s.PutSlot(ctx, slot)
}

// FindBySensor resolves a slot by exact sensor id.
func (s *Store) FindBySensor(ctx context.Context, sensorID string) (*parking.Slot, error) {
	_ = ctx
	if sensorID == "" {
		return nil, parking.ErrEmptySensorID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	slotID, ok := s.bySensor[sensorID]
	if !ok {
		return nil, parking.ErrUnknownSensor
	}
	slot := *s.slots[slotID]
	return &slot, nil
}

// UpdateStatus writes a new status and timestamp.
func (s *Store) UpdateStatus(ctx context.Context, slotID string, status parking.SlotStatus, ts time.Time) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[slotID]
	if !ok {
		return parking.ErrSlotNotFound
	}
	switch status {
	case parking.StatusFree, parking.StatusOccupied, parking.StatusUnknown:
	default:
		return parking.ErrInvalidStatus
	}
	slot.Status = status
	slot.LastUpdated = ts
	return nil
}

// Touch refreshes the last-updated timestamp only.
func (s *Store) Touch(ctx context.Context, slotID string, ts time.Time) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[slotID]
	if !ok {
		return parking.ErrSlotNotFound
	}
	slot.LastUpdated = ts
	return nil
}

// List returns all slots.
func (s *Store) List(ctx context.Context) ([]parking.Slot, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := make([]parking.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		slots = append(slots, *slot)
	}
	return slots, nil
}

// Create opens an active session for a slot.
func (s *Store) Create(ctx context.Context, slotID, userID string, entry time.Time) (*parking.Session, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[slotID]; !ok {
		return nil, parking.ErrSlotNotFound
	}
	if _, ok := s.activeBySlot[slotID]; ok {
		return nil, parking.ErrActiveSessionExists
	}
	s.nextSessionSeq++
	session, err := parking.NewSession(fmt.Sprintf("sess-%06d", s.nextSessionSeq), slotID, userID, entry)
	if err != nil {
		return nil, err
	}
	s.sessions[session.ID] = session
	s.activeBySlot[slotID] = session.ID
	return session.Clone(), nil
}

// FindActiveBySlot returns the slot's open session, or nil when none.
func (s *Store) FindActiveBySlot(ctx context.Context, slotID string) (*parking.Session, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID, ok := s.activeBySlot[slotID]
	if !ok {
		return nil, nil
	}
	return s.sessions[sessionID].Clone(), nil
}

// Close ends a session with the given exit time and amount due.
func (s *Store) Close(ctx context.Context, sessionID string, exit time.Time, amountDue int64) (*parking.Session, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, parking.ErrSessionNotFound
	}
	if err := session.Close(exit, amountDue); err != nil {
		return nil, err
	}
	delete(s.activeBySlot, session.SlotID)
	return session.Clone(), nil
}

// Get returns a session by id.
func (s *Store) Get(ctx context.Context, sessionID string) (*parking.Session, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, parking.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// ListActive returns all open sessions.
func (s *Store) ListActive(ctx context.Context) ([]parking.Session, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]parking.Session, 0, len(s.activeBySlot))
	for _, sessionID := range s.activeBySlot {
		sessions = append(sessions, *s.sessions[sessionID].Clone())
	}
	return sessions, nil
}

// ListByUser returns all sessions attached to a user.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]parking.Session, error) {
	_ = ctx
	if userID == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []parking.Session
	for _, session := range s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, *session.Clone())
		}
	}
	return sessions, nil
}

// HourlyRateForSlot resolves the rate of the slot's owning zone.
func (s *Store) HourlyRateForSlot(ctx context.Context, slotID string) (int64, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[slotID]
	if !ok {
		return 0, parking.ErrSlotNotFound
	}
	zone, ok := s.zones[slot.ZoneID]
	if !ok {
		return 0, parking.ErrZoneNotFound
	}
	return zone.HourlyRate, nil
}

// ListZones returns all zones.
func (s *Store) ListZones(ctx context.Context) ([]parking.Zone, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	zones := make([]parking.Zone, 0, len(s.zones))
	for _, zone := range s.zones {
		zones = append(zones, *zone)
	}
	return zones, nil
}

// InTx serializes the function against other transactions and restores
// the previous state when it fails.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	slots        map[string]*parking.Slot
	bySensor     map[string]string
	zones        map[string]*parking.Zone
	sessions     map[string]*parking.Session
	activeBySlot map[string]string
	nextSession  int
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := storeSnapshot{
		slots:        make(map[string]*parking.Slot, len(s.slots)),
		bySensor:     make(map[string]string, len(s.bySensor)),
		zones:        make(map[string]*parking.Zone, len(s.zones)),
		sessions:     make(map[string]*parking.Session, len(s.sessions)),
		activeBySlot: make(map[string]string, len(s.activeBySlot)),
		nextSession:  s.nextSessionSeq,
	}
	for id, slot := range s.slots {
		copy := *slot
		snap.slots[id] = &copy
	}
	for sensor, id := range s.bySensor {
		snap.bySensor[sensor] = id
	}
	for id, zone := range s.zones {
		copy := *zone
		snap.zones[id] = &copy
	}
	for id, session := range s.sessions {
		snap.sessions[id] = session.Clone()
	}
	for slotID, sessionID := range s.activeBySlot {
		snap.activeBySlot[slotID] = sessionID
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = snap.slots
	s.bySensor = snap.bySensor
	s.zones = snap.zones
	s.sessions = snap.sessions
	s.activeBySlot = snap.activeBySlot
	s.nextSessionSeq = snap.nextSession
}
