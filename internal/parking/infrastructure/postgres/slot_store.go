package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	parking "campus-parking/internal/parking/domain"
)

const defaultSlotTable = "parking_slots"

// SlotStore is a Postgres implementation of the slot store.
type SlotStore struct {
	db    *sql.DB
	table string
}

// SlotStoreOption configures the store.
type SlotStoreOption func(*SlotStore)

// WithSlotTable overrides the default table.
func WithSlotTable(table string) SlotStoreOption {
	return func(s *SlotStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewSlotStore constructs a store with defaults.
func NewSlotStore(db *sql.DB, opts ...SlotStoreOption) *SlotStore {
	store := &SlotStore{db: db, table: defaultSlotTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// FindBySensor resolves the slot owning a sensor id. Exact match only.
func (s *SlotStore) FindBySensor(ctx context.Context, sensorID string) (*parking.Slot, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("slot store: nil db")
	}
	if sensorID == "" {
		return nil, parking.ErrEmptySensorID
	}

	query := fmt.Sprintf(`
SELECT id, sensor_id, label, zone_id, status, last_updated
FROM %s
WHERE sensor_id = $1
LIMIT 1`, s.table)

	var slot parking.Slot
	var status string
	row := pick(ctx, s.db).QueryRowContext(ctx, query, sensorID)
	if err := row.Scan(&slot.ID, &slot.SensorID, &slot.Label, &slot.ZoneID, &status, &slot.LastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, parking.ErrUnknownSensor
		}
		return nil, err
	}
	normalized, err := parking.NormalizeStatus(status)
	if err != nil {
		return nil, err
	}
	slot.Status = normalized
	return &slot, nil
}

// UpdateStatus writes a new status and timestamp.
func (s *SlotStore) UpdateStatus(ctx context.Context, slotID string, status parking.SlotStatus, ts time.Time) error {
	if s == nil || s.db == nil {
		return errors.New("slot store: nil db")
	}
	query := fmt.Sprintf(`
UPDATE %s SET status = $2, last_updated = $3
WHERE id = $1`, s.table)

	result, err := pick(ctx, s.db).ExecContext(ctx, query, slotID, string(status), ts.UTC())
	if err != nil {
		return err
	}
	return ensureRowAffected(result, parking.ErrSlotNotFound)
}

// Touch refreshes the last-updated timestamp only.
func (s *SlotStore) Touch(ctx context.Context, slotID string, ts time.Time) error {
	if s == nil || s.db == nil {
		return errors.New("slot store: nil db")
	}
	query := fmt.Sprintf(`
UPDATE %s SET last_updated = $2
WHERE id = $1`, s.table)

	result, err := pick(ctx, s.db).ExecContext(ctx, query, slotID, ts.UTC())
	if err != nil {
		return err
	}
	return ensureRowAffected(result, parking.ErrSlotNotFound)
}

// List returns all slots ordered by label.
func (s *SlotStore) List(ctx context.Context) ([]parking.Slot, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("slot store: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, sensor_id, label, zone_id, status, last_updated
FROM %s
ORDER BY label`, s.table)

	rows, err := pick(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []parking.Slot
	for rows.Next() {
		var slot parking.Slot
		var status string
		if err := rows.Scan(&slot.ID, &slot.SensorID, &slot.Label, &slot.ZoneID, &status, &slot.LastUpdated); err != nil {
			return nil, err
		}
		normalized, err := parking.NormalizeStatus(status)
		if err != nil {
			return nil, err
		}
		slot.Status = normalized
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// Insert provisions a new slot.
func (s *SlotStore) Insert(ctx context.Context, slot parking.Slot) error {
	if s == nil || s.db == nil {
		return errors.New("slot store: nil db")
	}
	if err := slot.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, sensor_id, label, zone_id, status, last_updated)
VALUES ($1, $2, $3, $4, $5, $6)`, s.table)

	_, err := pick(ctx, s.db).ExecContext(ctx, query,
		slot.ID, slot.SensorID, slot.Label, slot.ZoneID, string(slot.Status), slot.LastUpdated.UTC())
	return err
}

func ensureRowAffected(result sql.Result, missing error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return missing
	}
	return nil
}
