package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	parking "campus-parking/internal/parking/domain"
)

const defaultZoneTable = "parking_zones"

// ZoneRates resolves hourly rates from the zones table.
type ZoneRates struct {
	db        *sql.DB
	zoneTable string
	slotTable string
}

// ZoneRatesOption configures the store.
type ZoneRatesOption func(*ZoneRates)

// WithZoneTable overrides the default zones table.
func WithZoneTable(table string) ZoneRatesOption {
	return func(z *ZoneRates) {
		if table != "" {
			z.zoneTable = table
		}
	}
}

// NewZoneRates constructs the rate lookup.
func NewZoneRates(db *sql.DB, opts ...ZoneRatesOption) *ZoneRates {
	rates := &ZoneRates{db: db, zoneTable: defaultZoneTable, slotTable: defaultSlotTable}
	for _, opt := range opts {
		opt(rates)
	}
	return rates
}

// HourlyRateForSlot joins the slot to its owning zone.
func (z *ZoneRates) HourlyRateForSlot(ctx context.Context, slotID string) (int64, error) {
	if z == nil || z.db == nil {
		return 0, errors.New("zone rates: nil db")
	}
	query := fmt.Sprintf(`
SELECT z.hourly_rate
FROM %s s
JOIN %s z ON z.id = s.zone_id
WHERE s.id = $1`, z.slotTable, z.zoneTable)

	var rate int64
	if err := pick(ctx, z.db).QueryRowContext(ctx, query, slotID).Scan(&rate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, parking.ErrZoneNotFound
		}
		return 0, err
	}
	return rate, nil
}

// ListZones returns all zones ordered by name.
func (z *ZoneRates) ListZones(ctx context.Context) ([]parking.Zone, error) {
	if z == nil || z.db == nil {
		return nil, errors.New("zone rates: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, name, hourly_rate
FROM %s
ORDER BY name`, z.zoneTable)

	rows, err := pick(ctx, z.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []parking.Zone
	for rows.Next() {
		var zone parking.Zone
		if err := rows.Scan(&zone.ID, &zone.Name, &zone.HourlyRate); err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}

// InsertZone provisions a new zone.
func (z *ZoneRates) InsertZone(ctx context.Context, zone parking.Zone) error {
	if z == nil || z.db == nil {
		return errors.New("zone rates: nil db")
	}
	if err := zone.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, name, hourly_rate)
VALUES ($1, $2, $3)`, z.zoneTable)

	_, err := pick(ctx, z.db).ExecContext(ctx, query, zone.ID, zone.Name, zone.HourlyRate)
	return err
}
