package application

import (
	"context"
	"errors"
	"sort"

	parking "campus-parking/internal/parking/domain"
)

// ZoneAvailability aggregates slot counts by status for one zone.
type ZoneAvailability struct {
	ZoneID     string `json:"zoneId"`
	Name       string `json:"name"`
	HourlyRate int64  `json:"hourlyRate"`
	Total      int    `json:"total"`
	Free       int    `json:"free"`
	Occupied   int    `json:"occupied"`
	Unknown    int    `json:"unknown"`
}

// MonitorService feeds dashboard views with zone-level aggregates.
type MonitorService struct {
	slots parking.SlotStore
	rates parking.ZoneRates
}

// NewMonitorService constructs a monitor service.
func NewMonitorService(slots parking.SlotStore, rates parking.ZoneRates) (*MonitorService, error) {
	if slots == nil {
		return nil, errors.New("monitor service: nil slot store")
	}
	if rates == nil {
		return nil, errors.New("monitor service: nil zone rates")
	}
	return &MonitorService{slots: slots, rates: rates}, nil
}

// ZoneAvailability returns per-zone counts of free, occupied and
// unknown slots.
func (s *MonitorService) ZoneAvailability(ctx context.Context) ([]ZoneAvailability, error) {
	zones, err := s.rates.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, err
	}

	byZone := make(map[string]*ZoneAvailability, len(zones))
	result := make([]ZoneAvailability, 0, len(zones))
	for _, zone := range zones {
		result = append(result, ZoneAvailability{ZoneID: zone.ID, Name: zone.Name, HourlyRate: zone.HourlyRate})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ZoneID < result[j].ZoneID })
	for i := range result {
		byZone[result[i].ZoneID] = &result[i]
	}

	for _, slot := range slots {
		agg, ok := byZone[slot.ZoneID]
		if !ok {
			continue
		}
		agg.Total++
		switch slot.Status {
		case parking.StatusFree:
			agg.Free++
		case parking.StatusOccupied:
			agg.Occupied++
		case parking.StatusUnknown:
			agg.Unknown++
		}
	}
	return result, nil
}
