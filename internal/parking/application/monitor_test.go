package application

import (
	"context"
	"testing"

	parking "campus-parking/internal/parking/domain"
	"campus-parking/internal/parking/infrastructure/memory"
)

func TestZoneAvailability(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if err := store.PutZone(ctx, parking.Zone{ID: "zone-b", Name: "Zone B", HourlyRate: 3000}); err != nil {
		t.Fatalf("put zone: %v", err)
	}
	if err := store.PutZone(ctx, parking.Zone{ID: "zone-a", Name: "Zone A", HourlyRate: 5000}); err != nil {
		t.Fatalf("put zone: %v", err)
	}

	slots := []parking.Slot{
		{ID: "slot-1", SensorID: "S-001", ZoneID: "zone-a", Status: parking.StatusFree},
		{ID: "slot-2", SensorID: "S-002", ZoneID: "zone-a", Status: parking.StatusOccupied},
		{ID: "slot-3", SensorID: "S-003", ZoneID: "zone-a", Status: parking.StatusUnknown},
		{ID: "slot-4", SensorID: "S-004", ZoneID: "zone-b", Status: parking.StatusFree},
	}
	for _, slot := range slots {
		if err := store.PutSlot(ctx, slot); err != nil {
			t.Fatalf("put slot %s: %v", slot.ID, err)
		}
	}

	monitor, err := NewMonitorService(store, store)
	if err != nil {
		t.Fatalf("new monitor: %v", err)
	}

	zones, err := monitor.ZoneAvailability(ctx)
	if err != nil {
		t.Fatalf("zone availability: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].ZoneID != "zone-a" || zones[1].ZoneID != "zone-b" {
		t.Fatalf("zones not sorted by id: %+v", zones)
	}

	a := zones[0]
	if a.Total != 3 || a.Free != 1 || a.Occupied != 1 || a.Unknown != 1 {
		t.Fatalf("zone-a counts wrong: %+v", a)
	}
	if a.HourlyRate != 5000 {
		t.Fatalf("zone-a rate=%d, want 5000", a.HourlyRate)
	}

	b := zones[1]
	if b.Total != 1 || b.Free != 1 || b.Occupied != 0 || b.Unknown != 0 {
		t.Fatalf("zone-b counts wrong: %+v", b)
	}
}
