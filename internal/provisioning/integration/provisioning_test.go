package integration_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	parkingpg "campus-parking/internal/parking/infrastructure/postgres"
	provisioning "campus-parking/internal/provisioning/application"
	provisioninghttp "campus-parking/internal/provisioning/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestProvisioning_ZoneWithSlots(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := applyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	ctx := context.Background()
	_, _ = db.ExecContext(ctx, "DELETE FROM parking_sessions")
	_, _ = db.ExecContext(ctx, "DELETE FROM parking_slots")
	_, _ = db.ExecContext(ctx, "DELETE FROM parking_zones")

	zones := parkingpg.NewZoneRates(db)
	slots := parkingpg.NewSlotStore(db)
	logger := log.New(os.Stderr, "", 0)
	service, err := provisioning.NewService(zones, slots, logger)
	if err != nil {
		t.Fatalf("provisioning service: %v", err)
	}
	handler, err := provisioninghttp.NewHandler(service)
	if err != nil {
		t.Fatalf("provisioning handler: %v", err)
	}

	req := provisioning.ProvisionZoneRequest{
		Zone: provisioning.ZoneInput{Name: "Zone Test A", HourlyRate: 5000},
		Slots: []provisioning.SlotInput{
			{SensorID: "S-TEST-001", Label: "A-01"},
			{SensorID: "S-TEST-002", Label: "A-02"},
		},
	}
	payload, _ := json.Marshal(req)
	r := httptest.NewRequest(http.MethodPost, "/api/provisioning/zones", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var resp provisioning.ProvisionZoneResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ZoneID == "" || len(resp.SlotIDs) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rate, err := zones.HourlyRateForSlot(ctx, resp.SlotIDs[0])
	if err != nil {
		t.Fatalf("hourly rate: %v", err)
	}
	if rate != 5000 {
		t.Fatalf("expected rate 5000, got %d", rate)
	}

	slot, err := slots.FindBySensor(ctx, "S-TEST-002")
	if err != nil {
		t.Fatalf("find by sensor: %v", err)
	}
	if slot.ZoneID != resp.ZoneID {
		t.Fatalf("slot zone %s, want %s", slot.ZoneID, resp.ZoneID)
	}
}

func applyMigrations(db *sql.DB) error {
	root := projectRoot()
	content, err := os.ReadFile(filepath.Join(root, "migrations", "001_init.sql"))
	if err != nil {
		return err
	}
	_, err = db.Exec(string(content))
	return err
}

func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(filepath.Join(dir, "..", "..", ".."))
}
