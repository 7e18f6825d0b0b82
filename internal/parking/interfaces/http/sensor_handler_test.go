package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-parking/internal/parking/application"
	parking "campus-parking/internal/parking/domain"
	"campus-parking/internal/parking/infrastructure/memory"
)

func newSensorHandler(t *testing.T) (*SensorHandler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.PutZone(ctx, parking.Zone{ID: "zone-a", Name: "Zone A", HourlyRate: 5000}); err != nil {
		t.Fatalf("put zone: %v", err)
	}
	if err := store.PutSlot(ctx, parking.Slot{
		ID:       "slot-1",
		SensorID: "S-001",
		ZoneID:   "zone-a",
		Status:   parking.StatusFree,
	}); err != nil {
		t.Fatalf("put slot: %v", err)
	}
	logger := log.New(io.Discard, "", 0)
	proc, err := application.NewProcessor(store, store, store, store, logger)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	handler, err := NewSensorHandler(proc, logger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, store
}

func postUpdate(t *testing.T, handler http.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/parking/sensors/update", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestSensorHandlerEntry(t *testing.T) {
	handler, _ := newSensorHandler(t)

	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)
	resp := postUpdate(t, handler, `{"sensor_id":"S-001","status":"occupied","timestamp":"`+ts+`"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}

	var result parking.TransitionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Transition != parking.TransitionEntry {
		t.Fatalf("transition=%s, want entry", result.Transition)
	}
	if result.Session == nil {
		t.Fatal("expected a session in the response")
	}
}

func TestSensorHandlerUnknownSensor(t *testing.T) {
	handler, store := newSensorHandler(t)

	resp := postUpdate(t, handler, `{"sensor_id":"S-ZZZ","status":"occupied"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", resp.Code)
	}

	active, _ := store.ListActive(context.Background())
	if len(active) != 0 {
		t.Fatalf("no sessions expected, got %d", len(active))
	}
}

func TestSensorHandlerRejectsBadInput(t *testing.T) {
	handler, _ := newSensorHandler(t)

	cases := []struct {
		name    string
		payload string
	}{
		{"missing sensor id", `{"status":"free"}`},
		{"missing status", `{"sensor_id":"S-001"}`},
		{"unrecognized status", `{"sensor_id":"S-001","status":"vacant"}`},
		{"bad timestamp", `{"sensor_id":"S-001","status":"free","timestamp":"yesterday"}`},
		{"not json", `status=free`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postUpdate(t, handler, tc.payload)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("status=%d, want 400", resp.Code)
			}
		})
	}
}

func TestSensorHandlerExitBeforeEntry(t *testing.T) {
	handler, _ := newSensorHandler(t)

	resp := postUpdate(t, handler, `{"sensor_id":"S-001","status":"occupied"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("entry status=%d body=%s", resp.Code, resp.Body.String())
	}

	// An exit reported before the session opened is a caller fault,
	// not a server one.
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	resp = postUpdate(t, handler, `{"sensor_id":"S-001","status":"free","timestamp":"`+past+`"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", resp.Code)
	}
}

func TestSensorHandlerMethodNotAllowed(t *testing.T) {
	handler, _ := newSensorHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/parking/sensors/update", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d, want 405", resp.Code)
	}
}
