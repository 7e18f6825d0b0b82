package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-parking/internal/auth"
	"campus-parking/internal/parking/application"
	parking "campus-parking/internal/parking/domain"
)

// ParkingHandler serves the slot, zone and session listing endpoints.
type ParkingHandler struct {
	slots    parking.SlotStore
	sessions parking.SessionStore
	monitor  *application.MonitorService
}

// NewParkingHandler constructs a handler.
func NewParkingHandler(slots parking.SlotStore, sessions parking.SessionStore, monitor *application.MonitorService) (*ParkingHandler, error) {
	if slots == nil {
		return nil, errors.New("parking handler: nil slot store")
	}
	if sessions == nil {
		return nil, errors.New("parking handler: nil session store")
	}
	if monitor == nil {
		return nil, errors.New("parking handler: nil monitor service")
	}
	return &ParkingHandler{slots: slots, sessions: sessions, monitor: monitor}, nil
}

// ServeHTTP routes the parking read endpoints.
func (h *ParkingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/parking/slots":
		h.handleSlots(w, r)
	case "/api/parking/zones":
		h.handleZones(w, r)
	case "/api/parking/sessions":
		h.handleActiveSessions(w, r)
	case "/api/parking/sessions/me":
		h.handleMySessions(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type slotView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	SensorID    string `json:"sensorId"`
	ZoneID      string `json:"zoneId"`
	Status      string `json:"status"`
	LastUpdated string `json:"lastUpdated"`
}

func (h *ParkingHandler) handleSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.slots.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]slotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, slotView{
			ID:          slot.ID,
			Label:       slot.Label,
			SensorID:    slot.SensorID,
			ZoneID:      slot.ZoneID,
			Status:      string(slot.Status),
			LastUpdated: slot.LastUpdated.UTC().Format(timeLayout),
		})
	}
	writeJSON(w, map[string]any{"slots": views})
}

func (h *ParkingHandler) handleZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.monitor.ZoneAvailability(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"zones": zones})
}

func (h *ParkingHandler) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListActive(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"sessions": sessions})
}

func (h *ParkingHandler) handleMySessions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	sessions, err := h.sessions.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"sessions": sessions})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
