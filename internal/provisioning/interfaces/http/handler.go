package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"campus-parking/internal/audit"
	"campus-parking/internal/auth"
	parking "campus-parking/internal/parking/domain"
	provisioning "campus-parking/internal/provisioning/application"
)

// Handler handles zone and slot provisioning requests.
type Handler struct {
	service *provisioning.Service
}

// NewHandler constructs a provisioning handler.
func NewHandler(service *provisioning.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("provisioning handler: nil service")
	}
	return &Handler{service: service}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/provisioning")
	switch path {
	case "/zones":
		h.provisionZone(w, r)
	case "/slots":
		h.provisionSlots(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) provisionZone(w http.ResponseWriter, r *http.Request) {
	var req provisioning.ProvisionZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	actor := auth.UserIDFromContext(r.Context())
	ctx := audit.WithRequest(r.Context(), r)

	resp, err := h.service.ProvisionZone(ctx, actor, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

type provisionSlotsRequest struct {
	ZoneID string                   `json:"zone_id"`
	Slots  []provisioning.SlotInput `json:"slots"`
}

func (h *Handler) provisionSlots(w http.ResponseWriter, r *http.Request) {
	var req provisionSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	actor := auth.UserIDFromContext(r.Context())
	ctx := audit.WithRequest(r.Context(), r)

	slotIDs, err := h.service.ProvisionSlots(ctx, actor, req.ZoneID, req.Slots)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, parking.ErrZoneNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string][]string{"slot_ids": slotIDs})
}
