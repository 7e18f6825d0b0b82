package application

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"

	"campus-parking/internal/audit"
	"campus-parking/internal/auth"
	parking "campus-parking/internal/parking/domain"
)

// ZoneWriter persists new zones.
type ZoneWriter interface {
	InsertZone(ctx context.Context, zone parking.Zone) error
}

// SlotWriter persists new slots.
type SlotWriter interface {
	Insert(ctx context.Context, slot parking.Slot) error
}

// ProvisionZoneRequest defines a zone provisioning payload. Slots may
// be created together with their zone.
type ProvisionZoneRequest struct {
	Zone  ZoneInput   `json:"zone"`
	Slots []SlotInput `json:"slots"`
}

// ZoneInput describes a zone to provision.
type ZoneInput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	HourlyRate int64  `json:"hourly_rate"`
}

// SlotInput describes a slot to provision.
type SlotInput struct {
	ID       string `json:"id"`
	SensorID string `json:"sensor_id"`
	Label    string `json:"label"`
}

// ProvisionZoneResponse summarizes provisioning output.
type ProvisionZoneResponse struct {
	ZoneID  string   `json:"zone_id"`
	SlotIDs []string `json:"slot_ids"`
}

// Service provisions zones and slots.
type Service struct {
	zones   ZoneWriter
	slots   SlotWriter
	auditor audit.Logger
	logger  *log.Logger
}

type Option func(*Service)

// WithAuditor records provisioning actions in the audit trail.
func WithAuditor(a audit.Logger) Option {
	return func(s *Service) { s.auditor = a }
}

// NewService constructs a provisioning service.
func NewService(zones ZoneWriter, slots SlotWriter, logger *log.Logger, opts ...Option) (*Service, error) {
	if zones == nil {
		return nil, errors.New("provisioning: nil zone writer")
	}
	if slots == nil {
		return nil, errors.New("provisioning: nil slot writer")
	}
	if logger == nil {
		return nil, errors.New("provisioning: nil logger")
	}
	s := &Service{zones: zones, slots: slots, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ProvisionZone creates a zone and its initial slots.
func (s *Service) ProvisionZone(ctx context.Context, actor string, req ProvisionZoneRequest) (*ProvisionZoneResponse, error) {
	if err := validateZone(req.Zone); err != nil {
		return nil, err
	}

	zoneID := req.Zone.ID
	if zoneID == "" {
		zoneID = stableID("zone", req.Zone.Name)
	}
	zone := parking.Zone{ID: zoneID, Name: req.Zone.Name, HourlyRate: req.Zone.HourlyRate}
	if err := s.zones.InsertZone(ctx, zone); err != nil {
		return nil, err
	}

	slotIDs, err := s.provisionSlots(ctx, zoneID, req.Slots)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, audit.ActionZoneProvisioned, audit.ResourceZone, zoneID, map[string]any{
		"name":       req.Zone.Name,
		"hourlyRate": req.Zone.HourlyRate,
		"slots":      len(slotIDs),
	})
	return &ProvisionZoneResponse{ZoneID: zoneID, SlotIDs: slotIDs}, nil
}

// ProvisionSlots adds slots to an existing zone.
func (s *Service) ProvisionSlots(ctx context.Context, actor, zoneID string, inputs []SlotInput) ([]string, error) {
	if zoneID == "" {
		return nil, parking.ErrEmptyZoneID
	}
	if len(inputs) == 0 {
		return nil, errors.New("provisioning: slots required")
	}
	slotIDs, err := s.provisionSlots(ctx, zoneID, inputs)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, audit.ActionSlotsProvisioned, audit.ResourceZone, zoneID, map[string]any{
		"slots": slotIDs,
	})
	return slotIDs, nil
}

func (s *Service) provisionSlots(ctx context.Context, zoneID string, inputs []SlotInput) ([]string, error) {
	slotIDs := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if input.SensorID == "" {
			return nil, parking.ErrEmptySensorID
		}
		slotID := input.ID
		if slotID == "" {
			slotID = stableID("slot", zoneID+"|"+input.SensorID)
		}
		slot := parking.Slot{
			ID:       slotID,
			SensorID: input.SensorID,
			Label:    input.Label,
			ZoneID:   zoneID,
			Status:   parking.StatusUnknown,
		}
		if err := s.slots.Insert(ctx, slot); err != nil {
			return nil, err
		}
		slotIDs = append(slotIDs, slotID)
	}
	return slotIDs, nil
}

func validateZone(zone ZoneInput) error {
	if zone.Name == "" {
		return errors.New("provisioning: missing zone name")
	}
	if zone.HourlyRate < 0 {
		return parking.ErrNegativeRate
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor, action, resourceType, resourceID string, meta map[string]any) {
	if s.auditor == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	entry := audit.Entry{
		Actor:         actor,
		Role:          string(auth.RoleFromContext(ctx)),
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		Metadata:      payload,
		PayloadDigest: audit.DigestJSON(payload),
	}
	if info, ok := audit.RequestFromContext(ctx); ok {
		entry.IP = info.IP
		entry.UserAgent = info.UserAgent
	}
	if err := s.auditor.Log(ctx, entry); err != nil {
		s.logger.Printf("provisioning: audit %s: %v", action, err)
	}
}

func stableID(prefix, key string) string {
	sum := sha1.Sum([]byte(key))
	return prefix + "-" + hex.EncodeToString(sum[:8])
}
