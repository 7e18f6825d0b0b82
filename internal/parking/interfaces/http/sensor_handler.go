package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"campus-parking/internal/observability/metrics"
	"campus-parking/internal/parking/application"
	parking "campus-parking/internal/parking/domain"
)

// SensorHandler ingests occupancy reports from physical sensors.
type SensorHandler struct {
	processor *application.Processor
	logger    *log.Logger
}

// NewSensorHandler constructs a sensor ingest handler.
func NewSensorHandler(processor *application.Processor, logger *log.Logger) (*SensorHandler, error) {
	if processor == nil {
		return nil, errors.New("sensor handler: nil processor")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SensorHandler{processor: processor, logger: logger}, nil
}

type sensorUpdateRequest struct {
	SensorID  string `json:"sensor_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ServeHTTP handles POST /api/parking/sensors/update.
func (h *SensorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveIngest(result, time.Since(start))
	}()

	var req sensorUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		result = metrics.ResultError
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.SensorID == "" || req.Status == "" {
		result = metrics.ResultError
		http.Error(w, "sensor_id and status are required", http.StatusBadRequest)
		return
	}

	var reportedAt time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			result = metrics.ResultError
			http.Error(w, "timestamp must be RFC 3339", http.StatusBadRequest)
			return
		}
		reportedAt = parsed.UTC()
	}

	transition, err := h.processor.ProcessReport(r.Context(), application.Report{
		SensorID:  req.SensorID,
		Status:    req.Status,
		Timestamp: reportedAt,
	})
	if err != nil {
		result = metrics.ResultError
		h.logger.Printf("sensor update failed: sensor=%s: %v", req.SensorID, err)
		respondProcessError(w, err)
		return
	}

	metrics.ObserveTransition(string(transition.Transition))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(transition)
}

func respondProcessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, parking.ErrInvalidReport), errors.Is(err, parking.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, parking.ErrInvalidInterval):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, parking.ErrUnknownSensor):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, parking.ErrStoreUnavailable):
		http.Error(w, "store unavailable, retry later", http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
