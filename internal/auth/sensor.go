package auth

import (
	"crypto/hmac"
	"net/http"
	"strings"
)

// SensorKeyMiddleware authenticates sensor reports with a shared-secret
// API key carried in the X-API-Key header.
type SensorKeyMiddleware struct {
	Key []byte
}

// NewSensorKeyMiddleware constructs sensor auth middleware.
func NewSensorKeyMiddleware(key []byte) *SensorKeyMiddleware {
	return &SensorKeyMiddleware{Key: key}
}

// Wrap enforces the sensor API key.
func (m *SensorKeyMiddleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.Key) == 0 {
			http.Error(w, "sensor auth not configured", http.StatusUnauthorized)
			return
		}
		key := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if key == "" {
			http.Error(w, "missing sensor api key", http.StatusUnauthorized)
			return
		}
		if !hmac.Equal([]byte(key), m.Key) {
			http.Error(w, "invalid sensor api key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
