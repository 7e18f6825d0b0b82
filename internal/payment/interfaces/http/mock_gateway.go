package http

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"time"

	"campus-parking/internal/eventing"
)

// MockGateway simulates the campus BKPay gateway for local runs. It
// succeeds most of the time and occasionally declines with a 402.
type MockGateway struct {
	logger      *log.Logger
	delay       time.Duration
	successRate float64
}

type MockOption func(*MockGateway)

// WithDelay sets the artificial processing delay per charge.
func WithDelay(d time.Duration) MockOption {
	return func(g *MockGateway) { g.delay = d }
}

// WithSuccessRate sets the fraction of charges that succeed.
func WithSuccessRate(rate float64) MockOption {
	return func(g *MockGateway) {
		if rate >= 0 && rate <= 1 {
			g.successRate = rate
		}
	}
}

func NewMockGateway(logger *log.Logger, opts ...MockOption) *MockGateway {
	g := &MockGateway{
		logger:      logger,
		delay:       2 * time.Second,
		successRate: 0.8,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type mockChargeRequest struct {
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount"`
}

func (g *MockGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req mockChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	select {
	case <-time.After(g.delay):
	case <-r.Context().Done():
		return
	}

	// Handlers run concurrently; the top-level source is safe to share.
	if rand.Float64() >= g.successRate {
		g.logger.Printf("bkpay mock: declined transaction %s", req.TransactionID)
		writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"status":  "declined",
			"message": "insufficient funds",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "success",
		"reference": "bkpay-" + eventing.NewEventID(),
	})
}
