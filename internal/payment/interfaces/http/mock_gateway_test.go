package http

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestMockGatewayConcurrentCharges(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	gateway := NewMockGateway(logger, WithDelay(0))

	const workers = 16
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := strings.NewReader(`{"transactionId":"txn-1","amount":5000}`)
			req := httptest.NewRequest(http.MethodPost, "/api/mock/bkpay", body)
			resp := httptest.NewRecorder()
			gateway.ServeHTTP(resp, req)
			codes[i] = resp.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK && code != http.StatusPaymentRequired {
			t.Fatalf("request %d: unexpected status %d", i, code)
		}
	}
}

func TestMockGatewayRejectsGet(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	gateway := NewMockGateway(logger, WithDelay(0))

	req := httptest.NewRequest(http.MethodGet, "/api/mock/bkpay", nil)
	resp := httptest.NewRecorder()
	gateway.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}
