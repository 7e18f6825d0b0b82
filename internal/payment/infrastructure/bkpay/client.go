// Package bkpay talks to the campus BKPay gateway.
package bkpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	payment "campus-parking/internal/payment/domain"
)

const defaultTimeout = 10 * time.Second

// Client charges payments through the BKPay HTTP API. The endpoint is
// the full charge URL, e.g. https://bkpay.example/api/mock/bkpay.
type Client struct {
	endpoint string
	apiKey  string
	httpc   *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpc = c
		}
	}
}

// WithAPIKey sets the gateway API key sent on each charge.
func WithAPIKey(key string) Option {
	return func(cl *Client) { cl.apiKey = key }
}

func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("bkpay: empty endpoint url")
	}
	c := &Client{
		endpoint: endpoint,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chargeRequest struct {
	TransactionID string `json:"transactionId"`
	UserID        string `json:"userId,omitempty"`
	Amount        int64  `json:"amount"`
}

type chargeResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// Charge submits one payment and returns the gateway reference on
// success. A 402 from the gateway maps to ErrGatewayDeclined.
func (c *Client) Charge(ctx context.Context, transactionID, userID string, amount int64) (string, error) {
	body, err := json.Marshal(chargeRequest{TransactionID: transactionID, UserID: userID, Amount: amount})
	if err != nil {
		return "", fmt.Errorf("bkpay: encode charge: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("bkpay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("bkpay: charge: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusPaymentRequired:
		return "", payment.ErrGatewayDeclined
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("bkpay: charge returned %d: %s", resp.StatusCode, snippet)
	}

	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("bkpay: decode charge response: %w", err)
	}
	if out.Status != "success" {
		return "", payment.ErrGatewayDeclined
	}
	return out.Reference, nil
}
