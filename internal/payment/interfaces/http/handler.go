// Package http exposes the payment endpoints.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"campus-parking/internal/audit"
	"campus-parking/internal/auth"
	parking "campus-parking/internal/parking/domain"
	"campus-parking/internal/payment/application"
	payment "campus-parking/internal/payment/domain"
	"campus-parking/internal/payment/interfaces"
)

// Handler serves /api/payment/* requests.
type Handler struct {
	service *application.Service
	logger  *log.Logger
}

func NewHandler(service *application.Service, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("payment http: nil service")
	}
	if logger == nil {
		return nil, errors.New("payment http: nil logger")
	}
	return &Handler{service: service, logger: logger}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/payment")
	switch {
	case path == "/process" && r.Method == http.MethodPost:
		h.process(w, r)
	case path == "/history" && r.Method == http.MethodGet:
		h.history(w, r)
	case strings.HasPrefix(path, "/receipts/") && strings.HasSuffix(path, ".pdf") && r.Method == http.MethodGet:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/receipts/"), ".pdf")
		h.receipt(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type processRequest struct {
	SessionID string `json:"sessionId"`
}

type transactionView struct {
	ID         string `json:"id"`
	SessionID  string `json:"sessionId"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	GatewayRef string `json:"gatewayRef,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func toTransactionView(txn payment.Transaction) transactionView {
	return transactionView{
		ID:         txn.ID,
		SessionID:  txn.SessionID,
		Amount:     txn.Amount,
		Status:     string(txn.Status),
		GatewayRef: txn.GatewayRef,
		CreatedAt:  txn.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  txn.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	userID := auth.UserIDFromContext(r.Context())
	ctx := audit.WithRequest(r.Context(), r)

	txn, err := h.service.Process(ctx, req.SessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, parking.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, payment.ErrSessionNotPayable):
			writeError(w, http.StatusConflict, "session has no amount due")
		case errors.Is(err, payment.ErrAlreadyPaid):
			writeError(w, http.StatusConflict, "session already paid")
		case errors.Is(err, payment.ErrGatewayDeclined):
			writeError(w, http.StatusPaymentRequired, "payment declined")
		default:
			h.logger.Printf("payment process: %v", err)
			writeError(w, http.StatusBadGateway, "payment gateway unavailable")
		}
		return
	}
	writeJSON(w, http.StatusOK, toTransactionView(*txn))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	txns, err := h.service.History(r.Context(), userID)
	if err != nil {
		h.logger.Printf("payment history: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	views := make([]transactionView, 0, len(txns))
	for _, txn := range txns {
		views = append(views, toTransactionView(txn))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request, id string) {
	userID := auth.UserIDFromContext(r.Context())
	txn, session, err := h.service.Receipt(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "receipt not found")
			return
		}
		h.logger.Printf("payment receipt: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	data, err := interfaces.BuildReceiptPDF(txn, session)
	if err != nil {
		h.logger.Printf("payment receipt render: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
