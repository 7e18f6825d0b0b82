package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-parking/internal/accounts/application"
	accounts "campus-parking/internal/accounts/domain"
	"campus-parking/internal/auth"
)

// AuthHandler serves the mock SSO endpoints.
type AuthHandler struct {
	service *application.AuthService
}

// NewAuthHandler constructs a handler.
func NewAuthHandler(service *application.AuthService) (*AuthHandler, error) {
	if service == nil {
		return nil, errors.New("auth handler: nil service")
	}
	return &AuthHandler{service: service}, nil
}

// ServeHTTP routes /api/auth endpoints.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/login":
		h.handleLogin(w, r)
	case "/api/auth/logout":
		h.handleLogout(w, r)
	case "/api/auth/me":
		h.handleMe(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type loginRequest struct {
	SSOID string `json:"sso_id"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.SSOID == "" {
		http.Error(w, "sso_id is required", http.StatusBadRequest)
		return
	}

	token, user, err := h.service.Login(r.Context(), req.SSOID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			http.Error(w, "unknown sso id", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{
		Token:    token,
		UserID:   user.ID,
		FullName: user.FullName,
		Role:     user.Role,
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	// JWT auth is stateless; the client simply discards the token.
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "logged out"})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"userId":   userID,
		"fullName": auth.FullNameFromContext(r.Context()),
		"role":     string(auth.RoleFromContext(r.Context())),
	})
}
