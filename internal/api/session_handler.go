package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
)

type SessionHandler struct {
	sessions SessionService
	timeout  time.Duration
}

func NewSessionHandler(sessions SessionService, timeout time.Duration) *SessionHandler {
	return &SessionHandler{sessions: sessions, timeout: timeout}
}

type SessionResponseDTO struct {
	Authenticated bool                `json:"authenticated"`
	Role          domain.Role         `json:"role,omitempty"`
	User          *domain.UserSession `json:"user,omitempty"`
}

func sessionResponse(u domain.UserSession) SessionResponseDTO {
	return SessionResponseDTO{Authenticated: true, Role: u.EffectiveRole(), User: &u}
}

// POST /api/v1/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form session.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	u, err := h.sessions.Authenticate(ctx, form)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(u))
}

// POST /api/v1/session/register
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form session.RegisterForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	email, err := h.sessions.Register(ctx, form)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"email":   email,
		"message": "User registered successfully!",
	})
}

// GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := h.sessions.Current()
	if !ok {
		respondJSON(w, http.StatusOK, SessionResponseDTO{})
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(u))
}

// DELETE /api/v1/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
