package handler

import (
	"net/http"

	"github.com/go-auth-otp/internal/application/auth"
	"github.com/go-auth-otp/internal/transport/http/middleware"
)

// SessionHandler handles login and the token-protected profile endpoint.
type SessionHandler struct {
	svc auth.Service
}

func NewSessionHandler(svc auth.Service) *SessionHandler { return &SessionHandler{svc: svc} }

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Message: "Login successful", Token: result.Token})
}

// Protected must be mounted behind middleware.Auth.
func (h *SessionHandler) Protected(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "Token is required")
		return
	}
	u, err := h.svc.Profile(r.Context(), claims.UserID, claims.TokenVersion)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{
		Message: "Protected route accessed",
		UserID:  u.UserID,
		Name:    u.Name,
	})
}
