package handler

import (
	"net/http"

	"github.com/go-auth-otp/internal/application/auth"
)

// SignupHandler handles the two-step registration flow.
type SignupHandler struct {
	svc auth.Service
}

func NewSignupHandler(svc auth.Service) *SignupHandler { return &SignupHandler{svc: svc} }

func (h *SignupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestSignup(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent to your email. Please verify to complete signup."})
}

func (h *SignupHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.ConfirmSignupRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.svc.ConfirmSignup(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "User registered successfully"})
}
