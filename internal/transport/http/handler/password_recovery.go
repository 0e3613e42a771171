package handler

import (
	"net/http"

	"github.com/go-auth-otp/internal/application/auth"
)

// PasswordRecoveryHandler handles the reset flow: send, verify, commit.
type PasswordRecoveryHandler struct {
	svc auth.Service
}

func NewPasswordRecoveryHandler(svc auth.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

func (h *PasswordRecoveryHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestReset(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent successfully"})
}

func (h *PasswordRecoveryHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyResetRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.VerifyReset(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP verified"})
}

func (h *PasswordRecoveryHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.CommitResetRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.CommitReset(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Password reset successful"})
}
