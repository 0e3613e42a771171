package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-auth-otp/internal/domain"
)

func resetLockKey(email string) string { return "reset:" + email }

// RequestReset issues a password-reset code for an existing account,
// replacing any earlier code for the same email.
func (s *service) RequestReset(ctx context.Context, req ResetRequest) error {
	email := normalizeEmail(req.Email)
	unlock := s.locks.Lock(resetLockKey(email))
	defer unlock()

	if _, err := s.userByEmail(ctx, email); err != nil {
		return err
	}

	otp, err := s.generateOTP()
	if err != nil {
		return err
	}
	rec := domain.ResetOTP{OTP: otp, ExpiresAt: s.now().Add(s.resetTTL).UTC()}
	if err := s.resets.Set(ctx, email, rec, s.resetRetention); err != nil {
		return persistence("store reset OTP", err)
	}

	s.dispatchOTP(email, resetSubject, otp)
	return nil
}

// VerifyReset checks a reset code. An expired record is deleted on this check.
// A valid record is kept so the code can be verified again until CommitReset.
func (s *service) VerifyReset(ctx context.Context, req VerifyResetRequest) error {
	email := normalizeEmail(req.Email)
	unlock := s.locks.Lock(resetLockKey(email))
	defer unlock()

	rec, err := s.resets.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNoPendingRequest
	}
	if err != nil {
		return persistence("load reset OTP", err)
	}
	if rec.Expired(s.now()) {
		if err := s.resets.Delete(ctx, email); err != nil {
			slog.Warn("failed to delete expired reset OTP", "email", email, "err", err)
		}
		return domain.ErrOTPExpired
	}
	if !matchNumeric(rec.OTP, req.OTP) {
		return domain.ErrInvalidOTP
	}
	return nil
}

// CommitReset sets the new password and drops the reset record.
// It does not require a prior VerifyReset; sequencing is the caller's job.
func (s *service) CommitReset(ctx context.Context, req CommitResetRequest) error {
	email := normalizeEmail(req.Email)
	if err := checkPasswordLength(req.NewPassword); err != nil {
		return err
	}
	unlock := s.locks.Lock(resetLockKey(email))
	defer unlock()

	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	err = s.userRepo.UpdatePassword(ctx, u.UserID, hash)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrUnknownAccount
	}
	if err != nil {
		return persistence("update password", err)
	}
	if err := s.resets.Delete(ctx, email); err != nil {
		slog.Warn("failed to delete reset OTP", "email", email, "err", err)
	}
	slog.Info("password reset", "user_id", u.UserID)
	return nil
}
