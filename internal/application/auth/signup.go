package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-auth-otp/internal/domain"
	"github.com/go-auth-otp/internal/pkg/id"
)

func signupLockKey(email string) string { return "signup:" + email }

// RequestSignup stores the registration as pending and emails a code.
// A repeated request for the same email replaces the previous pending entry.
func (s *service) RequestSignup(ctx context.Context, req SignupRequest) error {
	email := normalizeEmail(req.Email)
	if err := checkPasswordLength(req.Password); err != nil {
		return err
	}
	unlock := s.locks.Lock(signupLockKey(email))
	defer unlock()

	if _, err := s.userByEmail(ctx, email); err == nil {
		return domain.ErrDuplicateAccount
	} else if !errors.Is(err, domain.ErrUnknownAccount) {
		return err
	}

	otp, err := s.generateOTP()
	if err != nil {
		return err
	}
	pending := domain.PendingRegistration{
		OTP:       otp,
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Password:  req.Password,
		CreatedAt: s.now().UTC(),
	}
	if err := s.pending.Set(ctx, email, pending, s.pendingRetention); err != nil {
		return persistence("store pending signup", err)
	}

	s.dispatchOTP(email, signupSubject, otp)
	return nil
}

// ConfirmSignup commits the pending registration when the code matches.
// On any failure the pending entry is left in place so the caller can retry.
func (s *service) ConfirmSignup(ctx context.Context, req ConfirmSignupRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)
	unlock := s.locks.Lock(signupLockKey(email))
	defer unlock()

	pending, err := s.pending.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoPendingRequest
	}
	if err != nil {
		return nil, persistence("load pending signup", err)
	}
	if !matchString(pending.OTP, req.OTP) {
		return nil, domain.ErrInvalidOTP
	}

	// The email index is not a uniqueness constraint, so check again at commit time.
	if _, err := s.userByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateAccount
	} else if !errors.Is(err, domain.ErrUnknownAccount) {
		return nil, err
	}

	hash, err := s.hashPassword(pending.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         pending.Name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Insert(ctx, u); err != nil {
		return nil, persistence("create user", err)
	}
	if err := s.pending.Delete(ctx, email); err != nil {
		slog.Warn("failed to delete pending signup", "email", email, "err", err)
	}
	slog.Info("user registered", "user_id", u.UserID, "email", email)
	return u, nil
}
