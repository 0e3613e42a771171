package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-auth-otp/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Login checks the password and issues a session token. The email index is
// eventually consistent, so the user is re-read by id before the password and
// token version are used.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	indexed, err := s.userByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, indexed.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnknownAccount
	}
	if err != nil {
		return nil, persistence("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	token, err := s.jwtProvider.Sign(u.UserID, u.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &LoginResult{Token: token, User: u}, nil
}

// Profile resolves the user behind a verified session token. Tokens minted
// before the user's last password reset are rejected.
func (s *service) Profile(ctx context.Context, userID string, tokenVersion int) (*domain.User, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnknownAccount
	}
	if err != nil {
		return nil, persistence("load user", err)
	}
	if tokenVersion < u.TokenVersion {
		return nil, domain.ErrInvalidToken
	}
	return u, nil
}
