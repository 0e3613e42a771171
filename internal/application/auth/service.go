package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-auth-otp/internal/domain"
	"github.com/go-auth-otp/internal/pkg/keylock"
	"golang.org/x/crypto/bcrypt"
)

const (
	signupSubject = "Verify your email"
	resetSubject  = "OTP for Password Reset"

	defaultResetOTPTTL = 5 * time.Minute
	retentionMargin    = time.Minute
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

type Service interface {
	RequestSignup(ctx context.Context, req SignupRequest) error
	ConfirmSignup(ctx context.Context, req ConfirmSignupRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Profile(ctx context.Context, userID string, tokenVersion int) (*domain.User, error)
	RequestReset(ctx context.Context, req ResetRequest) error
	VerifyReset(ctx context.Context, req VerifyResetRequest) error
	CommitReset(ctx context.Context, req CommitResetRequest) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Insert(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// recordStore is one ephemeral OTP pool keyed by normalized email.
// Get returns an error wrapping domain.ErrNotFound when the key is absent.
type recordStore[T any] interface {
	Get(ctx context.Context, key string) (T, error)
	Set(ctx context.Context, key string, v T, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenSigner interface {
	Sign(userID string, tokenVersion int) (string, error)
}

type ServiceDeps struct {
	UserRepo       userStore
	PendingSignups recordStore[domain.PendingRegistration]
	ResetOTPs      recordStore[domain.ResetOTP]
	Mailer         mailer
	JWTProvider    tokenSigner
	BcryptCost     int
	ResetOTPTTL    time.Duration
	// ResetRecordRetention is raised above ResetOTPTTL when not longer; 0 keeps records until deleted.
	ResetRecordRetention time.Duration
	// PendingSignupRetention of 0 keeps pending signups until confirmed.
	PendingSignupRetention time.Duration
	// Now and GenerateOTP default to time.Now and GenerateOTP.
	Now         func() time.Time
	GenerateOTP func() (string, error)
}

type service struct {
	userRepo         userStore
	pending          recordStore[domain.PendingRegistration]
	resets           recordStore[domain.ResetOTP]
	mailer           mailer
	jwtProvider      tokenSigner
	bcryptCost       int
	resetTTL         time.Duration
	resetRetention   time.Duration
	pendingRetention time.Duration
	now              func() time.Time
	generateOTP      func() (string, error)
	locks            *keylock.Locker
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		userRepo:         deps.UserRepo,
		pending:          deps.PendingSignups,
		resets:           deps.ResetOTPs,
		mailer:           deps.Mailer,
		jwtProvider:      deps.JWTProvider,
		bcryptCost:       deps.BcryptCost,
		resetTTL:         deps.ResetOTPTTL,
		resetRetention:   deps.ResetRecordRetention,
		pendingRetention: deps.PendingSignupRetention,
		now:              deps.Now,
		generateOTP:      deps.GenerateOTP,
		locks:            keylock.New(),
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.resetTTL <= 0 {
		s.resetTTL = defaultResetOTPTTL
	}
	// Stores purge at the retention deadline, so the record must outlive the
	// code or an expired code would read as no request at all.
	if s.resetRetention > 0 && s.resetRetention <= s.resetTTL {
		s.resetRetention = s.resetTTL + retentionMargin
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.generateOTP == nil {
		s.generateOTP = GenerateOTP
	}
	return s
}

// userByEmail maps a missing user to domain.ErrUnknownAccount and any other
// store failure to domain.ErrPersistence.
func (s *service) userByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnknownAccount
	}
	if err != nil {
		return nil, persistence("look up user", err)
	}
	return u, nil
}

func (s *service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// dispatchOTP emails the code without blocking the caller. Delivery failures
// are logged and never change the outcome of the operation that issued the code.
func (s *service) dispatchOTP(to, subject, otp string) {
	go func() {
		if err := s.mailer.SendEmail(to, subject, "Your OTP is: "+otp); err != nil {
			slog.Warn("failed to send OTP email", "email", to, "subject", subject, "err", err)
			return
		}
		slog.Info("OTP email sent", "email", to, "subject", subject)
	}()
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPasswordLength(password string) error {
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes: %w", maxPasswordBytes, domain.ErrBadRequest)
	}
	return nil
}
