package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-auth-otp/internal/config"
	"github.com/go-auth-otp/internal/domain"
	jwtinfra "github.com/go-auth-otp/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogin_UnknownAccount(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, domain.ErrNotFound)
	f := newFixture(t, us, &mockSigner{})

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "nobody@x.com", Password: "pw1"})
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
}

func TestLogin_CorrectThenWrongThenCorrect(t *testing.T) {
	us := &mockUserStore{}
	u := &domain.User{UserID: "u1", Email: "al@x.com", PasswordHash: hashFor(t, "pw1"), TokenVersion: 2}
	us.On("GetByEmail", mock.Anything, "al@x.com").Return(u, nil)
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	signer := &mockSigner{}
	signer.On("Sign", "u1", 2).Return("signed-token", nil)
	f := newFixture(t, us, signer)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, LoginRequest{Email: "al@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", res.Token)
	assert.Equal(t, "u1", res.User.UserID)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "al@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// No lockout accumulates.
	_, err = f.svc.Login(ctx, LoginRequest{Email: "al@x.com", Password: "pw1"})
	assert.NoError(t, err)
	signer.AssertNumberOfCalls(t, "Sign", 2)
}

func TestLogin_SignerFailure(t *testing.T) {
	us := &mockUserStore{}
	u := &domain.User{UserID: "u1", PasswordHash: hashFor(t, "pw1")}
	us.On("GetByEmail", mock.Anything, "al@x.com").Return(u, nil)
	us.On("Get", mock.Anything, "u1").Return(u, nil)
	signer := &mockSigner{}
	signer.On("Sign", "u1", 0).Return("", errors.New("no key"))
	f := newFixture(t, us, signer)

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "al@x.com", Password: "pw1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_UsesConsistentReadAfterIndexLookup(t *testing.T) {
	us := &mockUserStore{}
	// The index still serves the record from before the last reset.
	us.On("GetByEmail", mock.Anything, "al@x.com").
		Return(&domain.User{UserID: "u1", PasswordHash: hashFor(t, "old"), TokenVersion: 0}, nil)
	us.On("Get", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", PasswordHash: hashFor(t, "new"), TokenVersion: 1}, nil)
	signer := &mockSigner{}
	signer.On("Sign", "u1", 1).Return("fresh-token", nil)
	f := newFixture(t, us, signer)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginRequest{Email: "al@x.com", Password: "old"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	res, err := f.svc.Login(ctx, LoginRequest{Email: "al@x.com", Password: "new"})
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", res.Token)
	signer.AssertExpectations(t)
}

func TestLogin_UserVanishedBetweenReads(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "al@x.com").Return(&domain.User{UserID: "u1"}, nil)
	us.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)
	f := newFixture(t, us, &mockSigner{})

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "al@x.com", Password: "pw1"})
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
}

// --- Profile ---

func TestProfile(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Name: "Al", TokenVersion: 1}, nil)
	us.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)
	us.On("Get", mock.Anything, "broken").Return(nil, errors.New("timeout"))
	f := newFixture(t, us, nil)
	ctx := context.Background()

	u, err := f.svc.Profile(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Al", u.Name)

	_, err = f.svc.Profile(ctx, "u1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = f.svc.Profile(ctx, "gone", 0)
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)

	_, err = f.svc.Profile(ctx, "broken", 0)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

// --- full lifecycle ---

func TestLifecycle_SignupLoginResetInvalidatesOldTokens(t *testing.T) {
	users := newFakeUserStore()
	provider, err := jwtinfra.NewProvider(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour})
	require.NoError(t, err)
	f := newFixture(t, users, provider)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestSignup(ctx, SignupRequest{Name: "Al", Email: "al@x.com", Password: "pw1"}))
	assert.Equal(t, "Your OTP is: 123456", f.mail.next(t).body)
	_, err = f.svc.ConfirmSignup(ctx, ConfirmSignupRequest{Email: "al@x.com", OTP: "123456"})
	require.NoError(t, err)
	assert.Equal(t, 1, users.count())

	res, err := f.svc.Login(ctx, LoginRequest{Email: "al@x.com", Password: "pw1"})
	require.NoError(t, err)
	claims, err := provider.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.UserID, claims.UserID)

	f.otp = "777777"
	require.NoError(t, f.svc.RequestReset(ctx, ResetRequest{Email: "al@x.com"}))
	require.NoError(t, f.svc.VerifyReset(ctx, VerifyResetRequest{Email: "al@x.com", OTP: "777777"}))
	require.NoError(t, f.svc.CommitReset(ctx, CommitResetRequest{Email: "al@x.com", NewPassword: "pw2"}))

	_, err = f.svc.Profile(ctx, claims.UserID, claims.TokenVersion)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "al@x.com", Password: "pw1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	res, err = f.svc.Login(ctx, LoginRequest{Email: "al@x.com", Password: "pw2"})
	require.NoError(t, err)
	claims, err = provider.Verify(res.Token)
	require.NoError(t, err)
	u, err := f.svc.Profile(ctx, claims.UserID, claims.TokenVersion)
	require.NoError(t, err)
	assert.Equal(t, "Al", u.Name)

	// A second signup for the committed email is rejected.
	err = f.svc.RequestSignup(ctx, SignupRequest{Name: "Al", Email: "al@x.com", Password: "pw3"})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)
}
