package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-auth-otp/internal/domain"
	"github.com/go-auth-otp/internal/infrastructure/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Insert(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID string, tokenVersion int) (string, error) {
	args := m.Called(userID, tokenVersion)
	return args.String(0), args.Error(1)
}

type sentMail struct{ to, subject, body string }

// fakeMailer captures asynchronous sends on a channel.
type fakeMailer struct {
	sent chan sentMail
	err  error
}

func newFakeMailer() *fakeMailer { return &fakeMailer{sent: make(chan sentMail, 64)} }

func (m *fakeMailer) SendEmail(to, subject, body string) error {
	m.sent <- sentMail{to: to, subject: subject, body: body}
	return m.err
}

func (m *fakeMailer) next(t *testing.T) sentMail {
	t.Helper()
	select {
	case got := <-m.sent:
		return got
	case <-time.After(time.Second):
		t.Fatal("no email was sent")
		return sentMail{}
	}
}

// fakeUserStore is a concurrency-safe in-memory user store.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*domain.User{}}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (f *fakeUserStore) Get(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
func (f *fakeUserStore) Insert(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.UserID]; ok {
		return domain.ErrConflict
	}
	cp := *u
	f.users[u.UserID] = &cp
	return nil
}
func (f *fakeUserStore) UpdatePassword(_ context.Context, userID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	u.TokenVersion++
	return nil
}
func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// --- fixture ---

type fixture struct {
	svc     Service
	pending *memory.Store[domain.PendingRegistration]
	resets  *memory.Store[domain.ResetOTP]
	mail    *fakeMailer
	otp     string
	now     time.Time
}

func newFixture(t *testing.T, users userStore, signer tokenSigner) *fixture {
	t.Helper()
	return newFixtureWith(t, users, signer, nil)
}

// newFixtureWith lets a test adjust the service deps before construction.
func newFixtureWith(t *testing.T, users userStore, signer tokenSigner, adjust func(*ServiceDeps)) *fixture {
	t.Helper()
	f := &fixture{
		pending: memory.NewStore[domain.PendingRegistration](),
		resets:  memory.NewStore[domain.ResetOTP](),
		mail:    newFakeMailer(),
		otp:     "123456",
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	deps := ServiceDeps{
		UserRepo:       users,
		PendingSignups: f.pending,
		ResetOTPs:      f.resets,
		Mailer:         f.mail,
		JWTProvider:    signer,
		BcryptCost:     bcrypt.MinCost,
		ResetOTPTTL:    5 * time.Minute,
		Now:            func() time.Time { return f.now },
		GenerateOTP:    func() (string, error) { return f.otp, nil },
	}
	if adjust != nil {
		adjust(&deps)
	}
	f.svc = NewService(deps)
	return f
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}
