package auth

// Package auth contains simple hand-written test doubles for the auth
// ports. These are lightweight and suitable for unit tests without
// codegen; use the gomock mocks in internal/mocks when call
// expectations matter.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	apperrors "github.com/voicedesk/console-go/internal/errors"
	"github.com/voicedesk/console-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
	_ ports.AuthBackend     = (*MockBackend)(nil)
)

// MemoryCredentialStore is an in-memory CredentialStore. Optional
// error fields let tests simulate unavailable storage.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	token string
	user  *domainauth.User

	// When set, the corresponding operation returns this error.
	TokenErr    error
	SetTokenErr error
	UserErr     error
	SetUserErr  error
	ClearErr    error
}

// NewMemoryCredentialStore creates an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TokenErr != nil {
		return "", s.TokenErr
	}
	return s.token, nil
}

func (s *MemoryCredentialStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetTokenErr != nil {
		return s.SetTokenErr
	}
	s.token = token
	return nil
}

func (s *MemoryCredentialStore) User(_ context.Context) (*domainauth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UserErr != nil {
		return nil, s.UserErr
	}
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *MemoryCredentialStore) SetUser(_ context.Context, u *domainauth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetUserErr != nil {
		return s.SetUserErr
	}
	if u == nil {
		s.user = nil
		return nil
	}
	cp := *u
	s.user = &cp
	return nil
}

func (s *MemoryCredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.token = ""
	s.user = nil
	return nil
}

// Seed installs a token and profile pair directly, bypassing error
// injection. Useful for restore tests.
func (s *MemoryCredentialStore) Seed(token string, u *domainauth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if u != nil {
		cp := *u
		s.user = &cp
	} else {
		s.user = nil
	}
}

// MockBackend simulates the CRM auth backend with deterministic
// defaults. Any func field overrides the default behavior.
type MockBackend struct {
	LoginFunc    func(ctx context.Context, creds ports.Credentials) (*domainauth.Session, error)
	RegisterFunc func(ctx context.Context, reg ports.Registration) (*domainauth.Session, error)
	LogoutFunc   func(ctx context.Context, token string) error
	ProfileFunc  func(ctx context.Context, token string) (*domainauth.User, error)

	// Deterministic values for predictable testing.
	Email    string
	Password string
	Token    string
	User     domainauth.User

	mu          sync.Mutex
	logoutCalls []string
}

// NewMockBackend creates a MockBackend with sensible defaults.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Email:    "a@b.com",
		Password: "secret",
		Token:    "mock-token-1",
		User: domainauth.User{
			ID:       "mock-user-1",
			Email:    "a@b.com",
			Username: "abee",
			Role:     domainauth.RoleAgent,
			Status:   domainauth.StatusActive,
		},
	}
}

func (b *MockBackend) Login(ctx context.Context, creds ports.Credentials) (*domainauth.Session, error) {
	if b.LoginFunc != nil {
		return b.LoginFunc(ctx, creds)
	}
	if creds.Email != b.Email || creds.Password != b.Password {
		return nil, apperrors.AuthenticationFailed("Invalid email or password")
	}
	return b.session(), nil
}

func (b *MockBackend) Register(ctx context.Context, reg ports.Registration) (*domainauth.Session, error) {
	if b.RegisterFunc != nil {
		return b.RegisterFunc(ctx, reg)
	}
	sess := b.session()
	sess.User.Email = reg.Email
	sess.User.Username = reg.Username
	return sess, nil
}

func (b *MockBackend) Logout(ctx context.Context, token string) error {
	if b.LogoutFunc != nil {
		return b.LogoutFunc(ctx, token)
	}
	b.mu.Lock()
	b.logoutCalls = append(b.logoutCalls, token)
	b.mu.Unlock()
	return nil
}

func (b *MockBackend) Profile(ctx context.Context, token string) (*domainauth.User, error) {
	if b.ProfileFunc != nil {
		return b.ProfileFunc(ctx, token)
	}
	if token != b.Token {
		return nil, apperrors.SessionExpired("")
	}
	u := b.User
	return &u, nil
}

// LogoutCalls returns the tokens passed to default Logout calls.
func (b *MockBackend) LogoutCalls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.logoutCalls))
	copy(out, b.logoutCalls)
	return out
}

func (b *MockBackend) session() *domainauth.Session {
	return &domainauth.Session{
		Token:     b.Token,
		TokenType: "bearer",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      b.User,
	}
}
