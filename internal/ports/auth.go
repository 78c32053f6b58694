package ports

// Package ports defines interfaces (hexagonal ports) for session
// behavior. Implementations live in internal/adapters; orchestration
// in internal/service.

import (
	"context"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
)

// CredentialStore is durable persistence for exactly two values: the
// bearer token and the serialized cached profile. It is the only
// state that survives a gateway restart.
//
// Absent values are reported as zero values, never as errors, and a
// store backed by unavailable storage degrades to no-ops rather than
// failing. An unreadable cached profile behaves as if absent.
type CredentialStore interface {
	// Token returns the persisted bearer token, or "" when absent.
	Token(ctx context.Context) (string, error)

	// SetToken overwrites the persisted token.
	SetToken(ctx context.Context, token string) error

	// User returns the cached profile, or nil when absent or unreadable.
	User(ctx context.Context) (*domainauth.User, error)

	// SetUser serializes and overwrites the cached profile.
	SetUser(ctx context.Context, u *domainauth.User) error

	// Clear removes both entries. No partial pair is observable by
	// reads issued after Clear returns.
	Clear(ctx context.Context) error
}

// Credentials are the inputs for a password login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the inputs for creating a new account.
type Registration struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// AuthBackend is the remote auth collaborator: the CRM backend's
// /auth endpoints, spoken as JSON over HTTP.
type AuthBackend interface {
	// Login exchanges credentials for a session.
	Login(ctx context.Context, creds Credentials) (*domainauth.Session, error)

	// Register creates an account and returns a session, mirroring Login.
	Register(ctx context.Context, reg Registration) (*domainauth.Session, error)

	// Logout invalidates the token server-side. Best effort; callers
	// treat any outcome as success for local purposes.
	Logout(ctx context.Context, token string) error

	// Profile fetches the current user for the token.
	Profile(ctx context.Context, token string) (*domainauth.User, error)
}
