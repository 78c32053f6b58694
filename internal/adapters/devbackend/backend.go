package devbackend

// Package devbackend provides a config-driven AuthBackend for local
// development. It accepts the configured credentials and mints
// unsigned tokens with real expiry claims, so the rest of the session
// machinery behaves exactly as against the production backend.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	apperrors "github.com/voicedesk/console-go/internal/errors"
	"github.com/voicedesk/console-go/internal/ports"
)

// DefaultSessionDuration is used when Config leaves it zero.
const DefaultSessionDuration = 8 * time.Hour

// Config controls the dev backend identity.
type Config struct {
	Email           string
	Password        string
	Role            domainauth.Role // default admin
	SessionDuration time.Duration   // default DefaultSessionDuration
}

// Backend implements ports.AuthBackend for local development.
type Backend struct {
	cfg Config
	now func() time.Time
}

// New constructs a dev backend from Config.
func New(cfg Config) (*Backend, error) {
	if cfg.Email == "" {
		return nil, fmt.Errorf("dev backend: email is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("dev backend: password is required")
	}
	if cfg.Role == "" {
		cfg.Role = domainauth.RoleAdmin
	}
	if !cfg.Role.Valid() {
		return nil, fmt.Errorf("dev backend: unknown role %q", cfg.Role)
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultSessionDuration
	}
	return &Backend{cfg: cfg, now: time.Now}, nil
}

// Login accepts exactly the configured credentials and mints a fresh
// session. The rejection message matches the production backend's.
func (b *Backend) Login(_ context.Context, creds ports.Credentials) (*domainauth.Session, error) {
	if creds.Email != b.cfg.Email || creds.Password != b.cfg.Password {
		return nil, apperrors.AuthenticationFailed("Invalid email or password")
	}
	user := b.userFor(b.cfg.Email, b.cfg.Role)
	return b.issue(user)
}

// Register ignores uniqueness checks and issues a session for the
// submitted profile with the agent role, mirroring the backend's
// default for self-registration.
func (b *Backend) Register(_ context.Context, reg ports.Registration) (*domainauth.Session, error) {
	user := b.userFor(reg.Email, domainauth.RoleAgent)
	user.Username = reg.Username
	user.FirstName = reg.FirstName
	user.LastName = reg.LastName
	user.Phone = reg.Phone
	return b.issue(user)
}

// Logout is a no-op: there is no server-side token state to revoke.
func (b *Backend) Logout(_ context.Context, _ string) error { return nil }

// Profile reconstructs the user from the token claims, rejecting
// expired or undecodable tokens the way the real backend would.
func (b *Backend) Profile(_ context.Context, bearer string) (*domainauth.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(bearer, claims); err != nil {
		return nil, apperrors.SessionExpired("invalid token").WithCause(err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || !exp.Time.After(b.now()) {
		return nil, apperrors.SessionExpired("token expired")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	user := b.userFor(email, domainauth.Role(role))
	user.ID = sub
	return &user, nil
}

func (b *Backend) issue(user domainauth.User) (*domainauth.Session, error) {
	expiresAt := b.now().Add(b.cfg.SessionDuration)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   expiresAt.Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		return nil, fmt.Errorf("mint dev token: %w", err)
	}
	return &domainauth.Session{
		Token:     tok,
		TokenType: "bearer",
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (b *Backend) userFor(email string, role domainauth.Role) domainauth.User {
	name := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		name = email[:i]
	}
	if name == "" {
		name = "dev"
	}
	return domainauth.User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  name,
		FirstName: strings.ToUpper(name[:1]) + name[1:],
		LastName:  "Dev",
		Role:      role,
		Status:    domainauth.StatusActive,
		Timezone:  "UTC",
		Language:  "en",
	}
}
