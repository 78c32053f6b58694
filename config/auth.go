package config

import (
	"fmt"
	"strings"
)

// AuthMode selects which authentication backend the session manager
// talks to.
type AuthMode string

const (
	// AuthModeBackend authenticates against the real CRM backend API.
	AuthModeBackend AuthMode = "backend"
	// AuthModeMock uses an in-process dev backend (development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "backend", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: backend, mock)", v)
	}
}

// DevAuthConfig controls the mock backend identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Email    string `env:"EMAIL"    envDefault:"dev@example.com"`
	Password string `env:"PASSWORD" envDefault:"dev"`
	Role     string `env:"ROLE"     envDefault:"admin"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication backend to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"backend"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// RestoreOnStart controls whether a persisted session is restored
	// during startup.
	RestoreOnStart bool `env:"AUTH_RESTORE_ON_START" envDefault:"true"`
}
