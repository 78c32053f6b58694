package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthModeUnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    AuthMode
		expectError bool
	}{
		{input: "backend", expected: AuthModeBackend},
		{input: "mock", expected: AuthModeMock},
		{input: "MOCK", expected: AuthModeMock},
		{input: "oauth", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var mode AuthMode
			err := mode.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestStoreModeUnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    StoreMode
		expectError bool
	}{
		{input: "file", expected: StoreModeFile},
		{input: "redis", expected: StoreModeRedis},
		{input: "memory", expected: StoreModeMemory},
		{input: "Redis", expected: StoreModeRedis},
		{input: "postgres", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var mode StoreMode
			err := mode.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestDefaultsFromEmptyEnvironment(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeBackend, cfg.Auth.Mode)
	assert.True(t, cfg.Auth.RestoreOnStart)
	assert.Equal(t, StoreModeFile, cfg.Store.Mode)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "/auth/login", cfg.HTTP.LoginPath)
	assert.Equal(t, "/unauthorized", cfg.HTTP.UnauthorizedPath)
	assert.Equal(t, "console:credentials:", cfg.Store.Redis.KeyPrefix)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "mock")
	t.Setenv("DEV_AUTH_EMAIL", "qa@example.com")
	t.Setenv("STORE_MODE", "redis")
	t.Setenv("STORE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("BACKEND_BASE_URL", "https://crm.example.com/api/v1")
	t.Setenv("HTTP_PORT", "9090")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, "qa@example.com", cfg.Auth.DevAuth.Email)
	assert.Equal(t, StoreModeRedis, cfg.Store.Mode)
	assert.Equal(t, "redis.internal:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, "https://crm.example.com/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestSanitizeClampsBadValues(t *testing.T) {
	cfg := AppConfig{
		Backend: BackendConfig{Timeout: -1},
		HTTP: HTTPConfig{
			Port:            -80,
			ReadTimeout:     0,
			WriteTimeout:    -time.Second,
			ShutdownTimeout: 0,
		},
	}
	cfg.Sanitize()

	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "/auth/login", cfg.HTTP.LoginPath)
}

func TestDetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}
