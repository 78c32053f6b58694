package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/voicedesk/console-go/config"
	"github.com/voicedesk/console-go/internal/adapters/backendapi"
	"github.com/voicedesk/console-go/internal/adapters/credfile"
	"github.com/voicedesk/console-go/internal/adapters/devbackend"
	"github.com/voicedesk/console-go/internal/adapters/redisstore"
	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	"github.com/voicedesk/console-go/internal/ports"
	"github.com/voicedesk/console-go/internal/service"
)

// BuildCredentialStore creates the credential store for the configured
// mode. An unusable file location degrades to an in-memory-only store
// with a warning rather than failing startup.
func BuildCredentialStore(cfg config.StoreConfig, redisClient redis.UniversalClient, logger *slog.Logger) ports.CredentialStore {
	switch cfg.Mode {
	case config.StoreModeRedis:
		return redisstore.NewWithPrefix(redisClient, cfg.Redis.KeyPrefix, logger)
	case config.StoreModeMemory:
		return credfile.New("", logger)
	default:
		path := cfg.File.Path
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				logger.Warn("no user config dir, credentials will not persist", "error", err)
				return credfile.New("", logger)
			}
			path = filepath.Join(dir, "voicedesk-console", "credentials.json")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			logger.Warn("create credential dir failed, credentials will not persist", "error", err)
			return credfile.New("", logger)
		}
		return credfile.New(path, logger)
	}
}

// BuildAuthBackend creates the auth backend for the configured mode.
func BuildAuthBackend(cfg config.AppConfig, logger *slog.Logger) (ports.AuthBackend, error) {
	if cfg.Auth.Mode == config.AuthModeMock {
		role := domainauth.Role(cfg.Auth.DevAuth.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("invalid dev auth role: %q", cfg.Auth.DevAuth.Role)
		}
		backend, err := devbackend.New(devbackend.Config{
			Email:    cfg.Auth.DevAuth.Email,
			Password: cfg.Auth.DevAuth.Password,
			Role:     role,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev backend: %w", err)
		}
		return backend, nil
	}

	client, err := backendapi.NewClient(backendapi.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build backend client: %w", err)
	}
	return client, nil
}

// BuildSessionManager wires the store and backend into a session
// manager.
func BuildSessionManager(store ports.CredentialStore, backend ports.AuthBackend, logger *slog.Logger) (*service.SessionManager, error) {
	return service.NewSessionManager(service.SessionManagerOptions{
		Store:   store,
		Backend: backend,
		Logger:  logger,
	})
}

// BuildAuthorizer wires the session manager into an authorizer.
func BuildAuthorizer(sessions *service.SessionManager) (*service.Authorizer, error) {
	return service.NewAuthorizer(sessions)
}
