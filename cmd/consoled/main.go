package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/voicedesk/console-go/config"
	"github.com/voicedesk/console-go/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting console session gateway",
		"auth_mode", cfg.Auth.Mode,
		"store_mode", cfg.Store.Mode,
		"backend", cfg.Backend.BaseURL,
		"dev", cfg.IsDev)

	var redisClient redis.UniversalClient
	if cfg.Store.Mode == config.StoreModeRedis {
		redisClient, err = bootstrap.ConnectRedis(cfg.Store.Redis, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	store := bootstrap.BuildCredentialStore(cfg.Store, redisClient, logger)
	backend, err := bootstrap.BuildAuthBackend(cfg, logger)
	if err != nil {
		return err
	}
	sessions, err := bootstrap.BuildSessionManager(store, backend, logger)
	if err != nil {
		return err
	}
	authz, err := bootstrap.BuildAuthorizer(sessions)
	if err != nil {
		return err
	}

	if cfg.Auth.RestoreOnStart {
		sessions.Restore(ctx)
		logger.InfoContext(ctx, "session restore started", "state", sessions.State())
	}

	server := bootstrap.BuildHTTPServer(bootstrap.HTTPServerConfig{
		Config:   cfg.HTTP,
		Sessions: sessions,
		Authz:    authz,
		Logger:   logger,
	})

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bootstrap.RunServer(runCtx, server, cfg.HTTP.ShutdownTimeout, logger)
}
