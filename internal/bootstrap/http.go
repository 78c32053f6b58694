package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/voicedesk/console-go/config"
	httpx "github.com/voicedesk/console-go/internal/http"
	"github.com/voicedesk/console-go/internal/service"
)

// HTTPServerConfig contains dependencies for the HTTP server.
type HTTPServerConfig struct {
	Config   config.HTTPConfig
	Sessions *service.SessionManager
	Authz    *service.Authorizer
	Logger   *slog.Logger
}

// BuildHTTPServer assembles the router, middleware chain, and server.
func BuildHTTPServer(cfg HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Sessions:         cfg.Sessions,
		Authz:            cfg.Authz,
		LoginPath:        cfg.Config.LoginPath,
		UnauthorizedPath: cfg.Config.UnauthorizedPath,
		Logger:           logger,
	})

	// Order: RequestID -> Logging -> Recover -> Router
	h := http.Handler(router)
	h = httpx.Recover(logger)(h)
	h = httpx.Logging(logger)(h)
	h = httpx.RequestID()(h)

	return &http.Server{
		Addr:         cfg.Config.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.Config.ReadTimeout,
		WriteTimeout: cfg.Config.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
}

// RunServer starts the server and blocks until ctx is canceled, then
// shuts down gracefully within the configured timeout.
func RunServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
