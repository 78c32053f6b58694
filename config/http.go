package config

import (
	"net"
	"strconv"
	"time"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Host is the interface to bind to.
	Host string `env:"HOST" envDefault:"0.0.0.0"`

	// Port is the TCP port to listen on.
	Port int `env:"PORT" envDefault:"8080"`

	// ReadTimeout bounds reading a full request including the body.
	ReadTimeout time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`

	// WriteTimeout bounds writes of a response.
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// LoginPath is where the route guard sends unauthenticated
	// browser requests.
	LoginPath string `env:"LOGIN_PATH" envDefault:"/auth/login"`

	// UnauthorizedPath is where the route guard sends browser requests
	// that fail a permission or role check.
	UnauthorizedPath string `env:"UNAUTHORIZED_PATH" envDefault:"/unauthorized"`
}

// Addr returns the host:port pair the server binds to.
func (h *HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Port <= 0 || h.Port > 65535 {
		h.Port = 8080
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 15 * time.Second
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 30 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
	if h.LoginPath == "" {
		h.LoginPath = "/auth/login"
	}
	if h.UnauthorizedPath == "" {
		h.UnauthorizedPath = "/unauthorized"
	}
}
