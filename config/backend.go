package config

import "time"

// BackendConfig contains CRM backend API configuration.
type BackendConfig struct {
	// BaseURL is the root of the backend API, including the version
	// prefix.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8000/api/v1"`

	// Timeout bounds each backend HTTP request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	if b.Timeout <= 0 {
		b.Timeout = 30 * time.Second
	}
}
