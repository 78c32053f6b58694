package backendapi

// Package backendapi implements ports.AuthBackend against the CRM
// backend's JSON/HTTP auth endpoints.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	apperrors "github.com/voicedesk/console-go/internal/errors"
	"github.com/voicedesk/console-go/internal/ports"
	"github.com/voicedesk/console-go/internal/token"
)

// DefaultTimeout bounds backend calls when no client is supplied.
const DefaultTimeout = 30 * time.Second

// Client talks to the backend auth API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// Config holds configuration for the backend client.
type Config struct {
	// BaseURL is the backend API root, e.g. "https://crm.example.com/api/v1".
	BaseURL string

	// Timeout bounds each request. Default: DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the default client. Optional.
	HTTPClient *http.Client

	// Logger for diagnostics. Optional.
	Logger *slog.Logger
}

// NewClient creates a backend API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// tokenResponse mirrors the backend's token payload.
type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	User        domainauth.User `json:"user"`
}

// session converts the wire payload into a domain session. The expiry
// claim embedded in the token wins; expires_in is the fallback for
// tokens we cannot decode locally.
func (t tokenResponse) session(now time.Time) *domainauth.Session {
	expiresAt := token.ExpiresAt(t.AccessToken)
	if expiresAt.IsZero() && t.ExpiresIn > 0 {
		expiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return &domainauth.Session{
		Token:     t.AccessToken,
		TokenType: t.TokenType,
		ExpiresAt: expiresAt,
		User:      t.User,
	}
}

// errorPayload mirrors the backend's error body. FastAPI emits
// "detail"; some proxies rewrite it into "message".
type errorPayload struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func (p errorPayload) text() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Message
}

// statusError carries a non-2xx response for classification by the
// operation that made the call.
type statusError struct {
	Status  int
	Message string
}

func (e *statusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Login exchanges credentials for a session. Every failure surfaces
// as an authentication_failed error carrying the server message when
// one was provided.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*domainauth.Session, error) {
	var tr tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", creds, "", &tr); err != nil {
		return nil, authFailure(err)
	}
	return tr.session(c.now()), nil
}

// Register creates an account. Contract and side effects mirror Login;
// duplicate email/username rejections carry the server detail.
func (c *Client) Register(ctx context.Context, reg ports.Registration) (*domainauth.Session, error) {
	var tr tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", reg, "", &tr); err != nil {
		return nil, authFailure(err)
	}
	return tr.session(c.now()), nil
}

// Logout invalidates the token server-side. Failures are reported as
// logout_transport errors; callers swallow them.
func (c *Client) Logout(ctx context.Context, bearer string) error {
	if err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, bearer, nil); err != nil {
		return apperrors.LogoutTransport(err)
	}
	return nil
}

// Profile fetches the current user. A 401/403 means the token is no
// longer honored; anything else is a transient failure.
func (c *Client) Profile(ctx context.Context, bearer string) (*domainauth.User, error) {
	var u domainauth.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, bearer, &u); err != nil {
		var se *statusError
		if errors.As(err, &se) &&
			(se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden) {
			return nil, apperrors.SessionExpired("token rejected by backend").WithCause(err)
		}
		return nil, apperrors.Transient("fetch profile", err)
	}
	return &u, nil
}

// authFailure shapes any login/register failure into an
// authentication_failed error, preserving the server message.
func authFailure(err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return apperrors.AuthenticationFailed(se.Message).WithCause(err)
	}
	return apperrors.AuthenticationFailed("").WithCause(err)
}

// doJSON performs one request against the backend. Non-2xx responses
// come back as *statusError with the decoded error message.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, bearer string, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "close response body failed", "path", path, "error", cerr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var payload errorPayload
		// Error bodies are best effort; an unparsable one just loses the message.
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)
		return &statusError{Status: resp.StatusCode, Message: payload.text()}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
