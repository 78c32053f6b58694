package service

// Package service contains the session lifecycle controller and the
// authorization predicate engine.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	apperrors "github.com/voicedesk/console-go/internal/errors"
	"github.com/voicedesk/console-go/internal/ports"
	"github.com/voicedesk/console-go/internal/token"
)

// State is the lifecycle state of the console session.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateRestoring       State = "restoring"
	StateAuthenticated   State = "authenticated"
)

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Store   ports.CredentialStore
	Backend ports.AuthBackend
	Logger  *slog.Logger
	Now     func() time.Time // defaults to time.Now
}

// SessionManager orchestrates login, registration, logout, and
// startup restoration, and owns the in-memory session state.
//
// Every transition that clears or replaces the session rotates a
// generation ID. An in-flight profile fetch that completes under a
// stale generation discards its result instead of resurrecting a
// cleared session: logout always wins.
type SessionManager struct {
	store   ports.CredentialStore
	backend ports.AuthBackend
	logger  *slog.Logger
	now     func() time.Time

	mu         sync.Mutex
	state      State
	user       *domainauth.User
	token      string
	expiresAt  time.Time
	generation string

	refreshGroup singleflight.Group
	restoreWG    sync.WaitGroup
}

// NewSessionManager constructs a SessionManager. Store and Backend
// are required; the dependency is enforced here rather than at first
// use so a miswired caller fails at construction time.
func NewSessionManager(opts SessionManagerOptions) (*SessionManager, error) {
	if opts.Store == nil {
		return nil, errors.New("service: SessionManagerOptions.Store is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("service: SessionManagerOptions.Backend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionManager{
		store:      opts.Store,
		backend:    opts.Backend,
		logger:     logger,
		now:        now,
		state:      StateUnauthenticated,
		generation: uuid.NewString(),
	}, nil
}

// Login authenticates against the backend. On success the credential
// store and in-memory state are updated together; on failure any
// prior session is left untouched and the error carries the server's
// rejection message.
func (m *SessionManager) Login(ctx context.Context, creds ports.Credentials) (*domainauth.Session, error) {
	sess, err := m.backend.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	m.adopt(ctx, sess)
	return sess, nil
}

// Register creates an account and treats the returned session exactly
// like Login's.
func (m *SessionManager) Register(ctx context.Context, reg ports.Registration) (*domainauth.Session, error) {
	sess, err := m.backend.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	m.adopt(ctx, sess)
	return sess, nil
}

// Logout clears local session state unconditionally. The remote call
// is best effort: a transport failure is logged, never surfaced.
// Logout must never fail from the caller's perspective.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	bearer := m.token
	m.clearLocked(ctx)
	m.mu.Unlock()

	if bearer == "" {
		return
	}
	if err := m.backend.Logout(ctx, bearer); err != nil {
		m.logger.WarnContext(ctx, "remote logout failed", "error", err)
	}
}

// Restore runs once at startup. With no persisted token, or an
// expired one, it finishes unauthenticated. Otherwise it adopts the
// cached profile synchronously so consumers can proceed without a
// network wait, then reconciles with a fresh profile fetch in the
// background. A failed reconcile keeps the cached profile: only
// expiry or an explicit logout ends a session.
func (m *SessionManager) Restore(ctx context.Context) {
	m.mu.Lock()
	bearer, err := m.store.Token(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "read persisted token failed", "error", err)
		bearer = ""
	}
	if bearer == "" || token.Expired(bearer, m.now()) {
		m.clearLocked(ctx)
		m.mu.Unlock()
		return
	}

	m.token = bearer
	m.expiresAt = token.ExpiresAt(bearer)
	cached, err := m.store.User(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "read cached profile failed", "error", err)
		cached = nil
	}
	if cached != nil {
		m.user = cached
		m.state = StateAuthenticated
	} else {
		m.state = StateRestoring
	}
	gen := m.generation
	m.mu.Unlock()

	m.restoreWG.Add(1)
	go func() {
		defer m.restoreWG.Done()
		m.reconcileProfile(context.WithoutCancel(ctx), gen, bearer)
	}()
}

// reconcileProfile replaces the cached profile with a fresh one if the
// session generation is still current when the fetch lands.
func (m *SessionManager) reconcileProfile(ctx context.Context, gen, bearer string) {
	fresh, err := m.backend.Profile(ctx, bearer)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		// The session was cleared or replaced while the fetch was in
		// flight; the stronger transition wins.
		return
	}
	if err != nil {
		m.logger.DebugContext(ctx, "profile reconcile failed, keeping cached profile", "error", err)
		if m.user == nil {
			// No profile was ever resolved, so the transitional state
			// cannot become authenticated. Resolve to unauthenticated
			// but leave the stored token for the next restore attempt.
			m.state = StateUnauthenticated
		}
		return
	}
	m.user = fresh
	m.state = StateAuthenticated
	if serr := m.store.SetUser(ctx, fresh); serr != nil {
		m.logger.WarnContext(ctx, "persist reconciled profile failed", "error", serr)
	}
}

// RefreshUser forces a profile re-fetch. Unlike Restore's background
// reconcile, an explicit refresh failure is a strong invalidation
// signal: the session is torn down and a session_expired error
// returned. Concurrent callers share a single fetch.
func (m *SessionManager) RefreshUser(ctx context.Context) error {
	m.mu.Lock()
	bearer := m.token
	gen := m.generation
	m.mu.Unlock()
	if bearer == "" {
		return apperrors.SessionExpired("no active session")
	}

	_, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		fresh, err := m.backend.Profile(ctx, bearer)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.generation != gen {
			// Logout landed while the fetch was pending; discard the
			// result rather than reinstating a cleared session.
			return nil, nil
		}
		m.user = fresh
		if serr := m.store.SetUser(ctx, fresh); serr != nil {
			m.logger.WarnContext(ctx, "persist refreshed profile failed", "error", serr)
		}
		return nil, nil
	})
	if err != nil {
		m.mu.Lock()
		stale := m.generation != gen
		m.mu.Unlock()
		if stale {
			// The session that started this fetch is already gone; its
			// failure says nothing about whatever session holds the
			// current generation.
			return nil
		}
		m.Logout(ctx)
		return apperrors.SessionExpired("profile refresh rejected").WithCause(err)
	}
	return nil
}

// Current returns a copy of the resolved profile, or nil without one.
func (m *SessionManager) Current() *domainauth.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// State returns the lifecycle state.
func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token returns the in-memory bearer token, or "" without a session.
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// IsAuthenticated reports whether a resolved profile is held in
// memory AND a token is present in the credential store. A token
// alone, with no resolved profile, is transitional rather than
// authenticated.
func (m *SessionManager) IsAuthenticated(ctx context.Context) bool {
	m.mu.Lock()
	resolved := m.user != nil
	m.mu.Unlock()
	if !resolved {
		return false
	}
	bearer, err := m.store.Token(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "read persisted token failed", "error", err)
		return false
	}
	return bearer != ""
}

// TokenSource exposes the session as an oauth2.TokenSource so other
// backend API clients can attach the bearer credential to their
// requests.
func (m *SessionManager) TokenSource() oauth2.TokenSource {
	return tokenSource{m: m}
}

// clearLocked tears down both the persisted pair and the in-memory
// state and rotates the generation. Callers hold m.mu.
func (m *SessionManager) clearLocked(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.WarnContext(ctx, "clear credential store failed", "error", err)
	}
	m.token = ""
	m.expiresAt = time.Time{}
	m.user = nil
	m.state = StateUnauthenticated
	m.generation = uuid.NewString()
}

// adopt installs a freshly issued session: the persisted pair is
// written before in-memory state flips, all under one lock, so a
// reader never observes a half-updated pair.
func (m *SessionManager) adopt(ctx context.Context, sess *domainauth.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SetToken(ctx, sess.Token); err != nil {
		m.logger.WarnContext(ctx, "persist token failed", "error", err)
	}
	u := sess.User
	if err := m.store.SetUser(ctx, &u); err != nil {
		m.logger.WarnContext(ctx, "persist profile failed", "error", err)
	}
	m.token = sess.Token
	m.expiresAt = sess.ExpiresAt
	userCopy := sess.User
	m.user = &userCopy
	m.state = StateAuthenticated
	m.generation = uuid.NewString()
}

type tokenSource struct {
	m *SessionManager
}

// Token implements oauth2.TokenSource over the live session.
func (ts tokenSource) Token() (*oauth2.Token, error) {
	ts.m.mu.Lock()
	defer ts.m.mu.Unlock()
	if ts.m.token == "" {
		return nil, apperrors.SessionExpired("no active session")
	}
	return &oauth2.Token{
		AccessToken: ts.m.token,
		TokenType:   "Bearer",
		Expiry:      ts.m.expiresAt,
	}, nil
}
