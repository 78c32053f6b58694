package credfile

// Package credfile persists console credentials in a single JSON
// document on disk. It is the durable store used when no Redis is
// configured. A store constructed with an empty path degrades to
// no-ops so the gateway still runs where no writable storage exists.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
)

// Store is a file-backed credential store.
type Store struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// document is the on-disk shape: the token and the cached profile,
// written together so a reader never sees a half-updated pair.
type document struct {
	Token string           `json:"token,omitempty"`
	User  *domainauth.User `json:"user,omitempty"`
}

// New creates a file-backed store at path. An empty path yields a
// no-op store.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Token returns the persisted bearer token, or "" when absent.
func (s *Store) Token(ctx context.Context) (string, error) {
	if s.path == "" {
		return "", nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx).Token, nil
}

// SetToken overwrites the persisted token.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load(ctx)
	doc.Token = token
	return s.save(doc)
}

// User returns the cached profile, or nil when absent. An unreadable
// document behaves as if absent.
func (s *Store) User(ctx context.Context) (*domainauth.User, error) {
	if s.path == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load(ctx)
	if doc.User == nil {
		return nil, nil
	}
	u := *doc.User
	return &u, nil
}

// SetUser overwrites the cached profile.
func (s *Store) SetUser(ctx context.Context, u *domainauth.User) error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load(ctx)
	if u == nil {
		doc.User = nil
	} else {
		uc := *u
		doc.User = &uc
	}
	return s.save(doc)
}

// Clear removes the credential document. Removing an already-missing
// file is a success, so Clear is idempotent.
func (s *Store) Clear(_ context.Context) error {
	if s.path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

// load reads the document. Missing or corrupt files read as empty;
// corruption is logged once per read, not surfaced.
func (s *Store) load(ctx context.Context) document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "read credential file failed", "path", s.path, "error", err)
		}
		return document{}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.WarnContext(ctx, "credential file unreadable, treating as absent", "path", s.path, "error", err)
		return document{}
	}
	return doc
}

// save writes the whole document via temp file + rename so readers
// observe either the old pair or the new one.
func (s *Store) save(doc document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp credential file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod credential file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}
