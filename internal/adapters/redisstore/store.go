package redisstore

// Package redisstore provides a Redis-backed credential store, used
// when several gateway replicas must share one console session.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
)

const defaultPrefix = "console:credentials:"

// Store keeps the token and cached profile under two keys beneath a
// shared prefix. Clear deletes both keys in a single DEL so no
// partial pair is observable.
type Store struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// New creates a Redis-backed credential store with the default prefix.
func New(client redis.UniversalClient, logger *slog.Logger) *Store {
	return NewWithPrefix(client, defaultPrefix, logger)
}

// NewWithPrefix creates a Redis-backed credential store with a custom
// key prefix.
func NewWithPrefix(client redis.UniversalClient, prefix string, logger *slog.Logger) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, prefix: prefix, logger: logger}
}

func (s *Store) tokenKey() string { return s.prefix + "token" }
func (s *Store) userKey() string  { return s.prefix + "user" }

// Token returns the persisted bearer token, or "" when absent.
func (s *Store) Token(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.tokenKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return val, nil
}

// SetToken overwrites the persisted token. No TTL: expiry is decided
// by inspecting the token itself, not by the store.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.tokenKey(), token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// User returns the cached profile, or nil when absent. A value that
// no longer unmarshals behaves as if absent.
func (s *Store) User(ctx context.Context) (*domainauth.User, error) {
	data, err := s.client.Get(ctx, s.userKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get user: %w", err)
	}

	var u domainauth.User
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		s.logger.WarnContext(ctx, "cached profile unreadable, treating as absent", "error", err)
		return nil, nil
	}
	return &u, nil
}

// SetUser serializes and overwrites the cached profile.
func (s *Store) SetUser(ctx context.Context, u *domainauth.User) error {
	if u == nil {
		if err := s.client.Del(ctx, s.userKey()).Err(); err != nil {
			return fmt.Errorf("redis del user: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.client.Set(ctx, s.userKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set user: %w", err)
	}
	return nil
}

// Clear removes both entries atomically with respect to subsequent
// reads.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.userKey()).Err(); err != nil {
		return fmt.Errorf("redis clear credentials: %w", err)
	}
	return nil
}
