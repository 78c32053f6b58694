package auth

// Package auth contains domain-level types for authentication and
// authorization. It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application authorization role.
// Keep string form for easy persistence and JSON payloads.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
	RoleViewer  Role = "viewer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent, RoleViewer:
		return true
	default:
		return false
	}
}

// Status represents a user account status as reported by the backend.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

// User is the cached profile of the authenticated principal, shaped
// after the backend's /auth/me and login responses.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	Status       Status     `json:"status"`
	Timezone     string     `json:"timezone,omitempty"`
	Language     string     `json:"language,omitempty"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// FullName returns the user's display name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsActive reports whether the account may hold a session.
func (u User) IsActive() bool { return u.Status == StatusActive }

// Session is the authenticated state of the console: a bearer token
// plus the profile it was issued for. Presence of a token alone is a
// transitional state, not an authenticated one.
type Session struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
