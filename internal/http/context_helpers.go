package httpx

import (
	"context"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
)

// userKey is an unexported context key type to avoid collisions across
// packages. Centralized here so all handlers and guards use the same
// key.
type userKey struct{}

// SetUserInContext returns a child context carrying the given user.
// If user is nil, the original ctx is returned unchanged.
func SetUserInContext(ctx context.Context, user *domainauth.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user from context and whether one is
// present.
func UserFromContext(ctx context.Context) (*domainauth.User, bool) {
	if u, ok := ctx.Value(userKey{}).(*domainauth.User); ok && u != nil {
		return u, true
	}
	return nil, false
}

// RoleFromContext returns the current user's role, or "" when the
// request is unauthenticated.
func RoleFromContext(ctx context.Context) domainauth.Role {
	if u, ok := UserFromContext(ctx); ok {
		return u.Role
	}
	return ""
}
