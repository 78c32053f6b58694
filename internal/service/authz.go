package service

import (
	"errors"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
)

// UserSource provides the currently resolved user, if any.
type UserSource interface {
	Current() *domainauth.User
}

// Authorizer answers the role and capability queries used to gate
// views and routes. It is pure over the current session: no network
// access, no mutation. Every predicate is false without a session.
type Authorizer struct {
	sessions UserSource
}

// NewAuthorizer constructs an Authorizer over the given session source.
func NewAuthorizer(sessions UserSource) (*Authorizer, error) {
	if sessions == nil {
		return nil, errors.New("service: Authorizer requires a UserSource")
	}
	return &Authorizer{sessions: sessions}, nil
}

// HasRole reports an exact match against the current user's role.
func (a *Authorizer) HasRole(role domainauth.Role) bool {
	u := a.sessions.Current()
	return u != nil && u.Role == role
}

// HasAnyRole reports whether the current role is a member of roles.
func (a *Authorizer) HasAnyRole(roles ...domainauth.Role) bool {
	u := a.sessions.Current()
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// HasPermission consults the fixed policy table. Admin is allowed
// unconditionally; unknown permissions and roles are denied.
func (a *Authorizer) HasPermission(p domainauth.Permission) bool {
	u := a.sessions.Current()
	return u != nil && u.Role.Can(p)
}

// IsAdmin reports whether the current user is an admin.
func (a *Authorizer) IsAdmin() bool {
	return a.HasRole(domainauth.RoleAdmin)
}

// IsManager reports whether the current user is a manager or admin.
func (a *Authorizer) IsManager() bool {
	return a.HasAnyRole(domainauth.RoleAdmin, domainauth.RoleManager)
}
