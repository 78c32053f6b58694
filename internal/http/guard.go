package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	"github.com/voicedesk/console-go/internal/service"
)

// SessionState is the view of the session manager the guards need.
type SessionState interface {
	State() service.State
	Current() *domainauth.User
}

// AuthzChecker answers the capability queries the guards evaluate.
type AuthzChecker interface {
	HasPermission(p domainauth.Permission) bool
	HasRole(role domainauth.Role) bool
	HasAnyRole(roles ...domainauth.Role) bool
}

// Guard decides, per request, whether a protected view renders,
// redirects to login, or redirects to the unauthorized view.
type Guard struct {
	Sessions         SessionState
	Authz            AuthzChecker
	LoginPath        string // default "/auth/login"
	UnauthorizedPath string // default "/unauthorized"
	Logger           *slog.Logger
}

// Requirement carries the optional checks for a protected view. All
// specified checks must pass; a zero Requirement only requires an
// authenticated session.
type Requirement struct {
	Permission domainauth.Permission
	Role       domainauth.Role
	AnyRole    []domainauth.Role
}

// Protect wires the full decision chain for a route:
//
//  1. While the session is restoring, hold the request with a neutral
//     loading response; never redirect.
//  2. Unauthenticated requests go to login, preserving the requested
//     location for a post-login return.
//  3. A failed permission, role, or role-set check lands on the
//     unauthorized view. Unauthenticated always wins over permission
//     checks; unauthorized always wins over rendering.
//  4. Otherwise the view renders with the user in the request context.
func (g *Guard) Protect(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch g.Sessions.State() {
			case service.StateRestoring:
				g.renderRestoring(w, r)
				return
			case service.StateUnauthenticated:
				g.redirectToLogin(w, r)
				return
			}

			user := g.Sessions.Current()
			if user == nil {
				// Authenticated state always carries a resolved user;
				// a nil one means the session moved under us.
				g.redirectToLogin(w, r)
				return
			}

			if req.Permission != "" && !g.Authz.HasPermission(req.Permission) {
				g.renderUnauthorized(w, r)
				return
			}
			if req.Role != "" && !g.Authz.HasRole(req.Role) {
				g.renderUnauthorized(w, r)
				return
			}
			if len(req.AnyRole) > 0 && !g.Authz.HasAnyRole(req.AnyRole...) {
				g.renderUnauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetUserInContext(r.Context(), user)))
		})
	}
}

// RequireAuth only requires an authenticated session.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return g.Protect(Requirement{})(next)
}

// RequirePermission requires the given capability.
func (g *Guard) RequirePermission(p domainauth.Permission) func(http.Handler) http.Handler {
	return g.Protect(Requirement{Permission: p})
}

// RequireRole requires an exact role match.
func (g *Guard) RequireRole(role domainauth.Role) func(http.Handler) http.Handler {
	return g.Protect(Requirement{Role: role})
}

// RequireAnyRole requires membership in the given role set.
func (g *Guard) RequireAnyRole(roles ...domainauth.Role) func(http.Handler) http.Handler {
	return g.Protect(Requirement{AnyRole: roles})
}

const restoringPage = `<!doctype html>
<html><head><meta http-equiv="refresh" content="1"><title>Signing in…</title></head>
<body>Restoring your session…</body></html>
`

// renderRestoring holds the request while the session restores:
// browsers get a self-refreshing holding page, API callers a 503 with
// a retry hint. No redirect is performed in this state.
func (g *Guard) renderRestoring(w http.ResponseWriter, r *http.Request) {
	if isBrowserRequest(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(restoringPage)); err != nil {
			g.logger().Debug("write restoring page failed", "error", err)
		}
		return
	}
	w.Header().Set("Retry-After", "1")
	WriteError(w, ErrorParams{
		Code:    http.StatusServiceUnavailable,
		ErrCode: "session_restoring",
		Err:     errors.New("session restore in progress"),
	})
}

// redirectToLogin sends browsers to the login view with the requested
// location preserved; API callers get a 401.
func (g *Guard) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if !isBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	loginPath := g.LoginPath
	if loginPath == "" {
		loginPath = "/auth/login"
	}
	target := loginPath + "?redirect_uri=" + url.QueryEscape(safeRedirectPath(r.URL.RequestURI()))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// renderUnauthorized sends browsers to the unauthorized view; API
// callers get a 403.
func (g *Guard) renderUnauthorized(w http.ResponseWriter, r *http.Request) {
	if !isBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "insufficient_permissions",
			Err:     errors.New("insufficient permissions"),
		})
		return
	}

	unauthorizedPath := g.UnauthorizedPath
	if unauthorizedPath == "" {
		unauthorizedPath = "/unauthorized"
	}
	http.Redirect(w, r, unauthorizedPath, http.StatusSeeOther)
}

func (g *Guard) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// safeRedirectPath keeps post-login redirects within the app: only
// relative paths are allowed, and scheme-relative ("//host") forms are
// rejected.
func safeRedirectPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	if u, err := url.Parse(raw); err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return raw
}
