package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	"github.com/voicedesk/console-go/internal/service"
)

// fakeSession is a static SessionState plus AuthzChecker for guard
// tests.
type fakeSession struct {
	state service.State
	user  *domainauth.User
}

func (f *fakeSession) State() service.State      { return f.state }
func (f *fakeSession) Current() *domainauth.User { return f.user }
func (f *fakeSession) HasRole(role domainauth.Role) bool {
	return f.user != nil && f.user.Role == role
}
func (f *fakeSession) HasAnyRole(roles ...domainauth.Role) bool {
	for _, r := range roles {
		if f.HasRole(r) {
			return true
		}
	}
	return false
}
func (f *fakeSession) HasPermission(p domainauth.Permission) bool {
	return f.user != nil && f.user.Role.Can(p)
}

func authenticated(role domainauth.Role) *fakeSession {
	return &fakeSession{
		state: service.StateAuthenticated,
		user:  &domainauth.User{ID: "u-1", Email: "a@b.com", Role: role, Status: domainauth.StatusActive},
	}
}

func newGuard(s *fakeSession) *Guard {
	return &Guard{Sessions: s, Authz: s}
}

// okHandler records whether the protected view actually ran and what
// user it saw.
func okHandler(sawUser **domainauth.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := UserFromContext(r.Context()); ok {
			*sawUser = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func browserGet(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	return req
}

func apiGet(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	return req
}

func TestGuardAllowsAndInjectsUser(t *testing.T) {
	t.Parallel()
	g := newGuard(authenticated(domainauth.RoleAgent))

	var saw *domainauth.User
	rec := httptest.NewRecorder()
	g.Protect(Requirement{Permission: domainauth.PermViewLeads})(okHandler(&saw)).
		ServeHTTP(rec, browserGet("/console/leads"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, saw)
	assert.Equal(t, "a@b.com", saw.Email)
}

func TestGuardUnauthenticatedBrowserRedirectsToLogin(t *testing.T) {
	t.Parallel()
	g := newGuard(&fakeSession{state: service.StateUnauthenticated})

	var saw *domainauth.User
	rec := httptest.NewRecorder()
	g.RequireAuth(okHandler(&saw)).ServeHTTP(rec, browserGet("/console/leads?page=2"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Nil(t, saw)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "/console/leads?page=2", loc.Query().Get("redirect_uri"))
}

func TestGuardUnauthenticatedAPIGets401(t *testing.T) {
	t.Parallel()
	g := newGuard(&fakeSession{state: service.StateUnauthenticated})

	rec := httptest.NewRecorder()
	var saw *domainauth.User
	g.RequireAuth(okHandler(&saw)).ServeHTTP(rec, apiGet("/console/leads"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authentication_required", body["error"])
}

func TestGuardUnauthenticatedWinsOverPermissionCheck(t *testing.T) {
	t.Parallel()
	// With no session, every permission check would also fail; the
	// request must still land on login, not the unauthorized view.
	g := newGuard(&fakeSession{state: service.StateUnauthenticated})

	rec := httptest.NewRecorder()
	var saw *domainauth.User
	g.Protect(Requirement{Permission: domainauth.PermEditLeads})(okHandler(&saw)).
		ServeHTTP(rec, browserGet("/console/leads/edit"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Nil(t, saw)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "/console/leads/edit", loc.Query().Get("redirect_uri"))
}

func TestGuardInsufficientPermission(t *testing.T) {
	t.Parallel()

	t.Run("browser goes to unauthorized, not login", func(t *testing.T) {
		t.Parallel()
		g := newGuard(authenticated(domainauth.RoleViewer))

		rec := httptest.NewRecorder()
		var saw *domainauth.User
		g.Protect(Requirement{Permission: domainauth.PermEditLeads})(okHandler(&saw)).
			ServeHTTP(rec, browserGet("/console/leads/edit"))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
		assert.Nil(t, saw)
	})

	t.Run("api gets 403", func(t *testing.T) {
		t.Parallel()
		g := newGuard(authenticated(domainauth.RoleViewer))

		rec := httptest.NewRecorder()
		var saw *domainauth.User
		g.Protect(Requirement{Permission: domainauth.PermEditLeads})(okHandler(&saw)).
			ServeHTTP(rec, apiGet("/console/leads/edit"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "insufficient_permissions", body["error"])
	})
}

func TestGuardRoleChecks(t *testing.T) {
	t.Parallel()

	t.Run("viewer fails admin role check to unauthorized", func(t *testing.T) {
		t.Parallel()
		// Authenticated but under-privileged goes to the unauthorized
		// view; sending it to login would loop forever.
		g := newGuard(authenticated(domainauth.RoleViewer))

		rec := httptest.NewRecorder()
		var saw *domainauth.User
		g.RequireRole(domainauth.RoleAdmin)(okHandler(&saw)).
			ServeHTTP(rec, browserGet("/console/settings"))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
	})

	t.Run("any-role passes on membership", func(t *testing.T) {
		t.Parallel()
		g := newGuard(authenticated(domainauth.RoleManager))

		rec := httptest.NewRecorder()
		var saw *domainauth.User
		g.RequireAnyRole(domainauth.RoleAdmin, domainauth.RoleManager)(okHandler(&saw)).
			ServeHTTP(rec, browserGet("/console/agents"))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, saw)
	})

	t.Run("admin passes every permission check", func(t *testing.T) {
		t.Parallel()
		g := newGuard(authenticated(domainauth.RoleAdmin))

		rec := httptest.NewRecorder()
		var saw *domainauth.User
		g.Protect(Requirement{Permission: domainauth.PermManageAgents})(okHandler(&saw)).
			ServeHTTP(rec, browserGet("/console/agents"))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGuardRestoringState(t *testing.T) {
	t.Parallel()

	t.Run("browser gets a holding page, no redirect", func(t *testing.T) {
		t.Parallel()
		g := newGuard(&fakeSession{state: service.StateRestoring})

		rec := httptest.NewRecorder()
		var saw *domainauth.User
		g.RequireAuth(okHandler(&saw)).ServeHTTP(rec, browserGet("/console/dashboard"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Location"))
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Restoring")
	})

	t.Run("api gets 503 with retry hint", func(t *testing.T) {
		t.Parallel()
		g := newGuard(&fakeSession{state: service.StateRestoring})

		rec := httptest.NewRecorder()
		var saw *domainauth.User
		g.RequireAuth(okHandler(&saw)).ServeHTTP(rec, apiGet("/console/dashboard"))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})
}

func TestSafeRedirectPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain path", "/console/leads", "/console/leads"},
		{"path with query", "/console/leads?page=2", "/console/leads?page=2"},
		{"empty", "", "/"},
		{"absolute url", "https://evil.example.com/", "/"},
		{"scheme relative", "//evil.example.com/", "/"},
		{"no leading slash", "console/leads", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, safeRedirectPath(tt.in))
		})
	}
}
