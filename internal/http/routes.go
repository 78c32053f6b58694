package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
	"github.com/voicedesk/console-go/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Sessions         *service.SessionManager
	Authz            *service.Authorizer
	LoginPath        string
	UnauthorizedPath string
	Logger           *slog.Logger
}

// NewRouter wires the auth endpoints, the guarded console views, and
// the health probe into one handler.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Sessions: services.Sessions, Logger: services.Logger}
	consoleHandlers := &ConsoleHandlers{Authz: services.Authz}
	guard := &Guard{
		Sessions:         services.Sessions,
		Authz:            services.Authz,
		LoginPath:        services.LoginPath,
		UnauthorizedPath: services.UnauthorizedPath,
		Logger:           services.Logger,
	}

	mux.Handle("GET /healthz", http.HandlerFunc(Health))
	mux.Handle("HEAD /healthz", http.HandlerFunc(Health))

	registerAuthRoutes(mux, authHandlers)
	registerConsoleRoutes(mux, consoleHandlers, guard)

	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.Handle("POST /auth/login", http.HandlerFunc(h.Login))
	mux.Handle("POST /auth/register", http.HandlerFunc(h.Register))
	mux.Handle("POST /auth/logout", http.HandlerFunc(h.Logout))
	mux.Handle("POST /auth/refresh", http.HandlerFunc(h.Refresh))
	mux.Handle("GET /auth/session", http.HandlerFunc(h.Session))

	// Browser landing pages the guard redirects to. The console UI
	// proper lives in the frontend; these exist so redirects resolve.
	mux.Handle("GET /auth/login", http.HandlerFunc(loginPage))
	mux.Handle("GET /unauthorized", http.HandlerFunc(unauthorizedPage))
}

func registerConsoleRoutes(mux *http.ServeMux, h *ConsoleHandlers, guard *Guard) {
	protect := func(req Requirement, handler http.HandlerFunc) http.Handler {
		return guard.Protect(req)(handler)
	}

	mux.Handle("GET /console/dashboard",
		protect(Requirement{Permission: domainauth.PermViewDashboard}, h.Dashboard))
	mux.Handle("GET /console/leads",
		protect(Requirement{Permission: domainauth.PermViewLeads}, h.Leads))
	mux.Handle("GET /console/calls",
		protect(Requirement{Permission: domainauth.PermViewCalls}, h.Calls))
	mux.Handle("GET /console/metrics",
		protect(Requirement{Permission: domainauth.PermViewMetrics}, h.Metrics))
	mux.Handle("GET /console/agents",
		protect(Requirement{Permission: domainauth.PermManageAgents}, h.Agents))
	mux.Handle("GET /console/export",
		protect(Requirement{Permission: domainauth.PermExportData}, h.Export))
	mux.Handle("GET /console/settings",
		protect(Requirement{Role: domainauth.RoleAdmin}, h.Settings))

	mux.Handle("GET /authz/check", guard.RequireAuth(http.HandlerFunc(h.AuthzCheck)))
}

const loginPageHTML = `<!doctype html>
<html><head><title>Sign in</title></head>
<body><h1>Sign in</h1><p>POST credentials to /auth/login.</p></body></html>
`

const unauthorizedPageHTML = `<!doctype html>
<html><head><title>Unauthorized</title></head>
<body><h1>Unauthorized</h1><p>Your role does not grant access to that view.</p></body></html>
`

func loginPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(loginPageHTML))
}

func unauthorizedPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(unauthorizedPageHTML))
}
