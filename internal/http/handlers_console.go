package httpx

import (
	"net/http"
	"strings"

	domainauth "github.com/voicedesk/console-go/internal/domain/auth"
)

// ConsoleHandlers serves the guarded console views. Each handler
// assumes the guard already placed a user in the request context.
type ConsoleHandlers struct {
	Authz AuthzChecker
}

func (h *ConsoleHandlers) view(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "authentication_required",
				Err:     errNoUser,
			})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"view": name,
			"user": user.Email,
			"role": user.Role,
		})
	}
}

var errNoUser = plainError("no user in request context")

// Dashboard handles GET /console/dashboard.
func (h *ConsoleHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.view("dashboard")(w, r)
}

// Leads handles GET /console/leads.
func (h *ConsoleHandlers) Leads(w http.ResponseWriter, r *http.Request) {
	h.view("leads")(w, r)
}

// Calls handles GET /console/calls.
func (h *ConsoleHandlers) Calls(w http.ResponseWriter, r *http.Request) {
	h.view("calls")(w, r)
}

// Metrics handles GET /console/metrics.
func (h *ConsoleHandlers) Metrics(w http.ResponseWriter, r *http.Request) {
	h.view("metrics")(w, r)
}

// Agents handles GET /console/agents.
func (h *ConsoleHandlers) Agents(w http.ResponseWriter, r *http.Request) {
	h.view("agents")(w, r)
}

// Export handles GET /console/export.
func (h *ConsoleHandlers) Export(w http.ResponseWriter, r *http.Request) {
	h.view("export")(w, r)
}

// Settings handles GET /console/settings, the admin-only view.
func (h *ConsoleHandlers) Settings(w http.ResponseWriter, r *http.Request) {
	h.view("settings")(w, r)
}

// AuthzCheck handles GET /authz/check: it evaluates a single predicate
// from query parameters so UI code can probe capabilities without
// duplicating the policy table.
//
//	?permission=edit_leads
//	?role=admin
//	?any_role=admin,manager
func (h *ConsoleHandlers) AuthzCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	allowed := false
	switch {
	case q.Get("permission") != "":
		allowed = h.Authz.HasPermission(domainauth.Permission(q.Get("permission")))
	case q.Get("role") != "":
		allowed = h.Authz.HasRole(domainauth.Role(q.Get("role")))
	case q.Get("any_role") != "":
		var roles []domainauth.Role
		for _, raw := range strings.Split(q.Get("any_role"), ",") {
			if raw = strings.TrimSpace(raw); raw != "" {
				roles = append(roles, domainauth.Role(raw))
			}
		}
		allowed = h.Authz.HasAnyRole(roles...)
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     plainError("one of permission, role or any_role is required"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}
