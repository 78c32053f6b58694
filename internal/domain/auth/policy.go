package auth

// Permission is a string capability flag checked before allowing an
// action or view.
type Permission string

const (
	PermViewDashboard Permission = "view_dashboard"
	PermViewLeads     Permission = "view_leads"
	PermEditLeads     Permission = "edit_leads"
	PermViewCalls     Permission = "view_calls"
	PermViewMetrics   Permission = "view_metrics"
	PermExportData    Permission = "export_data"
	PermManageAgents  Permission = "manage_agents"
)

// allPermissions enumerates every known permission, in display order.
var allPermissions = []Permission{
	PermViewDashboard,
	PermViewLeads,
	PermEditLeads,
	PermViewCalls,
	PermViewMetrics,
	PermExportData,
	PermManageAgents,
}

// rolePermissions is the policy table, fixed at build time. Admin is
// intentionally absent: it holds every permission implicitly.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleManager: permSet(
		PermViewDashboard, PermViewLeads, PermEditLeads, PermViewCalls,
		PermViewMetrics, PermExportData, PermManageAgents,
	),
	RoleAgent: permSet(
		PermViewDashboard, PermViewLeads, PermEditLeads, PermViewCalls,
	),
	RoleViewer: permSet(
		PermViewDashboard, PermViewLeads, PermViewCalls,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Can reports whether the role grants the permission. Admin is
// allowed everything; unknown roles and unknown permissions are
// denied.
func (r Role) Can(p Permission) bool {
	if r == RoleAdmin {
		return true
	}
	set, ok := rolePermissions[r]
	if !ok {
		return false
	}
	_, ok = set[p]
	return ok
}

// Permissions returns the permissions the role grants, in display
// order. Admin reports the full known set.
func (r Role) Permissions() []Permission {
	if r == RoleAdmin {
		return append([]Permission(nil), allPermissions...)
	}
	set, ok := rolePermissions[r]
	if !ok {
		return nil
	}
	perms := make([]Permission, 0, len(set))
	for _, p := range allPermissions {
		if _, granted := set[p]; granted {
			perms = append(perms, p)
		}
	}
	return perms
}
