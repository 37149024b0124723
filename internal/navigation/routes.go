package navigation

import (
	"strings"

	"clubhub/internal/rbac"
)

// Route describes who may render a view. Public routes skip the guard; an empty Allowed
// set on a protected route admits any authenticated role.
type Route struct {
	View    rbac.View
	Public  bool
	Allowed []rbac.Role
	Title   string
}

var routes = map[rbac.View]Route{
	rbac.ViewHome:                {View: rbac.ViewHome, Public: true, Title: "Club Hub"},
	rbac.ViewLogin:               {View: rbac.ViewLogin, Public: true, Title: "Log in"},
	rbac.ViewRegister:            {View: rbac.ViewRegister, Public: true, Title: "Create an account"},
	rbac.ViewClubs:               {View: rbac.ViewClubs, Title: "Clubs"},
	rbac.ViewEvents:              {View: rbac.ViewEvents, Title: "Events"},
	rbac.ViewDashboard:           {View: rbac.ViewDashboard, Title: "Dashboard"},
	rbac.ViewStudentDashboard:    {View: rbac.ViewStudentDashboard, Allowed: []rbac.Role{rbac.RoleStudent}, Title: "Student dashboard"},
	rbac.ViewAdminDashboard:      {View: rbac.ViewAdminDashboard, Allowed: []rbac.Role{rbac.RoleAdmin}, Title: "Admin dashboard"},
	rbac.ViewEventAdminDashboard: {View: rbac.ViewEventAdminDashboard, Allowed: []rbac.Role{rbac.RoleEventAdmin}, Title: "Event admin dashboard"},
}

// Lookup maps a destination name to its route. Unknown names fall through to home.
func Lookup(name string) Route {
	if r, ok := routes[viewName(name)]; ok {
		return r
	}
	return routes[rbac.ViewHome]
}

// viewName is the view a caller asked for, before any guard or unknown-name fallback.
func viewName(name string) rbac.View {
	return rbac.View(strings.ToLower(strings.TrimSpace(name)))
}

// maxHops bounds redirect chains; the longest real chain is dashboard -> login.
const maxHops = 4

// Resolve follows guard redirects from name to the view the role may render.
func Resolve(name string, role rbac.Role) rbac.View {
	r := Lookup(name)
	for range maxHops {
		target := step(r, role)
		if target == r.View {
			return target
		}
		r = routes[target]
	}
	return rbac.ViewHome
}

func step(r Route, role rbac.Role) rbac.View {
	if r.Public {
		return r.View
	}
	if r.View == rbac.ViewDashboard {
		return rbac.DashboardFor(role)
	}
	d := rbac.Decide(role, r.Allowed)
	if d.Render {
		return r.View
	}
	return d.Target
}
