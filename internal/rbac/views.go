package rbac

// View is a named navigation destination.
type View string

const (
	ViewHome                View = "home"
	ViewLogin               View = "login"
	ViewRegister            View = "register"
	ViewClubs               View = "clubs"
	ViewEvents              View = "events"
	ViewDashboard           View = "dashboard" // routes to the caller's own dashboard
	ViewStudentDashboard    View = "student-dashboard"
	ViewAdminDashboard      View = "admin-dashboard"
	ViewEventAdminDashboard View = "event-admin-dashboard"
)

var defaultViews = map[Role]View{
	RoleStudent:    ViewStudentDashboard,
	RoleAdmin:      ViewAdminDashboard,
	RoleEventAdmin: ViewEventAdminDashboard,
}

// DashboardFor returns the landing view for a role: where login sends the caller and where
// a forbidden navigation is redirected. The zero role lands on login.
func DashboardFor(r Role) View {
	if r == "" {
		return ViewLogin
	}
	if v, ok := defaultViews[r]; ok {
		return v
	}
	return ViewHome
}
