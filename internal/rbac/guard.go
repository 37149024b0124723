package rbac

import "slices"

// Decision is the outcome of a guard check: either render the requested view or
// redirect to Target.
type Decision struct {
	Render bool
	Target View
}

func render() Decision { return Decision{Render: true} }

func redirect(v View) Decision { return Decision{Target: v} }

// Decide is consulted before a restricted view is rendered.
//
// Rules:
//   - no session (zero role) always redirects to login
//   - an empty allowed set admits any authenticated role
//   - a role outside a non-empty allowed set is sent to its own dashboard, never to an
//     error page
func Decide(role Role, allowed []Role) Decision {
	if role == "" {
		return redirect(ViewLogin)
	}
	if !role.Valid() {
		return redirect(ViewHome)
	}
	if len(allowed) == 0 || slices.Contains(allowed, role) {
		return render()
	}
	return redirect(DashboardFor(role))
}
