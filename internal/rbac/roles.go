package rbac

import "fmt"

// Role is the closed set of account types. Keep these stable; they are carried in the
// user_type claim and are part of the auth/RBAC contract with the backend.
//
// The zero value means "no session".
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleEventAdmin Role = "EVENT_ADMIN"
	RoleAdmin      Role = "ADMIN"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleEventAdmin, RoleAdmin}

// ParseRole maps a user_type claim to a Role. Unknown values are rejected rather than
// passed through, so callers never hold a role outside the enumeration.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleEventAdmin, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("rbac: unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }
