package accounts

import (
	"time"

	"clubhub/internal/rbac"
)

// User is a registered account. PasswordHash is a bcrypt hash and never leaves this package
// boundary in API responses.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         rbac.Role
	PasswordHash []byte
	CreatedAt    time.Time
}

// Registration is a request to create an account. Role defaults to STUDENT.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      rbac.Role
}
