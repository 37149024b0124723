package session

import (
	"fmt"
	"strings"

	"clubhub/internal/auth"
	"clubhub/internal/rbac"
)

// Identity is the caller's identity as read from the access credential's claims.
// The zero Identity means no session.
type Identity struct {
	ID        string
	Email     string
	Role      rbac.Role
	FirstName string
	LastName  string
}

func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Email
	}
	return name
}

func (i Identity) sameSubject(o Identity) bool {
	return i.ID == o.ID && i.Role == o.Role
}

// identityFrom decodes an access credential. An unknown user_type is as malformed as a
// missing one.
func identityFrom(access string) (Identity, error) {
	c, err := auth.Decode(access)
	if err != nil {
		return Identity{}, err
	}
	role, err := rbac.ParseRole(c.UserType)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", auth.ErrMalformedCredential, err)
	}
	return Identity{
		ID:        c.UserID.String(),
		Email:     c.Email,
		Role:      role,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}, nil
}
