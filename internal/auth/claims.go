package auth

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for club hub credentials.
// Access tokens carry the full identity; refresh tokens carry only user_id and token_type.
type Claims struct {
	jwt.RegisteredClaims

	UserID    ClaimID   `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	UserType  string    `json:"user_type,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// ClaimID accepts both string and numeric user_id claims; some issuers emit integer
// primary keys.
type ClaimID string

func (id *ClaimID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ClaimID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ClaimID(n.String())
	return nil
}

func (id ClaimID) String() string { return string(id) }
