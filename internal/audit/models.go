package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - Credentials never appear in any field.
// - Recording is best-effort; do not block login, logout or refresh on audit failures.
type Event struct {
	ID string `json:"id" db:"id"`

	// Source is "client" for the terminal client and "backend" for the development API.
	Source Source `json:"source" db:"source"`

	Type EventType `json:"type" db:"type"`

	// Actor fields describe the identity involved, when known.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorEmail  string `json:"actor_email,omitempty" db:"actor_email"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// Profile is the client session profile (client events only).
	Profile string `json:"profile,omitempty" db:"profile"`

	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short human-readable description, e.g. the reason a credential was discarded.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Source string

const (
	SourceClient  Source = "client"
	SourceBackend Source = "backend"
)

type EventType string

const (
	EventLoginSucceeded      EventType = "login_succeeded"
	EventLoginFailed         EventType = "login_failed"
	EventLogout              EventType = "logout"
	EventTokenRefreshed      EventType = "token_refreshed"
	EventRefreshFailed       EventType = "refresh_failed"
	EventCredentialDiscarded EventType = "credential_discarded"
	EventTokenIssued         EventType = "token_issued"
	EventUserRegistered      EventType = "user_registered"
	EventResourceDeleted     EventType = "resource_deleted"
)
