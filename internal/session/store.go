package session

import "context"

// Persisted entry names, shared by every backend.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Pair is the credential pair issued by the backend. Both values are opaque to the client
// apart from decoding the access credential's claims.
type Pair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

func (p Pair) complete() bool { return p.Access != "" && p.Refresh != "" }

// Store persists the credential pair across process restarts.
//
// Save overwrites both entries atomically. Load reports ok=false when either entry is
// missing. Clear removes both and is idempotent.
type Store interface {
	Save(ctx context.Context, p Pair) error
	Load(ctx context.Context) (Pair, bool, error)
	Clear(ctx context.Context) error
}
