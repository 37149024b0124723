package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clubhub/internal/auth"
	"clubhub/internal/config"

	"github.com/stretchr/testify/require"
)

var (
	adminSubject   = auth.Subject{UserID: "1", Email: "admin@campus.edu", UserType: "ADMIN", FirstName: "Ada", LastName: "Admin"}
	studentSubject = auth.Subject{UserID: "2", Email: "a@b.com", UserType: "STUDENT", FirstName: "Sam"}
)

func newManager(t *testing.T) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	require.NoError(t, err)
	return m
}

func issue(t *testing.T, m *auth.Manager, sub auth.Subject) Pair {
	t.Helper()
	p, err := m.IssuePair(time.Now(), sub)
	require.NoError(t, err)
	return Pair{Access: p.AccessToken, Refresh: p.RefreshToken}
}

// fakeIssuer accepts one email/password and refreshes any refresh token it issued.
type fakeIssuer struct {
	t   *testing.T
	m   *auth.Manager
	sub auth.Subject
	pw  string

	rotate     bool
	refreshAs  *auth.Subject
	refreshErr error
	obtainErr  error
	gate       chan struct{}

	refreshCalls atomic.Int32
	mu           sync.Mutex
	refreshSeen  []string
}

func (f *fakeIssuer) Obtain(_ context.Context, email, password string) (Pair, error) {
	if f.obtainErr != nil {
		return Pair{}, f.obtainErr
	}
	if email != f.sub.Email || password != f.pw {
		return Pair{}, errors.New("401: no active account found")
	}
	return issue(f.t, f.m, f.sub), nil
}

func (f *fakeIssuer) Refresh(_ context.Context, refresh string) (Pair, error) {
	f.refreshCalls.Add(1)
	f.mu.Lock()
	f.refreshSeen = append(f.refreshSeen, refresh)
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	if f.refreshErr != nil {
		return Pair{}, f.refreshErr
	}
	sub := f.sub
	if f.refreshAs != nil {
		sub = *f.refreshAs
	}
	p := issue(f.t, f.m, sub)
	if !f.rotate {
		p.Refresh = ""
	}
	return p, nil
}

func newIssuer(t *testing.T, sub auth.Subject) *fakeIssuer {
	return &fakeIssuer{t: t, m: newManager(t), sub: sub, pw: "correct-horse"}
}

// recorder collects published changes.
type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) observe(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) reasons() []Reason {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reason, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.Reason)
	}
	return out
}
