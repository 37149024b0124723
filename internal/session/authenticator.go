package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"clubhub/internal/audit"
	"clubhub/internal/rbac"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidCredentials is the only error Login reports for a rejected login. It does
	// not say whether the account exists.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNoSession = errors.New("session: no active session")

	// ErrSessionReplaced means a logout or login happened while a refresh was in flight.
	// The refreshed credential is dropped and the newer session is left alone.
	ErrSessionReplaced = errors.New("session: replaced during refresh")

	ErrIdentityChanged = errors.New("session: refreshed credential names a different identity")
)

// Issuer is the credential-issuing backend.
type Issuer interface {
	// Obtain exchanges an email and password for a credential pair.
	Obtain(ctx context.Context, email, password string) (Pair, error)
	// Refresh exchanges a refresh credential for a new access credential. Pair.Refresh is
	// empty unless the backend rotated it.
	Refresh(ctx context.Context, refresh string) (Pair, error)
}

// Authenticator is the only writer of the session Store and State.
type Authenticator struct {
	store  Store
	issuer Issuer
	state  *State
	log    *slog.Logger
	audit  *audit.Service

	// mu serializes store+state writes; gen counts login/logout transitions.
	mu  sync.Mutex
	gen uint64

	refreshes singleflight.Group
}

type Option func(*Authenticator)

func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithAudit records login, logout and refresh outcomes. Recording is best-effort.
func WithAudit(s *audit.Service) Option {
	return func(a *Authenticator) { a.audit = s }
}

func NewAuthenticator(store Store, issuer Issuer, opts ...Option) *Authenticator {
	a := &Authenticator{
		store:  store,
		issuer: issuer,
		state:  NewState(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State exposes the read side of the session.
func (a *Authenticator) State() *State { return a.state }

// Initialize derives the session from the store. It makes no network call: an expired but
// well-formed credential yields an identity until the backend rejects it. An unreadable
// store or undecodable credential leaves the store empty and the session anonymous.
func (a *Authenticator) Initialize(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pair, ok, err := a.store.Load(ctx)
	if err != nil {
		a.log.Warn("session store unreadable; discarding", "err", err)
		a.discardLocked(ctx, "store unreadable")
		return
	}
	if !ok {
		// a half-written pair reads as absent; drop whatever is left of it
		if err := a.store.Clear(ctx); err != nil {
			a.log.Warn("session store clear failed", "err", err)
		}
		a.state.clear(ReasonInitialized)
		return
	}

	id, err := identityFrom(pair.Access)
	if err != nil {
		a.log.Warn("stored credential rejected; discarding", "err", err)
		a.discardLocked(ctx, "malformed credential")
		return
	}
	a.state.install(id, ReasonInitialized)
	a.log.Debug("session restored", "user_id", id.ID, "role", string(id.Role))
}

func (a *Authenticator) discardLocked(ctx context.Context, reason string) {
	if err := a.store.Clear(ctx); err != nil {
		a.log.Error("session store clear failed", "err", err)
	}
	a.gen++
	a.state.clear(ReasonCredentialRejected)
	a.audit.LogCredentialDiscarded(ctx, reason)
}

// Login exchanges credentials for a session and returns the role's default view. Any
// backend failure, including an undecodable credential, leaves the store and state
// untouched and reports ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (rbac.View, error) {
	pair, err := a.issuer.Obtain(ctx, email, password)
	if err != nil {
		a.log.Debug("login rejected", "err", err)
		a.audit.LogLogin(ctx, audit.Actor{Email: email}, false)
		return "", ErrInvalidCredentials
	}
	if !pair.complete() {
		a.log.Debug("login rejected", "err", "incomplete credential pair")
		a.audit.LogLogin(ctx, audit.Actor{Email: email}, false)
		return "", ErrInvalidCredentials
	}
	id, err := identityFrom(pair.Access)
	if err != nil {
		a.log.Debug("login rejected", "err", err)
		a.audit.LogLogin(ctx, audit.Actor{Email: email}, false)
		return "", ErrInvalidCredentials
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.Save(ctx, pair); err != nil {
		return "", fmt.Errorf("session: save credentials: %w", err)
	}
	a.gen++
	a.state.install(id, ReasonLogin)

	a.log.Info("login succeeded", "user_id", id.ID, "role", string(id.Role))
	a.audit.LogLogin(ctx, actorOf(id), true)
	return rbac.DashboardFor(id.Role), nil
}

// Logout clears the store and state. It never fails and is idempotent; store errors are
// logged.
func (a *Authenticator) Logout(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev, _ := a.state.Current()
	if err := a.store.Clear(ctx); err != nil {
		a.log.Error("session store clear failed", "err", err)
	}
	a.gen++
	a.state.clear(ReasonLogout)
	if prev.Role != "" {
		a.audit.LogLogout(ctx, actorOf(prev))
	}
}

// AccessToken returns the stored access credential, if any.
func (a *Authenticator) AccessToken(ctx context.Context) (string, bool) {
	pair, ok, err := a.store.Load(ctx)
	if err != nil {
		a.log.Warn("session store unreadable", "err", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	return pair.Access, true
}

// Refresh obtains a new access credential with the stored refresh credential and returns
// it. Concurrent callers share one backend round trip. A refreshed credential naming a
// different user or role is a failed refresh.
func (a *Authenticator) Refresh(ctx context.Context) (string, error) {
	// One caller's cancellation must not fail the others sharing the flight.
	shared := context.WithoutCancel(ctx)
	v, err, _ := a.refreshes.Do("refresh", func() (any, error) {
		return a.refresh(shared)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (a *Authenticator) refresh(ctx context.Context) (string, error) {
	a.mu.Lock()
	gen := a.gen
	a.mu.Unlock()

	pair, ok, err := a.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("session: load credentials: %w", err)
	}
	if !ok {
		return "", ErrNoSession
	}

	next, err := a.issuer.Refresh(ctx, pair.Refresh)
	if err != nil {
		return "", fmt.Errorf("session: refresh rejected: %w", err)
	}
	id, err := identityFrom(next.Access)
	if err != nil {
		return "", fmt.Errorf("session: refreshed credential: %w", err)
	}
	if next.Refresh == "" {
		next.Refresh = pair.Refresh
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		return "", ErrSessionReplaced
	}
	cur, present := a.state.Current()
	if !present {
		return "", ErrNoSession
	}
	if !cur.sameSubject(id) {
		return "", ErrIdentityChanged
	}
	if err := a.store.Save(ctx, next); err != nil {
		return "", fmt.Errorf("session: save credentials: %w", err)
	}
	a.state.install(id, ReasonRefreshed)

	a.log.Debug("access credential refreshed", "user_id", id.ID)
	a.audit.LogRefresh(ctx, actorOf(id), nil)
	return next.Access, nil
}

// Expire ends the session after an unrecoverable refresh failure. Subscribers see
// ReasonRefreshFailed and send the caller to login.
func (a *Authenticator) Expire(ctx context.Context, cause error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev, _ := a.state.Current()
	if err := a.store.Clear(ctx); err != nil {
		a.log.Error("session store clear failed", "err", err)
	}
	a.gen++
	a.state.clear(ReasonRefreshFailed)

	a.log.Warn("session expired", "user_id", prev.ID, "cause", cause)
	if cause == nil {
		cause = ErrNoSession
	}
	a.audit.LogRefresh(ctx, actorOf(prev), cause)
}

func actorOf(id Identity) audit.Actor {
	return audit.Actor{UserID: id.ID, Email: id.Email, Role: string(id.Role)}
}
