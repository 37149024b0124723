package session

import (
	"slices"
	"sync"

	"clubhub/internal/rbac"
)

// Reason says why the session identity changed.
type Reason string

const (
	ReasonInitialized        Reason = "initialized"
	ReasonLogin              Reason = "login"
	ReasonLogout             Reason = "logout"
	ReasonRefreshed          Reason = "refreshed"
	ReasonCredentialRejected Reason = "credential_rejected"
	ReasonRefreshFailed      Reason = "refresh_failed"
)

// Change is published to subscribers after every transition. A zero Identity means
// anonymous.
type Change struct {
	Previous Identity
	Current  Identity
	Reason   Reason
}

func (c Change) Authenticated() bool { return c.Current.Role != "" }

// Reader is the read side of the session state.
type Reader interface {
	Current() (Identity, bool)
	Subscribe(fn func(Change)) (unsubscribe func())
}

// State holds the single live session identity. It has no exported mutators: only the
// Authenticator in this package writes it.
type State struct {
	mu      sync.RWMutex
	current Identity
	present bool

	subMu  sync.Mutex
	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Change)
}

func NewState() *State {
	return &State{}
}

var _ Reader = (*State)(nil)

// Current returns the identity and whether a session exists.
func (s *State) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.present
}

// Role returns the session role, or the zero role when anonymous.
func (s *State) Role() rbac.Role {
	id, _ := s.Current()
	return id.Role
}

// Subscribe registers fn for every subsequent change. Callbacks run synchronously on the
// writing goroutine, after the state lock is released, and must not call back into the
// Authenticator.
func (s *State) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
			s.subMu.Unlock()
		})
	}
}

func (s *State) install(id Identity, reason Reason) {
	s.replace(id, true, reason)
}

func (s *State) clear(reason Reason) {
	s.replace(Identity{}, false, reason)
}

func (s *State) replace(id Identity, present bool, reason Reason) {
	s.mu.Lock()
	prev := s.current
	s.current = id
	s.present = present
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, sub := range s.subs {
		fns = append(fns, sub.fn)
	}
	s.subMu.Unlock()

	ch := Change{Previous: prev, Current: id, Reason: reason}
	for _, fn := range fns {
		fn(ch)
	}
}
