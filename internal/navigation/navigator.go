package navigation

import (
	"log/slog"
	"sync"

	"clubhub/internal/rbac"
	"clubhub/internal/session"
)

// Event is published whenever the rendered view changes or a navigation is redirected.
type Event struct {
	Requested  string
	View       rbac.View
	Redirected bool
	// Forced is set when the session ended underneath the caller (refresh failure).
	Forced bool
	Reason session.Reason
}

// Navigator tracks the current view and re-runs the guard whenever the session changes.
type Navigator struct {
	log *slog.Logger

	mu        sync.Mutex
	role      rbac.Role
	requested string
	current   rbac.View
	listeners []func(Event)

	unsubscribe func()
}

// New starts at home and follows state until Close.
func New(state session.Reader, log *slog.Logger) *Navigator {
	if log == nil {
		log = slog.Default()
	}
	n := &Navigator{log: log, requested: string(rbac.ViewHome), current: rbac.ViewHome}
	id, _ := state.Current()
	n.role = id.Role
	n.unsubscribe = state.Subscribe(n.onSessionChange)
	return n
}

func (n *Navigator) Close() {
	if n.unsubscribe != nil {
		n.unsubscribe()
	}
}

// OnChange registers fn for navigation events. Listeners run synchronously.
func (n *Navigator) OnChange(fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

func (n *Navigator) Current() rbac.View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate resolves name against the current role and makes the result current.
func (n *Navigator) Navigate(name string) Event {
	n.mu.Lock()
	view := Resolve(name, n.role)
	n.requested = name
	n.current = view
	ev := Event{Requested: name, View: view, Redirected: view != viewName(name)}
	fns := n.snapshot()
	n.mu.Unlock()

	if ev.Redirected {
		n.log.Debug("navigation redirected", "requested", name, "view", string(view))
	}
	n.publish(fns, ev)
	return ev
}

func (n *Navigator) onSessionChange(c session.Change) {
	n.mu.Lock()
	n.role = c.Current.Role

	var ev Event
	if c.Reason == session.ReasonRefreshFailed {
		n.requested = string(rbac.ViewLogin)
		n.current = rbac.ViewLogin
		ev = Event{Requested: string(rbac.ViewLogin), View: rbac.ViewLogin, Redirected: true, Forced: true, Reason: c.Reason}
	} else {
		view := Resolve(n.requested, n.role)
		if view == n.current {
			n.mu.Unlock()
			return
		}
		n.current = view
		ev = Event{Requested: n.requested, View: view, Redirected: view != viewName(n.requested), Reason: c.Reason}
	}
	fns := n.snapshot()
	n.mu.Unlock()

	n.log.Debug("navigation re-evaluated", "reason", string(c.Reason), "view", string(ev.View))
	n.publish(fns, ev)
}

func (n *Navigator) snapshot() []func(Event) {
	out := make([]func(Event), len(n.listeners))
	copy(out, n.listeners)
	return out
}

func (n *Navigator) publish(fns []func(Event), ev Event) {
	for _, fn := range fns {
		fn(ev)
	}
}
