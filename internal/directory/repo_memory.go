package directory

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"sync"
)

// MemoryRepo keeps clubs and events in process. IDs are sequential per kind.
type MemoryRepo struct {
	mu       sync.RWMutex
	clubs    map[string]Club
	events   map[string]Event
	clubSeq  int
	eventSeq int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{clubs: map[string]Club{}, events: map[string]Event{}}
}

func (r *MemoryRepo) CreateClub(_ context.Context, c Club) (Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clubSeq++
	c.ID = strconv.Itoa(r.clubSeq)
	r.clubs[c.ID] = cloneClub(c)
	return cloneClub(c), nil
}

func (r *MemoryRepo) GetClub(_ context.Context, id string) (Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clubs[id]
	if !ok {
		return Club{}, ErrNotFound
	}
	return cloneClub(c), nil
}

func (r *MemoryRepo) ListClubs(_ context.Context) ([]Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Club, 0, len(r.clubs))
	for _, c := range r.clubs {
		out = append(out, cloneClub(c))
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out, nil
}

// UpdateClub applies fn to the stored club atomically. fn's error aborts the update.
func (r *MemoryRepo) UpdateClub(_ context.Context, id string, fn func(*Club) error) (Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clubs[id]
	if !ok {
		return Club{}, ErrNotFound
	}
	c = cloneClub(c)
	if err := fn(&c); err != nil {
		return Club{}, err
	}
	r.clubs[id] = cloneClub(c)
	return cloneClub(c), nil
}

// DeleteClub removes the club and its events.
func (r *MemoryRepo) DeleteClub(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clubs[id]; !ok {
		return ErrNotFound
	}
	delete(r.clubs, id)
	for eid, e := range r.events {
		if e.ClubID == id {
			delete(r.events, eid)
		}
	}
	return nil
}

func (r *MemoryRepo) CreateEvent(_ context.Context, e Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clubs[e.ClubID]; !ok {
		return Event{}, ErrUnknownClub
	}
	r.eventSeq++
	e.ID = strconv.Itoa(r.eventSeq)
	r.events[e.ID] = cloneEvent(e)
	return cloneEvent(e), nil
}

func (r *MemoryRepo) GetEvent(_ context.Context, id string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return cloneEvent(e), nil
}

func (r *MemoryRepo) ListEvents(_ context.Context) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out, nil
}

func (r *MemoryRepo) UpdateEvent(_ context.Context, id string, fn func(*Event) error) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	e = cloneEvent(e)
	if err := fn(&e); err != nil {
		return Event{}, err
	}
	if _, ok := r.clubs[e.ClubID]; !ok {
		return Event{}, ErrUnknownClub
	}
	r.events[id] = cloneEvent(e)
	return cloneEvent(e), nil
}

func (r *MemoryRepo) DeleteEvent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func cloneClub(c Club) Club {
	c.Members = slices.Clone(c.Members)
	if c.Members == nil {
		c.Members = []string{}
	}
	c.MemberCount = len(c.Members)
	return c
}

func cloneEvent(e Event) Event {
	e.Attendees = slices.Clone(e.Attendees)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	e.AttendeeCount = len(e.Attendees)
	return e
}

func idLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
