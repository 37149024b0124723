package reporting

import (
	"context"
	"errors"
	"slices"
	"sync"

	"clubhub/internal/directory"
)

// MemoryRepo is a simple in-memory reporting repository for tests and offline use.
// UserID stands in for the caller when a filter says "me".
type MemoryRepo struct {
	mu sync.Mutex

	UserID string
	Clubs  []directory.Club
	Events []directory.Event
}

func NewMemoryRepo(userID string) *MemoryRepo { return &MemoryRepo{UserID: userID} }

func (r *MemoryRepo) who(filter string) (string, error) {
	if filter != Me {
		return filter, nil
	}
	if r.UserID == "" {
		return "", errors.New("reporting: caller unknown")
	}
	return r.UserID, nil
}

func (r *MemoryRepo) ListClubs(_ context.Context, member string) ([]directory.Club, error) {
	id, err := r.who(member)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]directory.Club, 0)
	for _, c := range r.Clubs {
		if id != "" && !slices.Contains(c.Members, id) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) ManagedClubs(_ context.Context) ([]directory.Club, error) {
	id, err := r.who(Me)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]directory.Club, 0)
	for _, c := range r.Clubs {
		if c.AdminID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListEvents(_ context.Context, attendee string) ([]directory.Event, error) {
	id, err := r.who(attendee)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]directory.Event, 0)
	for _, e := range r.Events {
		if id != "" && !slices.Contains(e.Attendees, id) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *MemoryRepo) CreatedEvents(_ context.Context) ([]directory.Event, error) {
	id, err := r.who(Me)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]directory.Event, 0)
	for _, e := range r.Events {
		if e.CreatedBy == id {
			out = append(out, e)
		}
	}
	return out, nil
}
