package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the pair in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	pair Pair
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Save(_ context.Context, p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (Pair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pair.complete() {
		return Pair{}, false, nil
	}
	return s.pair, true, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	return nil
}
