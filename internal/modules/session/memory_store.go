package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory without expiry.
type MemoryStore struct {
	mu    sync.RWMutex
	trips map[string]Trip
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trips: make(map[string]Trip)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (Trip, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[sessionID]
	return t, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, trip Trip) error {
	if trip.UpdatedAt.IsZero() {
		trip.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[sessionID] = trip
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trips, sessionID)
	return nil
}
