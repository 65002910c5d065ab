package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryDeliveryStore keeps delivery timestamps in a process-local map.
// Suitable for single-instance deployments.
type MemoryDeliveryStore struct {
	mu        sync.RWMutex
	delivered map[string]map[string]time.Time
}

func NewMemoryDeliveryStore() *MemoryDeliveryStore {
	return &MemoryDeliveryStore{
		delivered: make(map[string]map[string]time.Time),
	}
}

func (s *MemoryDeliveryStore) Replace(ctx context.Context, eventID string, deliveredAt map[string]time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered[eventID] = deliveredAt
	return nil
}

func (s *MemoryDeliveryStore) Get(ctx context.Context, eventID, sessionID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.delivered[eventID][sessionID]
	return t, ok, nil
}

func (s *MemoryDeliveryStore) Clear(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.delivered, eventID)
	return nil
}
