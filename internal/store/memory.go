package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory search log, used for development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	// events in insertion order
	events []weather.SearchEvent
	nextID int64
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Append stores a copy of event with a fresh id and timestamp.
func (s *MemoryStore) Append(_ context.Context, event weather.SearchEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	event.ID = s.nextID
	event.Timestamp = s.now().UTC()
	s.events = append(s.events, event)
	return event.ID, nil
}

// ListByIP returns the events for ip, newest first.
func (s *MemoryStore) ListByIP(_ context.Context, ip string) ([]weather.SearchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []weather.SearchEvent{}
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].IP == ip {
			result = append(result, s.events[i])
		}
	}
	return result, nil
}

// Purge drops events older than before.
func (s *MemoryStore) Purge(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var removed int64
	for _, e := range s.events {
		if e.Timestamp.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
