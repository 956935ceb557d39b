package memory

import (
	"context"
	"sort"
	"sync"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Event // keyed by event ID
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string]*domain.Event),
	}
}

// Insert adds a new event. Returns ErrDuplicateKey if exists.
func (s *EventStore) Insert(_ context.Context, e *domain.Event) error {
	if e == nil || e.ID == "" || e.Kind == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	s.data[e.ID] = &copy
	return nil
}

// GetByID retrieves an event by ID. Returns ErrNotFound if not exists.
func (s *EventStore) GetByID(_ context.Context, eventID string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[eventID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copy := *e
	return &copy, nil
}

// GetByMint retrieves all events for a mint, ordered by timestamp ASC.
func (s *EventStore) GetByMint(_ context.Context, mint string) ([]*domain.Event, error) {
	return s.filter(func(e *domain.Event) bool { return e.Mint == mint }), nil
}

// GetByTimeRange retrieves events within [start, end] (inclusive).
func (s *EventStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.Event, error) {
	return s.filter(func(e *domain.Event) bool {
		return e.Timestamp >= start && e.Timestamp <= end
	}), nil
}

// Len returns the number of stored events.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *EventStore) filter(keep func(*domain.Event) bool) []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Event
	for _, e := range s.data {
		if keep(e) {
			copy := *e
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result
}

var _ storage.EventStore = (*EventStore)(nil)
