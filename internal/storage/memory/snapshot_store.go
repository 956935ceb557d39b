package memory

import (
	"context"
	"sort"
	"sync"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CurveSnapshot // keyed by snapshot ID
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string]*domain.CurveSnapshot),
	}
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *SnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.CurveSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(snapshots))

	// First pass: check for duplicates (existing + intra-batch)
	for _, snap := range snapshots {
		if snap == nil || snap.SnapshotID == "" || snap.Mint == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[snap.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[snap.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[snap.SnapshotID] = struct{}{}
	}

	// Second pass: insert all
	for _, snap := range snapshots {
		copy := *snap
		s.data[snap.SnapshotID] = &copy
	}

	return nil
}

// GetByMint retrieves all snapshots for a mint, ordered by timestamp ASC.
func (s *SnapshotStore) GetByMint(_ context.Context, mint string) ([]*domain.CurveSnapshot, error) {
	return s.filter(mint, 0, 1<<62), nil
}

// GetByTimeRange retrieves snapshots for a mint within [start, end] (inclusive).
func (s *SnapshotStore) GetByTimeRange(_ context.Context, mint string, start, end int64) ([]*domain.CurveSnapshot, error) {
	return s.filter(mint, start, end), nil
}

func (s *SnapshotStore) filter(mint string, start, end int64) []*domain.CurveSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CurveSnapshot
	for _, snap := range s.data {
		if snap.Mint == mint && snap.Timestamp >= start && snap.Timestamp <= end {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
