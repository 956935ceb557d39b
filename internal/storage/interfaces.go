package storage

import (
	"context"

	"solana-launch-monitor/internal/domain"
)

// EventStore provides access to the launch_events archive.
type EventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.Event) error

	// GetByID retrieves an event by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, eventID string) (*domain.Event, error)

	// GetByMint retrieves all events for a mint, ordered by timestamp ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.Event, error)

	// GetByTimeRange retrieves events within [start, end] (inclusive, ms), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Event, error)
}

// SnapshotStore provides access to curve_snapshots time series.
type SnapshotStore interface {
	// InsertBulk adds multiple snapshots. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, snapshots []*domain.CurveSnapshot) error

	// GetByMint retrieves all snapshots for a mint, ordered by timestamp ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.CurveSnapshot, error)

	// GetByTimeRange retrieves snapshots for a mint within [start, end] (inclusive, ms).
	GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.CurveSnapshot, error)
}
