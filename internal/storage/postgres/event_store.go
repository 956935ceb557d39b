package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
// The full event is kept as JSONB next to its indexed columns.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *EventStore) Insert(ctx context.Context, e *domain.Event) error {
	if e == nil || e.ID == "" {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	query := `
		INSERT INTO launch_events (
			event_id, kind, priority, mint, signature, slot, timestamp, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.pool.Exec(ctx, query,
		e.ID,
		string(e.Kind),
		string(e.Priority),
		e.Mint,
		e.Signature,
		e.Slot,
		e.Timestamp,
		payload,
	)
	return mapError("insert launch event", err)
}

// GetByID retrieves an event by its ID.
func (s *EventStore) GetByID(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `SELECT payload FROM launch_events WHERE event_id = $1`

	var payload []byte
	if err := s.pool.QueryRow(ctx, query, eventID).Scan(&payload); err != nil {
		return nil, mapError("get launch event", err)
	}
	return decodeEvent(payload)
}

// GetByMint retrieves all events for a mint, ordered by timestamp ASC.
func (s *EventStore) GetByMint(ctx context.Context, mint string) ([]*domain.Event, error) {
	query := `
		SELECT payload
		FROM launch_events
		WHERE mint = $1
		ORDER BY timestamp ASC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("get launch events by mint: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByTimeRange retrieves events within [start, end], ordered by timestamp ASC.
func (s *EventStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Event, error) {
	query := `
		SELECT payload
		FROM launch_events
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp ASC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get launch events by time range: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// scanEvents scans payload rows into events.
func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan launch event row: %w", err)
		}
		e, err := decodeEvent(payload)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launch event rows: %w", err)
	}

	return events, nil
}

func decodeEvent(payload []byte) (*domain.Event, error) {
	var e domain.Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("unmarshal launch event: %w", err)
	}
	return &e, nil
}
