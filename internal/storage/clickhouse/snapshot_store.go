package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

const snapshotColumns = `
	snapshot_id, mint, source, progress,
	virtual_quote_reserves, virtual_base_reserves,
	real_quote_reserves, real_base_reserves,
	near_completion, completed, active, timestamp
`

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate snapshot_id.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.CurveSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	ids := make([]string, 0, len(snapshots))
	seen := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.SnapshotID == "" || snap.Mint == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[snap.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[snap.SnapshotID] = struct{}{}
		ids = append(ids, snap.SnapshotID)
	}

	// MergeTree does not enforce uniqueness; check existing rows first.
	existing, err := s.countExisting(ctx, ids)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if existing > 0 {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO curve_snapshots ("+snapshotColumns+")")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.SnapshotID, snap.Mint, string(snap.Source), snap.Progress,
			snap.VirtualQuoteReserves, snap.VirtualBaseReserves,
			snap.RealQuoteReserves, snap.RealBaseReserves,
			boolToUInt8(snap.NearCompletion), boolToUInt8(snap.Completed), boolToUInt8(snap.Active),
			snap.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMint retrieves all snapshots for a mint, ordered by timestamp ASC.
func (s *SnapshotStore) GetByMint(ctx context.Context, mint string) ([]*domain.CurveSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM curve_snapshots FINAL
		WHERE mint = ?
		ORDER BY timestamp ASC, snapshot_id ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query by mint: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByTimeRange retrieves snapshots for a mint within [start, end] (inclusive).
func (s *SnapshotStore) GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.CurveSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM curve_snapshots FINAL
		WHERE mint = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, snapshot_id ASC
	`

	rows, err := s.conn.Query(ctx, query, mint, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func (s *SnapshotStore) countExisting(ctx context.Context, ids []string) (uint64, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM curve_snapshots WHERE has(?, snapshot_id)`, ids)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// scanSnapshots scans rows into curve snapshots.
func scanSnapshots(rows driver.Rows) ([]*domain.CurveSnapshot, error) {
	var snapshots []*domain.CurveSnapshot

	for rows.Next() {
		var (
			snap                              domain.CurveSnapshot
			source                            string
			nearCompletion, completed, active uint8
		)
		err := rows.Scan(
			&snap.SnapshotID, &snap.Mint, &source, &snap.Progress,
			&snap.VirtualQuoteReserves, &snap.VirtualBaseReserves,
			&snap.RealQuoteReserves, &snap.RealBaseReserves,
			&nearCompletion, &completed, &active,
			&snap.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Source = domain.Source(source)
		snap.NearCompletion = nearCompletion == 1
		snap.Completed = completed == 1
		snap.Active = active == 1
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
