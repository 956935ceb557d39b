package memory

import (
	"context"
	"errors"
	"testing"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/storage"
)

func TestSnapshotStore_InsertBulk(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.CurveSnapshot{
		{SnapshotID: "s2", Mint: "m1", Progress: 20, Timestamp: 2000},
		{SnapshotID: "s1", Mint: "m1", Progress: 10, Timestamp: 1000},
		{SnapshotID: "s3", Mint: "m2", Progress: 5, Timestamp: 1500},
	}
	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByMint(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(got) != 2 || got[0].SnapshotID != "s1" || got[1].Progress != 20 {
		t.Errorf("unexpected snapshots: %+v", got)
	}

	ranged, _ := store.GetByTimeRange(ctx, "m1", 1500, 2500)
	if len(ranged) != 1 || ranged[0].SnapshotID != "s2" {
		t.Errorf("unexpected ranged snapshots: %+v", ranged)
	}
}

func TestSnapshotStore_InsertBulkDuplicate(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.CurveSnapshot{{SnapshotID: "s1", Mint: "m"}}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	// Batch with an existing key is rejected entirely.
	err := store.InsertBulk(ctx, []*domain.CurveSnapshot{
		{SnapshotID: "s2", Mint: "m"},
		{SnapshotID: "s1", Mint: "m"},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Intra-batch duplicate is rejected too.
	err = store.InsertBulk(ctx, []*domain.CurveSnapshot{
		{SnapshotID: "s3", Mint: "m"},
		{SnapshotID: "s3", Mint: "m"},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	got, _ := store.GetByMint(ctx, "m")
	if len(got) != 1 {
		t.Errorf("Expected 1 snapshot after rejected batches, got %d", len(got))
	}
}

func TestSnapshotStore_InvalidInput(t *testing.T) {
	store := NewSnapshotStore()
	err := store.InsertBulk(context.Background(), []*domain.CurveSnapshot{{Mint: "m"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
