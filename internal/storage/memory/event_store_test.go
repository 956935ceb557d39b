package memory

import (
	"context"
	"errors"
	"testing"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/storage"
)

func TestEventStore_InsertAndGet(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	event := &domain.Event{
		ID:        "evt1",
		Kind:      domain.EventLaunch,
		Priority:  domain.PriorityNormal,
		Mint:      "mint1",
		Signature: "sig1",
		Timestamp: 1704067200000,
		Launch:    &domain.Launch{Mint: "mint1", Name: "Foo", Symbol: "FOO"},
	}

	if err := store.Insert(ctx, event); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "evt1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Launch == nil || got.Launch.Name != "Foo" {
		t.Errorf("Launch payload mismatch: %+v", got.Launch)
	}

	_, err = store.GetByID(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEventStore_DuplicateKey(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	event := &domain.Event{ID: "evt1", Kind: domain.EventCompletion, Mint: "m"}
	if err := store.Insert(ctx, event); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, event)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestEventStore_InvalidInput(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	for _, e := range []*domain.Event{nil, {Kind: domain.EventLaunch}, {ID: "x"}} {
		if err := store.Insert(ctx, e); !errors.Is(err, storage.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for %+v, got %v", e, err)
		}
	}
}

func TestEventStore_GetByMintOrdered(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	events := []*domain.Event{
		{ID: "c", Kind: domain.EventCompletion, Mint: "m1", Timestamp: 3000},
		{ID: "a", Kind: domain.EventLaunch, Mint: "m1", Timestamp: 1000},
		{ID: "b", Kind: domain.EventLaunch, Mint: "m2", Timestamp: 2000},
	}
	for _, e := range events {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByMint(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Expected [a c], got %v", ids(got))
	}

	ranged, err := store.GetByTimeRange(ctx, 1500, 3000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(ranged) != 2 || ranged[0].ID != "b" || ranged[1].ID != "c" {
		t.Errorf("Expected [b c], got %v", ids(ranged))
	}
	if store.Len() != 3 {
		t.Errorf("Expected 3 events, got %d", store.Len())
	}
}

func TestEventStore_ReturnsCopies(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	event := &domain.Event{ID: "evt1", Kind: domain.EventLaunch, Mint: "m"}
	store.Insert(ctx, event)
	event.Mint = "mutated"

	got, _ := store.GetByID(ctx, "evt1")
	if got.Mint != "m" {
		t.Errorf("stored event was mutated: %s", got.Mint)
	}
}

func ids(events []*domain.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
