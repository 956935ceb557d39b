package idhash

import (
	"testing"

	"solana-launch-monitor/internal/domain"
)

func TestComputeEventID(t *testing.T) {
	tests := []struct {
		name      string
		kind      domain.EventKind
		signature string
		mint      string
		index     int
	}{
		{
			name:      "launch",
			kind:      domain.EventLaunch,
			signature: "TxSig789GHI",
			mint:      "TokenMint123ABC",
			index:     0,
		},
		{
			name:      "near completion without signature",
			kind:      domain.EventNearCompletion,
			signature: "",
			mint:      "TokenMint123ABC",
			index:     0,
		},
		{
			name:      "launchpad buy second payload",
			kind:      domain.EventLaunchpadBuy,
			signature: "DifferentTx222",
			mint:      "",
			index:     5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEventID(tt.kind, tt.signature, tt.mint, tt.index)

			if len(got) != 64 {
				t.Errorf("ComputeEventID() length = %d, want 64", len(got))
			}

			// Same inputs must produce the same hash
			if again := ComputeEventID(tt.kind, tt.signature, tt.mint, tt.index); got != again {
				t.Errorf("ComputeEventID() not deterministic: %s != %s", got, again)
			}
		})
	}
}

func TestComputeEventID_Uniqueness(t *testing.T) {
	base := ComputeEventID(domain.EventLaunch, "sig", "mint", 0)

	variants := map[string]string{
		"kind":      ComputeEventID(domain.EventCompletion, "sig", "mint", 0),
		"signature": ComputeEventID(domain.EventLaunch, "sig2", "mint", 0),
		"mint":      ComputeEventID(domain.EventLaunch, "sig", "mint2", 0),
		"index":     ComputeEventID(domain.EventLaunch, "sig", "mint", 1),
	}
	for field, id := range variants {
		if id == base {
			t.Errorf("changing %s did not change the event id", field)
		}
	}
}

func TestComputeSnapshotID(t *testing.T) {
	a := ComputeSnapshotID("mint", 1000)
	if len(a) != 64 {
		t.Fatalf("ComputeSnapshotID() length = %d, want 64", len(a))
	}
	if a == ComputeSnapshotID("mint", 1001) {
		t.Error("different timestamps produced the same snapshot id")
	}
}
