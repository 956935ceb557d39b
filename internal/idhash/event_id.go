package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"solana-launch-monitor/internal/domain"
)

// ComputeEventID computes a deterministic event_id using SHA256.
// Formula: SHA256(kind|signature|mint|index)
// Returns hex-encoded hash (64 characters).
func ComputeEventID(
	kind domain.EventKind,
	signature string,
	mint string,
	index int,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		string(kind),
		signature,
		mint,
		index,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeSnapshotID computes a deterministic snapshot_id for a curve state
// observed at ts (ms).
// Formula: SHA256(mint|ts)
func ComputeSnapshotID(mint string, ts int64) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", mint, ts)))
	return hex.EncodeToString(hash[:])
}
