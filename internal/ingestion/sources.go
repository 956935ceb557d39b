package ingestion

import (
	"context"

	"solana-launch-monitor/internal/domain"
)

// LogSource delivers raw log notifications from the launch programs.
type LogSource interface {
	// Subscribe starts delivery. Notifications of one program arrive in
	// order; programs are merged without a cross-program order. The channel
	// is closed after ctx is done and the subscriptions are torn down.
	Subscribe(ctx context.Context) (<-chan domain.RawNotification, error)
}
