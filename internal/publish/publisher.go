// Package publish fans emitted events out to external subscribers.
package publish

import (
	"context"

	"solana-launch-monitor/internal/domain"
)

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e *domain.Event) error
	Close() error
}
