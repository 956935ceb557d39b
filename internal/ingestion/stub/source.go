// Package stub provides in-memory log sources for tests.
package stub

import (
	"context"
	"errors"
	"sync"

	"solana-launch-monitor/internal/domain"
)

// ErrAlreadySubscribed is returned by a second Subscribe call.
var ErrAlreadySubscribed = errors.New("already subscribed")

// LogSource is a LogSource fed by Push. Notifications pushed before
// Subscribe are delivered first.
type LogSource struct {
	mu           sync.Mutex
	ch           chan domain.RawNotification
	subscribed   bool
	closed       bool
	SubscribeErr error
}

// NewLogSource creates a source buffering up to size notifications.
func NewLogSource(size int) *LogSource {
	if size <= 0 {
		size = 100
	}
	return &LogSource{ch: make(chan domain.RawNotification, size)}
}

// Push queues n for delivery. It blocks when the buffer is full.
func (s *LogSource) Push(n domain.RawNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- n
}

// Close ends the feed as if the connection dropped.
func (s *LogSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Subscribe implements ingestion.LogSource.
func (s *LogSource) Subscribe(ctx context.Context) (<-chan domain.RawNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SubscribeErr != nil {
		return nil, s.SubscribeErr
	}
	if s.subscribed {
		return nil, ErrAlreadySubscribed
	}
	s.subscribed = true

	out := make(chan domain.RawNotification)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-s.ch:
				if !ok {
					return
				}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
