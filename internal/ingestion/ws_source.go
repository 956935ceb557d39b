package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/solana"
)

const unsubscribeTimeout = 5 * time.Second

// WSLogSource subscribes to program logs over a Solana WebSocket connection,
// one subscription per program.
type WSLogSource struct {
	ws         solana.WSClient
	programs   []string
	commitment string
	bufferSize int
	logger     *zap.Logger
}

// NewWSLogSource creates a log source for programs.
func NewWSLogSource(ws solana.WSClient, programs []string, logger *zap.Logger) *WSLogSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSLogSource{
		ws:         ws,
		programs:   programs,
		commitment: solana.CommitmentConfirmed,
		bufferSize: 1000,
		logger:     logger.Named("ws-source"),
	}
}

// Subscribe implements LogSource.
func (s *WSLogSource) Subscribe(ctx context.Context) (<-chan domain.RawNotification, error) {
	// One subscription per program; providers reject multiple mentions.
	var subs []subscription
	for _, program := range s.programs {
		ch, err := s.ws.SubscribeLogs(ctx, solana.MentionsFilter(program, s.commitment))
		if err != nil {
			s.unsubscribe(subs)
			return nil, fmt.Errorf("subscribe %s: %w", program, err)
		}
		subs = append(subs, subscription{program: program, ch: ch})
		s.logger.Info("subscribed to program logs", zap.String("program", program))
	}

	out := make(chan domain.RawNotification, s.bufferSize)

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(program string, logsCh <-chan solana.LogNotification) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case notif, ok := <-logsCh:
					if !ok {
						s.logger.Warn("log subscription closed", zap.String("program", program))
						return
					}
					select {
					case out <- toRaw(program, notif):
					case <-ctx.Done():
						return
					}
				}
			}
		}(sub.program, sub.ch)
	}

	go func() {
		wg.Wait()
		s.unsubscribe(subs)
		close(out)
	}()

	return out, nil
}

type subscription struct {
	program string
	ch      <-chan solana.LogNotification
}

// unsubscribe tears down subs with a fresh context; the caller's may be done.
func (s *WSLogSource) unsubscribe(subs []subscription) {
	ctx, cancel := context.WithTimeout(context.Background(), unsubscribeTimeout)
	defer cancel()
	for _, sub := range subs {
		if err := s.ws.UnsubscribeLogs(ctx, sub.ch); err != nil {
			s.logger.Debug("unsubscribe failed", zap.String("program", sub.program), zap.Error(err))
		}
	}
}

func toRaw(program string, n solana.LogNotification) domain.RawNotification {
	return domain.RawNotification{
		Signature: n.Signature,
		Slot:      n.Slot,
		Logs:      n.Logs,
		Failed:    n.Failed(),
		Program:   program,
		Received:  time.Now().UnixMilli(),
	}
}
