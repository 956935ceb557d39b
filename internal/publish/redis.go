package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/observability"
)

// DefaultBufferLimit is the number of recent events kept per channel.
const DefaultBufferLimit = 1000

// RedisPublisher publishes events as JSON on a Redis channel and keeps the
// most recent ones in a capped sorted set for consumers that reconnect.
type RedisPublisher struct {
	client      *redis.Client
	channel     string
	bufferLimit int64
}

var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher connects to url and verifies the connection.
func NewRedisPublisher(ctx context.Context, url, channel string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if channel == "" {
		channel = "launch-monitor:events"
	}
	return &RedisPublisher{
		client:      client,
		channel:     channel,
		bufferLimit: DefaultBufferLimit,
	}, nil
}

// Channel returns the publish channel.
func (p *RedisPublisher) Channel() string {
	return p.channel
}

func (p *RedisPublisher) bufferKey() string {
	return "events:" + p.channel
}

// Publish buffers e and publishes it in a single pipeline.
func (p *RedisPublisher) Publish(ctx context.Context, e *domain.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := pipe.ZAdd(ctx, p.bufferKey(), redis.Z{
			Score:  float64(e.Timestamp),
			Member: data,
		}).Err(); err != nil {
			return err
		}
		// Keep the latest bufferLimit events
		if err := pipe.ZRemRangeByRank(ctx, p.bufferKey(), 0, -p.bufferLimit-1).Err(); err != nil {
			return err
		}
		return pipe.Publish(ctx, p.channel, data).Err()
	})
	observability.RecordPublish(p.channel, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to n buffered events, newest first.
func (p *RedisPublisher) Recent(ctx context.Context, n int64) ([]domain.Event, error) {
	members, err := p.client.ZRevRange(ctx, p.bufferKey(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read buffer: %w", err)
	}
	out := make([]domain.Event, 0, len(members))
	for _, m := range members {
		var e domain.Event
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			return nil, fmt.Errorf("unmarshal buffered event: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
