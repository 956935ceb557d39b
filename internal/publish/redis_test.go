package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"solana-launch-monitor/internal/domain"
)

// setupRedis starts a Redis container and returns its URL.
func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestRedisPublisher_PublishAndSubscribe(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	pub, err := NewRedisPublisher(ctx, url, "test:events")
	require.NoError(t, err)
	defer pub.Close()

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	sub := redis.NewClient(opts).Subscribe(ctx, pub.Channel())
	defer sub.Close()
	_, err = sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	event := &domain.Event{
		ID:        "evt1",
		Kind:      domain.EventLaunch,
		Priority:  domain.PriorityNormal,
		Mint:      "mint1",
		Timestamp: 1000,
		Launch:    &domain.Launch{Mint: "mint1", Name: "Foo", Symbol: "FOO"},
	}
	require.NoError(t, pub.Publish(ctx, event))

	select {
	case msg := <-sub.Channel():
		var got domain.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "evt1", got.ID)
		require.NotNil(t, got.Launch)
		assert.Equal(t, "Foo", got.Launch.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for published event")
	}
}

func TestRedisPublisher_BufferCapped(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	pub, err := NewRedisPublisher(ctx, url, "")
	require.NoError(t, err)
	defer pub.Close()
	pub.bufferLimit = 3

	for i := 0; i < 5; i++ {
		require.NoError(t, pub.Publish(ctx, &domain.Event{
			ID:        fmt.Sprintf("evt%d", i),
			Kind:      domain.EventTrade,
			Timestamp: int64(1000 + i),
		}))
	}

	recent, err := pub.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "evt4", recent[0].ID)
	assert.Equal(t, "evt2", recent[2].ID)
}

func TestNewRedisPublisher_InvalidURL(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), "://nope", "c")
	assert.Error(t, err)
}
