package enrichment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-launch-monitor/internal/decoder"
	"solana-launch-monitor/internal/decoder/decodertest"
	"solana-launch-monitor/internal/solana"
	"solana-launch-monitor/internal/solana/stub"
)

func fastOptions() Options {
	return Options{
		Spacing:     time.Millisecond,
		BackoffBase: 5 * time.Millisecond,
		BackoffMax:  20 * time.Millisecond,
	}
}

func addBuy(rpc *stub.RPCClient, sig string, n byte) string {
	mint := decodertest.Key(n)
	rpc.AddTransaction(buyTx(sig, mustPool(mint, decoder.WSOLMint), mint, decoder.WSOLMint, decoder.BuyExactInDiscriminator))
	return mint
}

func waitResult(t *testing.T, q *Queue) Result {
	t.Helper()
	select {
	case res, ok := <-q.Results():
		require.True(t, ok, "results closed")
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for enrichment result")
	}
	return Result{}
}

func TestQueue_Bounding(t *testing.T) {
	q := NewQueue(stub.NewRPCClient(), Options{})

	for i := 0; i < 60; i++ {
		require.True(t, q.Enqueue(fmt.Sprintf("sig-%d", i)))
	}

	pending := q.PendingSignatures()
	assert.LessOrEqual(t, len(pending), DefaultCapacity)
	assert.Len(t, pending, 40)
	assert.Equal(t, "sig-20", pending[0], "oldest tasks are evicted first")
	assert.Equal(t, "sig-59", pending[len(pending)-1], "newest arrival is retained")

	// Evicted signatures may be admitted again.
	assert.True(t, q.Enqueue("sig-0"))
}

func TestQueue_Dedupe(t *testing.T) {
	q := NewQueue(stub.NewRPCClient(), Options{})

	assert.True(t, q.Enqueue("sig"))
	assert.False(t, q.Enqueue("sig"))
	assert.Equal(t, 1, q.Pending())
}

func TestQueue_DedupeInFlight(t *testing.T) {
	rpc := stub.NewRPCClient()
	addBuy(rpc, "sig", 30)
	blocking := &blockingRPC{RPCClient: rpc, entered: make(chan string, 1), release: make(chan struct{})}

	q := NewQueue(blocking, fastOptions())
	q.Start(context.Background())
	defer q.Stop()

	require.True(t, q.Enqueue("sig"))
	select {
	case <-blocking.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not start")
	}

	assert.Equal(t, 0, q.Pending())
	assert.False(t, q.Enqueue("sig"), "in-flight signature is not admitted twice")

	close(blocking.release)
	waitResult(t, q)

	// Once processed the signature is forgotten.
	require.Eventually(t, func() bool { return q.Enqueue("sig") }, time.Second, 5*time.Millisecond)
}

func TestQueue_Resolves(t *testing.T) {
	rpc := stub.NewRPCClient()
	mint := addBuy(rpc, "sig1", 31)

	q := NewQueue(rpc, fastOptions())
	q.Enqueue("sig1") // before Start
	q.Start(context.Background())
	defer q.Stop()

	res := waitResult(t, q)
	assert.Equal(t, mint, res.Buy.Mint)
	assert.Equal(t, "sig1", res.Buy.Signature)
	assert.True(t, res.Buy.PoolVerified)
	assert.Equal(t, int64(42), res.Slot)
	assert.Equal(t, int64(1), q.Completed())
	assert.Zero(t, q.Failures())
}

func TestQueue_RetriesRateLimit(t *testing.T) {
	rpc := stub.NewRPCClient()
	addBuy(rpc, "sig", 32)
	rpc.FailWith("sig", solana.ErrRateLimited, solana.ErrRateLimited, solana.ErrRateLimited)

	q := NewQueue(rpc, fastOptions())
	q.Start(context.Background())
	defer q.Stop()
	q.Enqueue("sig")

	waitResult(t, q)
	assert.Equal(t, 4, rpc.CallCount("sig"))
	assert.Zero(t, q.Failures())
}

func TestQueue_AbandonsAfterMaxRetries(t *testing.T) {
	rpc := stub.NewRPCClient()
	addBuy(rpc, "sig", 33)
	rateLimited := fmt.Errorf("getTransaction: %w", solana.ErrRateLimited)
	rpc.FailWith("sig", rateLimited, rateLimited, rateLimited, rateLimited)

	q := NewQueue(rpc, fastOptions())
	q.Start(context.Background())
	defer q.Stop()
	q.Enqueue("sig")

	require.Eventually(t, func() bool { return q.Failures() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 4, rpc.CallCount("sig"), "one attempt plus three retries")
	assert.Zero(t, q.Completed())
}

func TestQueue_OtherErrorsFailImmediately(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.FailWith("boom", errors.New("connection reset"))

	q := NewQueue(rpc, fastOptions())
	q.Start(context.Background())
	defer q.Stop()

	q.Enqueue("boom")
	q.Enqueue("missing") // stub reports not found

	require.Eventually(t, func() bool { return q.Failures() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, rpc.CallCount("boom"))
	assert.Equal(t, 1, rpc.CallCount("missing"))
}

func TestQueue_FailedTransactionNotResolved(t *testing.T) {
	rpc := stub.NewRPCClient()
	addBuy(rpc, "sig", 34)
	rpc.Transactions["sig"].Meta.Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}

	q := NewQueue(rpc, fastOptions())
	q.Start(context.Background())
	defer q.Stop()
	q.Enqueue("sig")

	require.Eventually(t, func() bool { return q.Failures() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, q.Completed())
}

func TestQueue_Spacing(t *testing.T) {
	rpc := stub.NewRPCClient()
	for i := 0; i < 3; i++ {
		addBuy(rpc, fmt.Sprintf("sig-%d", i), byte(40+i))
	}
	timed := &timedRPC{RPCClient: rpc}

	opts := fastOptions()
	opts.Spacing = 40 * time.Millisecond
	q := NewQueue(timed, opts)
	for i := 0; i < 3; i++ {
		q.Enqueue(fmt.Sprintf("sig-%d", i))
	}
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 3; i++ {
		waitResult(t, q)
	}

	calls := timed.times()
	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i].Sub(calls[i-1]), 40*time.Millisecond)
	}
}

func TestQueue_Backoff(t *testing.T) {
	q := NewQueue(stub.NewRPCClient(), Options{})

	assert.Equal(t, 1*time.Second, q.backoff(0))
	assert.Equal(t, 2*time.Second, q.backoff(1))
	assert.Equal(t, 4*time.Second, q.backoff(2))
	assert.Equal(t, 5*time.Second, q.backoff(3))
	assert.Equal(t, 5*time.Second, q.backoff(60))
}

func TestQueue_Stop(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.FailWith("sig", solana.ErrRateLimited)

	opts := fastOptions()
	opts.BackoffBase = time.Hour
	opts.BackoffMax = time.Hour
	q := NewQueue(rpc, opts)
	q.Start(context.Background())
	q.Enqueue("sig")
	require.Eventually(t, func() bool { return rpc.CallCount("sig") == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		q.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not interrupt backoff")
	}

	_, ok := <-q.Results()
	assert.False(t, ok, "results closed after Stop")
	q.Stop()
}
