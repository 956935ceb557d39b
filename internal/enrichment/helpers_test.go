package enrichment

import (
	"context"
	"sync"
	"time"

	"github.com/mr-tron/base58"

	"solana-launch-monitor/internal/decoder"
	"solana-launch-monitor/internal/decoder/decodertest"
	"solana-launch-monitor/internal/solana"
)

// buyTx builds a transaction whose top-level instruction is a launchpad buy
// with buyer Key(1), filler accounts, pool, mint and quote at their positions.
func buyTx(sig, pool, mint, quote string, d decoder.Discriminator) *solana.Transaction {
	keys := []string{
		decodertest.Key(1),
		decodertest.Key(2), decodertest.Key(3), decodertest.Key(4),
		pool,
		decodertest.Key(5), decodertest.Key(6), decodertest.Key(7), decodertest.Key(8),
		mint,
		quote,
		decoder.LaunchpadProgram,
	}
	return &solana.Transaction{
		Slot:      42,
		Signature: sig,
		BlockTime: 1_700_000_000,
		Meta:      &solana.TransactionMeta{},
		Message: &solana.TransactionMessage{
			AccountKeys: keys,
			Instructions: []solana.CompiledInstruction{{
				ProgramIDIndex: 11,
				Accounts:       []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
				Data:           base58.Encode(decodertest.Instruction(d, 1_000_000, 0)),
			}},
		},
	}
}

func mustPool(mint, quote string) string {
	pool, err := PoolAddress(mint, quote)
	if err != nil {
		panic(err)
	}
	return pool
}

// timedRPC records when each fetch happened.
type timedRPC struct {
	solana.RPCClient
	mu    sync.Mutex
	calls []time.Time
}

func (r *timedRPC) GetTransaction(ctx context.Context, sig string) (*solana.Transaction, error) {
	r.mu.Lock()
	r.calls = append(r.calls, time.Now())
	r.mu.Unlock()
	return r.RPCClient.GetTransaction(ctx, sig)
}

func (r *timedRPC) times() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.calls...)
}

// blockingRPC holds every fetch until release is closed.
type blockingRPC struct {
	solana.RPCClient
	entered chan string
	release chan struct{}
}

func (r *blockingRPC) GetTransaction(ctx context.Context, sig string) (*solana.Transaction, error) {
	r.entered <- sig
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.RPCClient.GetTransaction(ctx, sig)
}
