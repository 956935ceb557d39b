package solana

import "context"

// RPCClient defines the Solana RPC HTTP calls used by the monitor.
type RPCClient interface {
	// GetTransaction retrieves a transaction by signature.
	// Returns nil, nil if the node does not know the transaction yet.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)
}
