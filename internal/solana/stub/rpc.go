package stub

import (
	"context"
	"errors"
	"sync"

	"solana-launch-monitor/internal/solana"
)

// ErrNotFound is returned when a transaction is not found.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
// Errors queued per signature are returned, in order, before the transaction.
type RPCClient struct {
	mu           sync.Mutex
	Transactions map[string]*solana.Transaction
	Errors       map[string][]error
	Slot         int64
	SlotErr      error
	Calls        map[string]int
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions: make(map[string]*solana.Transaction),
		Errors:       make(map[string][]error),
		Calls:        make(map[string]int),
	}
}

// GetTransaction returns the next queued error for signature, then the stored transaction.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls[signature]++
	if errs := c.Errors[signature]; len(errs) > 0 {
		c.Errors[signature] = errs[1:]
		return nil, errs[0]
	}
	tx, ok := c.Transactions[signature]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

// GetSlot returns the configured slot or error.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Slot, c.SlotErr
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions[tx.Signature] = tx
}

// FailWith queues errors returned for signature before it resolves.
func (c *RPCClient) FailWith(signature string, errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors[signature] = append(c.Errors[signature], errs...)
}

// CallCount returns how many times signature was fetched.
func (c *RPCClient) CallCount(signature string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[signature]
}
