package solana

import "context"

// Commitment levels accepted by logsSubscribe and getTransaction.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// WSClient is the logsSubscribe side of a Solana node connection.
type WSClient interface {
	// SubscribeLogs subscribes to program logs matching filter. The returned
	// channel survives reconnects.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)

	// UnsubscribeLogs cancels the subscription that owns ch.
	// No further notifications are delivered on ch after it returns.
	UnsubscribeLogs(ctx context.Context, ch <-chan LogNotification) error

	Close() error
}

// LogsFilter selects the transactions a subscription receives.
type LogsFilter struct {
	// Mentions holds the program IDs to match. Most providers accept one.
	Mentions []string
	// Commitment defaults to CommitmentConfirmed.
	Commitment string
}

// MentionsFilter returns a filter for logs of transactions that invoke program.
func MentionsFilter(program, commitment string) LogsFilter {
	return LogsFilter{Mentions: []string{program}, Commitment: commitment}
}

// LogNotification is one logsNotification value.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{} // transaction error, nil on success
}

// Failed reports whether the transaction returned an error.
func (n LogNotification) Failed() bool {
	return n.Err != nil
}
