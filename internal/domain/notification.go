package domain

// RawNotification is a single logs notification as delivered by the feed.
type RawNotification struct {
	Signature string   // transaction signature
	Slot      int64    // Solana slot number
	Logs      []string // program log lines in execution order
	Failed    bool     // transaction returned an error
	Program   string   // program id of the subscription that delivered it
	Received  int64    // local receive time (ms)
}
