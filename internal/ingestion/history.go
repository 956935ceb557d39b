package ingestion

import "sync"

// Default retained history sizes.
const (
	DefaultLaunchHistory     = 200
	DefaultCompletionHistory = 100
	DefaultEnrichmentHistory = 50
)

// history keeps the most recent entries up to a limit, newest first.
type history[T any] struct {
	mu    sync.RWMutex
	limit int
	items []T
}

func newHistory[T any](limit int) *history[T] {
	return &history[T]{limit: limit}
}

func (h *history[T]) add(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, v)
	if over := len(h.items) - h.limit; over > 0 {
		h.items = append(h.items[:0:0], h.items[over:]...)
	}
}

// list returns a copy, newest first.
func (h *history[T]) list() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]T, len(h.items))
	for i, v := range h.items {
		out[len(h.items)-1-i] = v
	}
	return out
}

func (h *history[T]) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}
