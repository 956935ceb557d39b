// Package dedup provides the session identity guard: test-and-set sets for
// transaction signatures and token mints.
package dedup

import "sync"

// Guard records processed signatures and first-seen mints for one session.
// Entries are only removed by Clear.
type Guard struct {
	mu         sync.Mutex
	signatures map[string]struct{}
	mints      map[string]struct{}
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{
		signatures: make(map[string]struct{}),
		mints:      make(map[string]struct{}),
	}
}

// MarkProcessed returns true the first time sig is seen.
func (g *Guard) MarkProcessed(sig string) bool {
	return g.testAndSet(g.signatures, sig)
}

// MarkFirstSeen returns true the first time mint is seen.
func (g *Guard) MarkFirstSeen(mint string) bool {
	return g.testAndSet(g.mints, mint)
}

// SeenMint reports whether mint was marked, without marking it.
func (g *Guard) SeenMint(mint string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.mints[mint]
	return ok
}

// Len returns the number of recorded signatures and mints.
func (g *Guard) Len() (signatures, mints int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.signatures), len(g.mints)
}

// Clear forgets every recorded identity.
func (g *Guard) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signatures = make(map[string]struct{})
	g.mints = make(map[string]struct{})
}

func (g *Guard) testAndSet(set map[string]struct{}, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := set[key]; ok {
		return false
	}
	set[key] = struct{}{}
	return true
}
