package dedup

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard_MarkFirstSeen(t *testing.T) {
	g := NewGuard()

	assert.True(t, g.MarkFirstSeen("M1"))
	assert.False(t, g.MarkFirstSeen("M1"))
	assert.True(t, g.MarkFirstSeen("M2"))
	assert.True(t, g.SeenMint("M1"))
	assert.False(t, g.SeenMint("M3"))
}

func TestGuard_MarkProcessed(t *testing.T) {
	g := NewGuard()

	processed := 0
	for i := 0; i < 3; i++ {
		if g.MarkProcessed("sig1") {
			processed++
		}
	}
	assert.Equal(t, 1, processed)

	// Signatures and mints are independent sets.
	assert.True(t, g.MarkFirstSeen("sig1"))

	sigs, mints := g.Len()
	assert.Equal(t, 1, sigs)
	assert.Equal(t, 1, mints)
}

func TestGuard_Clear(t *testing.T) {
	g := NewGuard()
	g.MarkProcessed("sig")
	g.MarkFirstSeen("mint")

	g.Clear()

	assert.True(t, g.MarkProcessed("sig"))
	assert.True(t, g.MarkFirstSeen("mint"))
}

func TestGuard_Concurrent(t *testing.T) {
	g := NewGuard()

	var (
		wg  sync.WaitGroup
		won atomic.Int32
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if g.MarkFirstSeen(fmt.Sprintf("mint-%d", j)) {
					won.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), won.Load())
}
