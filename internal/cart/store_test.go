package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreGetCreatesPerSession(t *testing.T) {
	s := NewStore(time.Hour)

	a := s.Get("session-a")
	b := s.Get("session-b")
	assert.NotSame(t, a, b)

	a.AddOrMerge(shirtLine(2))
	assert.Equal(t, 0, b.Len(), "carts must not leak across sessions")

	// Same session gets the same cart back.
	assert.Same(t, a, s.Get("session-a"))
}

func TestStoreDrop(t *testing.T) {
	s := NewStore(time.Hour)
	s.Get("session-a").AddOrMerge(shirtLine(1))

	s.Drop("session-a")
	assert.Equal(t, 0, s.Get("session-a").Len())

	assert.NotPanics(t, func() { s.Drop("never-seen") })
}

func TestStorePurgeExpired(t *testing.T) {
	s := NewStore(30 * time.Minute)
	s.Get("stale")
	s.Get("fresh")

	// Backdate the stale session past the TTL.
	s.mu.Lock()
	s.touched["stale"] = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	purged := s.PurgeExpired(time.Now())
	assert.Equal(t, 1, purged)

	s.mu.Lock()
	_, staleOK := s.carts["stale"]
	_, freshOK := s.carts["fresh"]
	s.mu.Unlock()
	assert.False(t, staleOK)
	assert.True(t, freshOK)
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	s := NewStore(0)
	s.Get("session-a")

	s.mu.Lock()
	s.touched["session-a"] = time.Now().Add(-24 * time.Hour)
	s.mu.Unlock()

	assert.Equal(t, 0, s.PurgeExpired(time.Now()))
}
