package cart

import (
	"context"
	"log"
	"sync"
	"time"
)

// Store owns the carts of all active sessions. A cart disappears with its
// session: either dropped explicitly or swept once idle past the TTL.
type Store struct {
	mu  sync.Mutex
	ttl time.Duration

	carts   map[string]*Cart
	touched map[string]time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		carts:   make(map[string]*Cart),
		touched: make(map[string]time.Time),
	}
}

// Get returns the session's cart, creating it on first use. Each access
// refreshes the idle clock.
func (s *Store) Get(sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		c = New()
		s.carts[sessionID] = c
	}
	s.touched[sessionID] = time.Now()
	return c
}

// Drop discards a session's cart; unknown sessions are a no-op.
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	delete(s.touched, sessionID)
}

// PurgeExpired removes carts idle longer than the TTL and reports how many
// were dropped. A TTL of zero disables expiry.
func (s *Store) PurgeExpired(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for sid, t := range s.touched {
		if now.Sub(t) > s.ttl {
			delete(s.carts, sid)
			delete(s.touched, sid)
			purged++
		}
	}
	return purged
}

// Janitor sweeps expired carts until the context is cancelled.
func (s *Store) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.PurgeExpired(time.Now()); n > 0 {
				log.Printf("cart janitor: purged %d idle cart(s)", n)
			}
		}
	}
}
