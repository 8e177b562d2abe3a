// Package cart implements the per-session cart ledger: a keyed mapping of
// orderable configurations with merge-on-add semantics.
package cart

import (
	"sync"

	"uniform_shop/internal/model"
)

// Key identifies one orderable configuration. A comparable struct rather
// than a hash of the identity fields, so distinct configurations can never
// collide.
type Key struct {
	Category  model.Category `json:"category"`
	ProductID uint           `json:"product_id"`
	Size      string         `json:"size"`
}

// Line is one merged cart entry. School, color, quality and image are
// carried for display only; the placement engine re-reads authoritative
// values from the stock row.
type Line struct {
	Key        Key    `json:"key"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"` // minor units
	Quantity   int    `json:"quantity"`
	SchoolID   uint   `json:"school_id,omitempty"`
	SchoolName string `json:"school_name,omitempty"`
	Color      string `json:"color,omitempty"`
	Quality    string `json:"quality,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Subtotal is unit price x quantity for this line.
func (l Line) Subtotal() int64 { return l.UnitPrice * int64(l.Quantity) }

// Cart holds the lines of one session in insertion order. The mutex makes
// each merge a single read-increment-write even when a session issues
// concurrent requests against the same key.
type Cart struct {
	mu    sync.Mutex
	lines map[Key]*Line
	order []Key
}

func New() *Cart {
	return &Cart{lines: make(map[Key]*Line)}
}

// AddOrMerge inserts the line on first add; on re-add it accumulates the
// incoming quantity onto the existing line. Returns the merged quantity.
func (c *Cart) AddOrMerge(l Line) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.lines[l.Key]; ok {
		existing.Quantity += l.Quantity
		return existing.Quantity
	}
	ln := l
	c.lines[l.Key] = &ln
	c.order = append(c.order, l.Key)
	return ln.Quantity
}

// AdjustQuantity changes a line's quantity by delta (single-unit steps from
// the UI, but any delta works). The quantity floors at 1: a decrease below
// that is a no-op, not an error. Removal is the explicit path to zero.
// Returns the resulting quantity and whether the key was present.
func (c *Cart) AdjustQuantity(k Key, delta int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lines[k]
	if !ok {
		return 0, false
	}
	if next := l.Quantity + delta; next >= 1 {
		l.Quantity = next
	}
	return l.Quantity, true
}

// Remove deletes the line unconditionally; an absent key is a no-op.
func (c *Cart) Remove(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lines[k]; !ok {
		return
	}
	delete(c.lines, k)
	for i, key := range c.order {
		if key == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// QuantityOf reports the quantity already held for a key; zero when absent.
// Feeds the validator's additive-exposure check.
func (c *Cart) QuantityOf(k Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.lines[k]; ok {
		return l.Quantity
	}
	return 0
}

// Lines returns a snapshot in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, *c.lines[k])
	}
	return out
}

// Total sums unit price x quantity over all lines.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Len reports the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}
