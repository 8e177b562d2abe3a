package cart

import (
	"sync"
	"testing"

	"uniform_shop/internal/model"

	"github.com/stretchr/testify/assert"
)

func shirtKey() Key {
	return Key{Category: model.CategoryShirts, ProductID: 1, Size: "M"}
}

func shirtLine(qty int) Line {
	return Line{
		Key:       shirtKey(),
		Name:      "White Shirt",
		UnitPrice: 1500,
		Quantity:  qty,
		Color:     "white",
	}
}

func TestAddOrMergeAccumulates(t *testing.T) {
	c := New()

	assert.Equal(t, 2, c.AddOrMerge(shirtLine(2)))
	assert.Equal(t, 5, c.AddOrMerge(shirtLine(3)))
	assert.Equal(t, 6, c.AddOrMerge(shirtLine(1)))

	// Merges collapse into a single line whose quantity is the sum.
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 6, c.QuantityOf(shirtKey()))
}

func TestAddOrMergeDistinctKeysStayApart(t *testing.T) {
	c := New()
	c.AddOrMerge(shirtLine(1))

	sizeL := shirtLine(1)
	sizeL.Key.Size = "L"
	c.AddOrMerge(sizeL)

	trousers := Line{
		Key:       Key{Category: model.CategoryTrousers, ProductID: 1, Size: "M"},
		Name:      "Grey Trousers",
		UnitPrice: 2200,
		Quantity:  2,
	}
	c.AddOrMerge(trousers)

	assert.Equal(t, 3, c.Len())

	// Insertion order is preserved for display.
	lines := c.Lines()
	assert.Equal(t, "M", lines[0].Key.Size)
	assert.Equal(t, "L", lines[1].Key.Size)
	assert.Equal(t, model.CategoryTrousers, lines[2].Key.Category)
}

func TestAdjustQuantityClampsAtOne(t *testing.T) {
	c := New()
	c.AddOrMerge(shirtLine(2))

	q, ok := c.AdjustQuantity(shirtKey(), -1)
	assert.True(t, ok)
	assert.Equal(t, 1, q)

	// Decreasing below 1 is a no-op, never zero or negative.
	q, ok = c.AdjustQuantity(shirtKey(), -1)
	assert.True(t, ok)
	assert.Equal(t, 1, q)

	q, ok = c.AdjustQuantity(shirtKey(), 1)
	assert.True(t, ok)
	assert.Equal(t, 2, q)
}

func TestAdjustQuantityAbsentKey(t *testing.T) {
	c := New()
	q, ok := c.AdjustQuantity(shirtKey(), 1)
	assert.False(t, ok)
	assert.Equal(t, 0, q)
	assert.Equal(t, 0, c.Len())
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	c := New()
	c.AddOrMerge(shirtLine(2))

	assert.NotPanics(t, func() {
		c.Remove(Key{Category: model.CategoryShoes, ProductID: 99, Size: "40"})
	})
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.QuantityOf(shirtKey()))
}

func TestRemoveDropsLineAndOrder(t *testing.T) {
	c := New()
	c.AddOrMerge(shirtLine(1))
	other := shirtLine(1)
	other.Key.Size = "L"
	c.AddOrMerge(other)

	c.Remove(shirtKey())

	lines := c.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, "L", lines[0].Key.Size)
	assert.Equal(t, 0, c.QuantityOf(shirtKey()))
}

func TestTotal(t *testing.T) {
	c := New()
	assert.Equal(t, int64(0), c.Total())

	c.AddOrMerge(shirtLine(3)) // 3 x 1500
	c.AddOrMerge(Line{
		Key:       Key{Category: model.CategoryShoes, ProductID: 4, Size: "38"},
		Name:      "Black Shoes",
		UnitPrice: 4000,
		Quantity:  1,
	})

	assert.Equal(t, int64(3*1500+4000), c.Total())
}

func TestConcurrentMergesOnSameKey(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.AddOrMerge(shirtLine(1))
		}()
	}
	wg.Wait()

	// Every increment must land; no interleaved read-increment-write lost.
	assert.Equal(t, 50, c.QuantityOf(shirtKey()))
	assert.Equal(t, 1, c.Len())
}
