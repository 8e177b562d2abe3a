package model

import "fmt"

// Category names the inventory partition a product belongs to.
// Partitions used to be addressed by interpolated table-name strings; a
// closed enum keeps queries typed and rules out injection via the partition
// selector.
type Category string

const (
	CategoryShirts      Category = "shirts"
	CategoryTrousers    Category = "trousers"
	CategorySkirts      Category = "skirts"
	CategorySweaters    Category = "sweaters"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
)

var validCategories = map[Category]struct{}{
	CategoryShirts:      {},
	CategoryTrousers:    {},
	CategorySkirts:      {},
	CategorySweaters:    {},
	CategoryShoes:       {},
	CategoryAccessories: {},
}

// ParseCategory maps a wire value to a known partition.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown product category %q", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	_, ok := validCategories[c]
	return ok
}

func (c Category) String() string { return string(c) }
