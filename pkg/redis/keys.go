package redis

import (
	"fmt"

	"uniform_shop/internal/model"
)

// StockKey names the display-cache entry for one stock row.
func StockKey(category model.Category, productID uint, size string) string {
	return fmt.Sprintf("uniform_shop:stock:%s:%d:%s", category, productID, size)
}

// CheckoutIdemKey maps a client idempotency key to its stored confirmation.
func CheckoutIdemKey(userID int64, idemKey string) string {
	return fmt.Sprintf("uniform_shop:checkout:idem:%d:%s", userID, idemKey)
}
