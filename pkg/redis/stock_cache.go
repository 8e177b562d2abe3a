package redis

import (
	"context"
	"errors"
	"time"

	"uniform_shop/internal/model"

	rd "github.com/redis/go-redis/v9"
)

// Display cache for storefront stock lookups. Advisory only: availability
// decisions and the decrement always go against the database row.

// CacheStock stores a row's quantity-on-hand with a TTL.
func CacheStock(ctx context.Context, rdb *rd.Client, item *model.StockItem, ttl time.Duration) error {
	return rdb.Set(ctx, StockKey(item.Category, item.ID, item.Size), item.Quantity, ttl).Err()
}

// CachedStock reads a cached quantity. found=false means a cache miss.
func CachedStock(ctx context.Context, rdb *rd.Client, category model.Category, productID uint, size string) (int64, bool, error) {
	val, err := rdb.Get(ctx, StockKey(category, productID, size)).Int64()
	if errors.Is(err, rd.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// InvalidateStock drops the cached quantity after a placement decrements
// the row, so the next lookup refreshes from the database.
func InvalidateStock(ctx context.Context, rdb *rd.Client, category model.Category, productID uint, size string) error {
	return rdb.Del(ctx, StockKey(category, productID, size)).Err()
}
