package redis

import (
	"context"
	"errors"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// Checkout idempotency: the first placement under a client-supplied key
// claims it with SETNX and stores the confirmation payload; re-submissions
// get the stored payload back instead of placing a second order.

// ClaimCheckout records payload under the key if unclaimed. Returns true
// when this call made the claim.
func ClaimCheckout(ctx context.Context, rdb *rd.Client, userID int64, idemKey, payload string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, CheckoutIdemKey(userID, idemKey), payload, ttl).Result()
}

// CheckoutReplay fetches a previously stored confirmation. found=false
// means the key was never claimed.
func CheckoutReplay(ctx context.Context, rdb *rd.Client, userID int64, idemKey string) (string, bool, error) {
	val, err := rdb.Get(ctx, CheckoutIdemKey(userID, idemKey)).Result()
	if errors.Is(err, rd.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
