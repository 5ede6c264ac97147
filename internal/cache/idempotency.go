package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// IdempotencyIndex is a best-effort fast path for checkout retries. The
// unique index on orders stays authoritative; callers must tolerate a stale
// or unavailable index.
type IdempotencyIndex struct {
	client *redis.Client
}

func NewIdempotencyIndex(client *redis.Client) *IdempotencyIndex {
	return &IdempotencyIndex{client: client}
}

// Lookup returns the order id previously remembered for key, if any.
func (i *IdempotencyIndex) Lookup(ctx context.Context, key string) (string, bool) {
	orderID, err := i.client.Get(ctx, idemKey(key)).Result()
	if err != nil || orderID == "" {
		return "", false
	}
	return orderID, true
}

// Remember records the order created for key. Errors are deliberately
// dropped: the store index catches what the fast path loses.
func (i *IdempotencyIndex) Remember(ctx context.Context, key, orderID string) {
	_ = i.client.Set(ctx, idemKey(key), orderID, ttlIdempotency).Err()
}

func idemKey(key string) string {
	return fmt.Sprintf(keyCheckoutIdem, key)
}
