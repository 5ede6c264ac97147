package cache

import "time"

const (
	// Cart cache: cart:{user_id} -> JSON cart
	keyCart = "cart:%s"

	// Checkout idempotency fast path: idem:checkout:{key} -> order_id.
	// The unique order index is the truth; this only short-circuits retries.
	keyCheckoutIdem = "idem:checkout:%s"
)

var (
	ttlIdempotency = 24 * time.Hour
)
