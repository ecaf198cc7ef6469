package cache

import (
	"context"
	"time"
)

// Store represents the shared cache reachable by every service process.
//
// All operations may fail when the backing store is unreachable. Callers must
// treat a failed Get as a miss and a failed Set/Delete as a best-effort no-op;
// cache health never decides the outcome of a read or write request.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	// Available reports whether the store is currently reachable. A false
	// return short-circuits cache work without a network round trip.
	Available() bool
}
