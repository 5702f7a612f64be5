package store

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key does not exist or has expired.
var ErrKeyNotFound = errors.New("key not found")

// Store is the session store adapter: a keyed, TTL-capable value store
// shared by every instance of the service. Carts, session metadata and
// orders all live behind this interface.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key, field, value string) error
}
