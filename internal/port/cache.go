package port

import (
	"context"
	"time"
)

// Cache is the shared query cache. Entries are replaced wholesale,
// never merged; invalidation is by entity prefix.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
