// Package cache provides a small key-value cache used for last-known-good
// fallback data when upstream billing calls fail.
package cache

import (
	"context"
	"time"
)

// Cache is a minimal string cache. A miss returns ("", nil).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
