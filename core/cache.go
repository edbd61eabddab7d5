package core

import (
	"context"
	"time"
)

// Cache stores derived values that can always be recomputed.
type Cache interface {
	// Get decodes the value stored at key into dst. found is false on a cache miss.
	Get(ctx context.Context, key string, dst interface{}) (found bool, err error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Metrics records engine computations.
type Metrics interface {
	ObserveEvaluation(subjectType, status string)
}

// DeleteFromCache deletes keys from cache. Failures are only logged: cached values are
// always recomputable.
func DeleteFromCache(ctx context.Context, cache Cache, logger Logger, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, keys...); err != nil && logger != nil {
		logger.Warn("could not invalidate cache", err, map[string]interface{}{"keys": keys})
	}
}
