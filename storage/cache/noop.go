package cache

import (
	"context"
	"time"

	"github.com/trezcool/marksengine/core"
)

// Noop never stores anything: every Get is a miss.
type Noop struct{}

var _ core.Cache = Noop{} // interface compliance check

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (Noop) Delete(context.Context, ...string) error { return nil }

// New returns the redis cache when enabled in `conf`, else a Noop cache.
func New(ctx context.Context, conf core.RedisConfig) (core.Cache, func() error, error) {
	if !conf.Enabled {
		return Noop{}, func() error { return nil }, nil
	}
	return NewRedis(ctx, conf)
}
