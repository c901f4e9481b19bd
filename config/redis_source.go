package config

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// HashGetter is the part of redis.Cmdable LoadRedis needs.
type HashGetter interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// LoadRedis snapshots a Redis hash of ENV-style keys into a MapSource, so a
// fleet of bots can share one grid definition. Transient errors are retried
// with b; a nil b uses an exponential backoff capped at 10s.
func LoadRedis(ctx context.Context, rdb HashGetter, key string, b backoff.BackOff) (MapSource, error) {
	if b == nil {
		exp := backoff.NewExponentialBackOff()
		exp.MaxElapsedTime = 10 * time.Second
		b = exp
	}

	var values map[string]string
	operation := func() error {
		res, err := rdb.HGetAll(ctx, key).Result()
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return fmt.Errorf("hgetall %s: %w", key, err)
		}
		if len(res) == 0 {
			return backoff.Permanent(fmt.Errorf("redis hash %s is empty", key))
		}
		values = res
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("load redis config: %w", err)
	}
	return MapSource(values), nil
}
