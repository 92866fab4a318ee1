// Package infra_redis_blob stores opaque byte values with a TTL under a key
// prefix. The candidate cache and the session store are two prefixes over it.
package infra_redis_blob

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis"
)

type Driver struct {
	client *redis.Client
	prefix string
}

func New(
	client *redis.Client,
	prefix string,
) *Driver {
	return &Driver{
		client: client,
		prefix: prefix,
	}
}

// Get reports false on a miss, including expired entries.
func (d *Driver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := d.client.WithContext(ctx).Get(d.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (d *Driver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return d.client.WithContext(ctx).Set(d.fullKey(key), value, ttl).Err()
}

func (d *Driver) Delete(ctx context.Context, key string) error {
	return d.client.WithContext(ctx).Del(d.fullKey(key)).Err()
}

func (d *Driver) fullKey(key string) string {
	if d.prefix != "" {
		return d.prefix + ":" + key
	}
	return key
}
