// Package cache provides the Redis implementation of the reference cache.
package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/preedep/MQUsageViewer/ports"
)

// Redis implements ports.Cache on a Redis server. Entries are written
// without TTL: once set, a key is served verbatim until something outside
// this process deletes or overwrites it.
type Redis struct {
	client *redis.Client
}

// New creates a Redis cache for the given address ("host:port").
func New(addr string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewWithClient wraps an existing client (used by tests with miniredis).
func NewWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get retrieves the value stored at key, or ports.ErrCacheMiss.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ports.ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores value at key with no TTL.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Ping verifies the server is reachable. An unreachable cache is
// reported but never fatal.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Ensure interface compliance.
var _ ports.Cache = (*Redis)(nil)
