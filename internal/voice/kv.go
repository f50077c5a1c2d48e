package voice

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the slice of an expiring key-value store the repository needs.
// Redis implements it in production; tests use an in-memory fake.
type KV interface {
	// SetEx stores value under key with the given TTL, replacing any
	// existing value and its remaining TTL.
	SetEx(ctx context.Context, key string, ttl time.Duration, value string) error
	// Get returns the value and whether the key exists. A missing key
	// is (_, false, nil), not an error.
	Get(ctx context.Context, key string) (string, bool, error)
	// Del removes the key, reporting whether it existed.
	Del(ctx context.Context, key string) (bool, error)
	// Exists reports whether the key is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// RedisKV implements KV on a go-redis client.
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV connects a KV to the given redis address. The connection
// is lazy — a dead server surfaces on first use, not here.
func NewRedisKV(addr, password string) *RedisKV {
	return &RedisKV{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// SetEx stores value with a TTL.
func (r *RedisKV) SetEx(ctx context.Context, key string, ttl time.Duration, value string) error {
	return r.rdb.SetEx(ctx, key, value, ttl).Err()
}

// Get fetches value, mapping redis.Nil onto "not found".
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Del removes the key.
func (r *RedisKV) Del(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Exists reports key presence.
func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the underlying connection pool.
func (r *RedisKV) Close() error {
	return r.rdb.Close()
}
