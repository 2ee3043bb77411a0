package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound is returned by KV.Get when nothing is stored under the key
var ErrKeyNotFound = errors.New("key not found")

// KV is the asynchronous string key-value medium a LocalStore persists to
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// RedisKV stores keys in Redis under a fixed prefix, one prefix per device
type RedisKV struct {
	client redis.Cmdable
	prefix string
}

// NewRedisKV creates a KV over client with every key prefixed by prefix
func NewRedisKV(client redis.Cmdable, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

// DeviceKV returns the KV namespace of a single device
func DeviceKV(client redis.Cmdable, deviceID string) *RedisKV {
	return NewRedisKV(client, fmt.Sprintf("device:%s:", deviceID))
}

// Get returns the value stored under key
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key without expiration
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
