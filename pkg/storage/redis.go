package storage

import (
	"context"
	"errors"

	"github.com/angelmondragon/caraccessories-storefront/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
	StateKey(name string) string
	Ping(ctx context.Context) error
	Close() error
}

var _ redisStore = (*redis.Client)(nil)

// RedisBackend keeps documents in redis under namespaced state keys.
type RedisBackend struct {
	client redisStore
}

func NewRedisBackend(client *redis.Client) (*RedisBackend, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisBackend{client: client}, nil
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.client.StateKey(key))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *RedisBackend) Put(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.client.StateKey(key), value)
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.StateKey(key))
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
