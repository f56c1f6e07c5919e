package repositories

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBlobStore stores each blob as a plain string value without expiry
type RedisBlobStore struct {
	client *redis.Client
	prefix string
}

func NewRedisBlobStore(client *redis.Client, prefix string) *RedisBlobStore {
	return &RedisBlobStore{client: client, prefix: prefix}
}

func (r *RedisBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

func (r *RedisBlobStore) Save(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, r.prefix+key, data, 0).Err()
}

func (r *RedisBlobStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
