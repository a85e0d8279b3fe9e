package redis

import (
	"context"
	"errors"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

type stateRepository struct {
	client *redislib.Client
	prefix string
}

// NewStateRepository creates a Redis-backed durable key-value store. Keys never expire.
func NewStateRepository(client *redislib.Client, prefix string) repository.KeyValueStore {
	if prefix == "" {
		prefix = "storefront:"
	}
	return &stateRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *stateRepository) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrStateNotFound
		}
		return nil, err
	}
	return result, nil
}

func (r *stateRepository) Put(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *stateRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *stateRepository) key(key string) string {
	return r.prefix + key
}
