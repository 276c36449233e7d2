package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

type kvStore struct {
	client redis.Cmdable
}

// NewKVStore stores cart blobs as plain string values without expiry.
func NewKVStore(client redis.Cmdable) repository.KVStore {
	return &kvStore{client: client}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}
	return val, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("cannot write value under empty key")
	}
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}
	return nil
}

func (s *kvStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrConnectionFailed, err)
	}
	return nil
}
