// Package redisstore keeps per-browser storage items in Redis, relying on key
// expiry instead of a purge job.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benpsk/weather-gate/internal/config"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "weather-gate:storage:"

func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

type StorageStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStorageStore(client *redis.Client, ttl time.Duration) *StorageStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &StorageStore{client: client, prefix: defaultPrefix, ttl: ttl}
}

func (s *StorageStore) itemKey(clientID, key string) string {
	return s.prefix + strings.TrimSpace(clientID) + ":" + key
}

func (s *StorageStore) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.itemKey(clientID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get storage item: %w", err)
	}
	return value, true, nil
}

func (s *StorageStore) Set(ctx context.Context, clientID, key, value string) error {
	if err := s.client.Set(ctx, s.itemKey(clientID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("set storage item: %w", err)
	}
	return nil
}

func (s *StorageStore) Delete(ctx context.Context, clientID, key string) error {
	if err := s.client.Del(ctx, s.itemKey(clientID, key)).Err(); err != nil {
		return fmt.Errorf("delete storage item: %w", err)
	}
	return nil
}

func (s *StorageStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
