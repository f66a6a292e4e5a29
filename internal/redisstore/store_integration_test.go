package redisstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/benpsk/weather-gate/internal/config"
	"github.com/benpsk/weather-gate/internal/testenv"
	"github.com/stretchr/testify/require"
)

func newIntegrationStore(t *testing.T, ttl time.Duration) *StorageStore {
	t.Helper()
	if err := testenv.Load(); err != nil {
		if errors.Is(err, testenv.ErrNotFound) {
			t.Skip("redis: .env.test not found")
		}
		t.Fatalf("load env: %v", err)
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("redis: REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, config.RedisConfig{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewStorageStore(client, ttl)
	store.prefix = "weather-gate-test:" + t.Name() + ":"
	return store
}

func TestStorageStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newIntegrationStore(t, time.Minute)
	t.Cleanup(func() { _ = store.Delete(ctx, "client-a", "weatherAppUser") })

	_, ok, err := store.Get(ctx, "client-a", "weatherAppUser")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "client-a", "weatherAppUser", "value"))
	value, ok, err := store.Get(ctx, "client-a", "weatherAppUser")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)

	ttl, err := store.client.TTL(ctx, store.itemKey("client-a", "weatherAppUser")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, "client-a", "weatherAppUser"))
	_, ok, err = store.Get(ctx, "client-a", "weatherAppUser")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestItemKeyScopesByClient(t *testing.T) {
	store := &StorageStore{prefix: defaultPrefix}
	require.Equal(t, "weather-gate:storage:abc:weatherAppUser", store.itemKey(" abc ", "weatherAppUser"))
	require.NotEqual(t, store.itemKey("a", "k"), store.itemKey("b", "k"))
}
