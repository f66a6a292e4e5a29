package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, ttl time.Duration) *StorageStore {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "storage.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStorageStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, time.Hour)

	_, ok, err := store.Get(ctx, "client-a", "weatherAppUser")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "client-a", "weatherAppUser", "first"))
	require.NoError(t, store.Set(ctx, "client-a", "weatherAppUser", "second"))

	value, ok, err := store.Get(ctx, "client-a", "weatherAppUser")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", value)

	_, ok, err = store.Get(ctx, "client-b", "weatherAppUser")
	require.NoError(t, err)
	require.False(t, ok, "items are scoped by client id")

	require.NoError(t, store.Delete(ctx, "client-a", "weatherAppUser"))
	_, ok, err = store.Get(ctx, "client-a", "weatherAppUser")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorageStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, time.Minute)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	require.NoError(t, store.Set(ctx, "client-a", "weatherAppUser", "stale"))
	require.NoError(t, store.Set(ctx, "client-b", "weatherAppUser", "fresh"))

	store.now = func() time.Time { return base.Add(30 * time.Second) }
	require.NoError(t, store.Set(ctx, "client-b", "weatherAppUser", "fresh"))

	store.now = func() time.Time { return base.Add(70 * time.Second) }
	_, ok, err := store.Get(ctx, "client-a", "weatherAppUser")
	require.NoError(t, err)
	require.False(t, ok)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	value, ok, err := store.Get(ctx, "client-b", "weatherAppUser")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "fresh", value)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ", time.Hour)
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	store := openTestStore(t, 0)
	require.NoError(t, store.Ping(context.Background()))
	require.Equal(t, 30*24*time.Hour, store.ttl)
}
