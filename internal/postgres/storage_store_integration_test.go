package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/benpsk/weather-gate/db"
)

func TestStorageStoreRoundTrip(t *testing.T) {
	ctx, rollback := withTx(t)
	defer rollback()

	store := NewStorageStore(integrationPool, time.Hour)

	if _, ok, err := store.Get(ctx, "client-a", "weatherAppUser"); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "client-a", "weatherAppUser", `{"name":"Ada"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "client-a", "weatherAppUser", `{"name":"Grace"}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, ok, err := store.Get(ctx, "client-a", "weatherAppUser")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != `{"name":"Grace"}` {
		t.Fatalf("unexpected value %q", value)
	}
	if _, ok, _ := store.Get(ctx, "client-b", "weatherAppUser"); ok {
		t.Fatal("items must be scoped by client id")
	}

	if err := store.Delete(ctx, "client-a", "weatherAppUser"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "client-a", "weatherAppUser"); ok {
		t.Fatal("expected item removed")
	}
}

func TestStorageStorePurgeExpired(t *testing.T) {
	ctx, rollback := withTx(t)
	defer rollback()

	store := NewStorageStore(integrationPool, time.Minute)
	base := time.Now()
	store.now = func() time.Time { return base }

	if err := store.Set(ctx, "client-old", "weatherAppUser", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok, _ := store.Get(ctx, "client-old", "weatherAppUser"); ok {
		t.Fatal("expired item must not be returned")
	}
	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged < 1 {
		t.Fatalf("expected at least one purged row, got %d", purged)
	}
}

func TestPendingMigrationsEmptyAfterApply(t *testing.T) {
	pending, err := Pending(context.Background(), integrationPool, db.Migrations())
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending migrations, got %v", pending)
	}
}
