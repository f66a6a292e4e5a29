package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StorageStore keeps per-browser key-value items in the storage_items table.
type StorageStore struct {
	db  *pgxpool.Pool
	ttl time.Duration
	now func() time.Time
}

func NewStorageStore(pool *pgxpool.Pool, ttl time.Duration) *StorageStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &StorageStore{db: pool, ttl: ttl, now: time.Now}
}

func (s *StorageStore) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	db := DBFromContext(ctx, s.db)
	var value string
	err := db.QueryRow(ctx, `
		select value
		from storage_items
		where client_id = $1 and key = $2 and expires_at > $3
	`, strings.TrimSpace(clientID), key, s.now()).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get storage item: %w", err)
	}
	return value, true, nil
}

func (s *StorageStore) Set(ctx context.Context, clientID, key, value string) error {
	db := DBFromContext(ctx, s.db)
	now := s.now()
	_, err := db.Exec(ctx, `
		insert into storage_items (client_id, key, value, expires_at, updated_at)
		values ($1, $2, $3, $4, $5)
		on conflict (client_id, key) do update
		set value = excluded.value,
		    expires_at = excluded.expires_at,
		    updated_at = excluded.updated_at
	`, strings.TrimSpace(clientID), key, value, now.Add(s.ttl), now)
	if err != nil {
		return fmt.Errorf("set storage item: %w", err)
	}
	return nil
}

func (s *StorageStore) Delete(ctx context.Context, clientID, key string) error {
	db := DBFromContext(ctx, s.db)
	_, err := db.Exec(ctx, `delete from storage_items where client_id = $1 and key = $2`, strings.TrimSpace(clientID), key)
	if err != nil {
		return fmt.Errorf("delete storage item: %w", err)
	}
	return nil
}

func (s *StorageStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *StorageStore) PurgeExpired(ctx context.Context) (int64, error) {
	db := DBFromContext(ctx, s.db)
	tag, err := db.Exec(ctx, `delete from storage_items where expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge storage items: %w", err)
	}
	return tag.RowsAffected(), nil
}
