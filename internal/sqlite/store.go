// Package sqlite keeps per-browser storage items in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// expires_at and updated_at hold unix milliseconds.
var schema = []string{
	`create table if not exists storage_items (
        client_id text not null,
        key text not null,
        value text not null,
        expires_at integer not null,
        updated_at integer not null,
        primary key (client_id, key)
    )`,
	`create index if not exists storage_items_expires_at_idx on storage_items (expires_at)`,
}

type StorageStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (creating when needed) the database at path and ensures the schema.
func Open(ctx context.Context, path string, ttl time.Duration) (*StorageStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `pragma journal_mode = wal`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create sqlite schema: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &StorageStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *StorageStore) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		select value from storage_items
		where client_id = ? and key = ? and expires_at > ?
	`, strings.TrimSpace(clientID), key, s.now().UnixMilli()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get storage item: %w", err)
	}
	return value, true, nil
}

func (s *StorageStore) Set(ctx context.Context, clientID, key, value string) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx, `
		insert into storage_items (client_id, key, value, expires_at, updated_at)
		values (?, ?, ?, ?, ?)
		on conflict (client_id, key) do update
		set value = excluded.value,
		    expires_at = excluded.expires_at,
		    updated_at = excluded.updated_at
	`, strings.TrimSpace(clientID), key, value, now.Add(s.ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("set storage item: %w", err)
	}
	return nil
}

func (s *StorageStore) Delete(ctx context.Context, clientID, key string) error {
	_, err := s.db.ExecContext(ctx, `delete from storage_items where client_id = ? and key = ?`, strings.TrimSpace(clientID), key)
	if err != nil {
		return fmt.Errorf("delete storage item: %w", err)
	}
	return nil
}

func (s *StorageStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *StorageStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `delete from storage_items where expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge storage items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge storage items: %w", err)
	}
	return n, nil
}

func (s *StorageStore) Close() error {
	return s.db.Close()
}
