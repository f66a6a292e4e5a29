package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureTable creates the bookkeeping table required to track applied migrations.
func EnsureTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        create table if not exists schema_migrations (
            name text primary key,
            applied_at timestamptz not null default now()
        )
    `)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// Apply executes unapplied .sql files found in dir.
func Apply(ctx context.Context, pool *pgxpool.Pool, dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("migrations directory %q not found", dir)
		}
		return nil, fmt.Errorf("stat migrations dir: %w", err)
	}
	return ApplyFS(ctx, pool, os.DirFS(dir))
}

// ApplyFS executes unapplied .sql files at the root of fsys, ordered
// lexicographically. Each file runs in its own transaction and must hold a
// single statement.
func ApplyFS(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var applied []string
	for _, name := range listSQLFiles(entries) {
		done, err := migrationApplied(ctx, pool, name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		contents, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}
		if err := runMigration(ctx, pool, name, strings.TrimSpace(string(contents))); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}
	return applied, nil
}

// Pending lists migrations in fsys that have not been applied yet.
func Pending(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var pending []string
	for _, name := range listSQLFiles(entries) {
		done, err := migrationApplied(ctx, pool, name)
		if err != nil {
			return nil, err
		}
		if !done {
			pending = append(pending, name)
		}
	}
	return pending, nil
}

func migrationApplied(ctx context.Context, pool *pgxpool.Pool, name string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `select exists (select 1 from schema_migrations where name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return exists, nil
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, name, statement string) error {
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if statement != "" {
			if _, err := tx.Exec(ctx, statement); err != nil {
				return fmt.Errorf("exec migration %s: %w", name, err)
			}
		}
		if _, err := tx.Exec(ctx, `insert into schema_migrations (name) values ($1)`, name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

func listSQLFiles(entries []fs.DirEntry) []string {
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files
}
