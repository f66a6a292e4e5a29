package testenv

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LockIntegrationDB serialises integration test packages sharing one
// database. The lock is keyed by name and held on a dedicated connection
// until the returned func is called.
func LockIntegrationDB(ctx context.Context, pool *pgxpool.Pool, name string) (func(), error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire advisory lock conn: %w", err)
	}
	if _, err := conn.Exec(ctx, `select pg_advisory_lock(hashtext($1))`, name); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock %q: %w", name, err)
	}
	return func() {
		_, _ = conn.Exec(context.Background(), `select pg_advisory_unlock(hashtext($1))`, name)
		conn.Release()
	}, nil
}
