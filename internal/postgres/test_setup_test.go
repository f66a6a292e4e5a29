package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/benpsk/weather-gate/internal/config"
	"github.com/benpsk/weather-gate/internal/testenv"
	"github.com/jackc/pgx/v5/pgxpool"
)

var integrationPool *pgxpool.Pool

func TestMain(m *testing.M) {
	if err := testenv.Load(); err != nil {
		if errors.Is(err, testenv.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "postgres: .env.test not found, skipping integration tests")
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		fmt.Fprintln(os.Stderr, "postgres: DATABASE_URL not set, skipping integration tests")
		os.Exit(0)
	}

	ctx := context.Background()
	pool, err := Connect(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	unlock, err := testenv.LockIntegrationDB(ctx, pool, "weather-gate:integration")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := EnsureTable(ctx, pool); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := Apply(ctx, pool, "../../db/migrations"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	integrationPool = pool
	code := m.Run()
	unlock()
	pool.Close()
	os.Exit(code)
}

func withTx(t *testing.T) (context.Context, func()) {
	t.Helper()

	ctx := context.Background()
	tx, err := integrationPool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	return WithDBTX(ctx, tx), func() {
		_ = tx.Rollback(ctx)
	}
}
