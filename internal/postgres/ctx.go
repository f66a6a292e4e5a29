package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type dbtxKey struct{}

func WithDBTX(ctx context.Context, db DBTX) context.Context {
	if db == nil {
		return ctx
	}
	return context.WithValue(ctx, dbtxKey{}, db)
}

func DBFromContext(ctx context.Context, fallback DBTX) DBTX {
	if ctx == nil {
		return fallback
	}
	if value := ctx.Value(dbtxKey{}); value != nil {
		if db, ok := value.(DBTX); ok {
			return db
		}
	}
	return fallback
}
