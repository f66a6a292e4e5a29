package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var resetStatements = []string{
	`drop schema if exists public cascade`,
	`create schema public`,
	`grant all on schema public to public`,
	`grant all on schema public to current_user`,
}

// ResetSchema drops and recreates the public schema. Every stored session is lost.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range resetStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("reset schema (%s): %w", stmt, err)
			}
		}
		return nil
	})
}
