// Package pg provides PostgreSQL database connection and utility functions.
//
// It offers abstractions for creating connection pools, working with the Bun ORM,
// handling PostgreSQL-specific errors, and managing database models with automatic
// timestamp tracking. The package integrates with OpenTelemetry for observability.
package pg

import (
	"context"

	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rise-and-shine/order-inventory-platform/pg/hooks"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bunotel"
)

// NewBunDB creates a new Bun database connection with the provided configuration.
func NewBunDB(ctx context.Context, cfg Config) (*bun.DB, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	sqldb := stdlib.OpenDBFromPool(pool)

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	applyHooks(bunDB, cfg.Debug)

	return bunDB, nil
}

// applyHooks configures Bun database with query hooks for debugging and telemetry.
//
// The query logging hook is only active when debug=true, while the OpenTelemetry
// hook is always enabled.
func applyHooks(db *bun.DB, debug bool) {
	db.AddQueryHook(
		hooks.NewDebugHook(
			hooks.WithEnabled(debug),
			hooks.WithVerbose(true),
		),
	)

	db.AddQueryHook(bunotel.NewQueryHook())
}
