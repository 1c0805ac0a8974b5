package pg

import (
	"context"

	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a new PostgreSQL connection pool with the provided configuration.
// The initial connectivity check is retried with exponential backoff so that
// services can start before the database becomes reachable.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, errx.Wrap(err)
	}

	poolConfig.MaxConns = cfg.PoolMaxConns
	poolConfig.MinConns = cfg.PoolMinConns
	poolConfig.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	poolConfig.MaxConnLifetime = cfg.PoolMaxConnLifetime

	pgPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	err = retry.Do(
		func() error {
			return pgPool.Ping(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(cfg.ConnectRetries),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		pgPool.Close()
		return nil, errx.Wrap(err)
	}

	return pgPool, nil
}
