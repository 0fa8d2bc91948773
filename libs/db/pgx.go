// Package db owns the Postgres connection pool and its readiness probe.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmeet/openmeet/libs/runtime"
)

// Pool wraps pgxpool so callers depend on this package, not pgx directly.
type Pool struct {
	*pgxpool.Pool
}

// Open builds a pool with the service's standard sizing and verifies the
// database answers before returning.
func Open(ctx context.Context, databaseURL string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// ReadyCheck exposes the pool as a /readyz probe.
func (p *Pool) ReadyCheck() runtime.ReadyCheck {
	return runtime.ReadyCheck{
		Name:  "postgres",
		Check: func(ctx context.Context) error { return p.Ping(ctx) },
	}
}
