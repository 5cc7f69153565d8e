package db

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
)

// NewPgxPool creates a new pgx pool from the store connection string.
func NewPgxPool(ctx context.Context, cfg config.Store) (*pgxpool.Pool, error) {
	pgConf, err := pgxpool.ParseConfig(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	pgConf.ConnConfig.Tracer = otelpgx.NewTracer()

	if cfg.MaxPoolSize > 0 && cfg.MaxPoolSize <= math.MaxInt32 {
		pgConf.MaxConns = int32(cfg.MaxPoolSize)
	}
	if cfg.ConnectTimeout > 0 {
		pgConf.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgConf)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := otelpgx.RecordStats(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("record database stats: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
