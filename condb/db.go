package condb

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Connect opens a shared pgx pool. Sale commits from concurrent sessions
// need their own connections, so a single conn per process is not enough.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
