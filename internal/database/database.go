// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"eventum/internal/config"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				break
			}
			pool.Close()
			err = pingErr
		}
		slog.Warn("db connect failed, retrying in 2s",
			"attempt", attempt, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pool, nil
}

// CreateSchema creates every table and index the service needs. Safe to
// run on every start.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			annotation TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			category_id UUID NOT NULL REFERENCES categories(id),
			initiator_id UUID NOT NULL REFERENCES users(id),
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			state TEXT NOT NULL,
			participant_limit INT NOT NULL DEFAULT 0,
			request_moderation BOOLEAN NOT NULL DEFAULT TRUE,
			confirmed_requests INT NOT NULL DEFAULT 0,
			comments_disabled BOOLEAN NOT NULL DEFAULT FALSE,
			event_date TIMESTAMPTZ NOT NULL,
			created_on TIMESTAMPTZ NOT NULL,
			published_on TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS requests (
			id UUID PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id),
			requester_id UUID NOT NULL REFERENCES users(id),
			status TEXT NOT NULL,
			created TIMESTAMPTZ NOT NULL
		)`,
		// One live request per requester per event; canceled rows do
		// not block a new request.
		`CREATE UNIQUE INDEX IF NOT EXISTS requests_event_requester_live
			ON requests (event_id, requester_id)
			WHERE status <> 'CANCELED'`,
		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id),
			author_id UUID NOT NULL REFERENCES users(id),
			parent_comment_id UUID REFERENCES comments(id),
			text TEXT NOT NULL,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			edited BOOLEAN NOT NULL DEFAULT FALSE,
			creation_date TIMESTAMPTZ NOT NULL,
			update_date TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS comments_parent
			ON comments (parent_comment_id)`,
		`CREATE INDEX IF NOT EXISTS comments_event_created
			ON comments (event_id, creation_date DESC)`,
		`CREATE TABLE IF NOT EXISTS hits (
			id UUID PRIMARY KEY,
			app TEXT NOT NULL,
			uri TEXT NOT NULL,
			ip TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS hits_ts ON hits (ts)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
