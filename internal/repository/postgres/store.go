// Package postgres implements the storage contract on PostgreSQL using
// pgx directly (no ORM). Per-event serialization relies on row-level
// locks (SELECT ... FOR UPDATE) taken inside a transaction.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventum/internal/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every
// repository works unchanged inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed repository.Store.
type Store struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

// New constructs a Store over a pgx connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

// InTx runs fn inside a single transaction. Nested calls reuse the
// surrounding transaction.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txStore := &Store{pool: s.pool, q: tx, inTx: true}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Users() repository.UserRepository          { return &userRepo{s.q} }
func (s *Store) Categories() repository.CategoryRepository { return &categoryRepo{s.q} }
func (s *Store) Events() repository.EventRepository        { return &eventRepo{s.q} }
func (s *Store) Requests() repository.RequestRepository    { return &requestRepo{s.q} }
func (s *Store) Comments() repository.CommentRepository    { return &commentRepo{s.q} }
func (s *Store) Hits() repository.HitRepository            { return &hitRepo{s.q} }
