// Package repository defines the storage contract the engine runs against.
// Two implementations exist: postgres (pgx, row-level locking) and memory
// (mutex-serialized, used by tests and local development).
package repository

import (
	"context"
	"time"

	"eventum/internal/model"
)

// Store bundles every repository plus the transaction runner. Engine
// operations that touch an event and its requests or comments together
// run inside InTx so the mutation applies as one atomic unit.
type Store interface {
	Users() UserRepository
	Categories() CategoryRepository
	Events() EventRepository
	Requests() RequestRepository
	Comments() CommentRepository
	Hits() HitRepository

	// InTx runs fn against a transaction-scoped view of the store and
	// commits when fn returns nil. Any error rolls every change back.
	InTx(ctx context.Context, fn func(Store) error) error
}

// UserRepository is the keyed user directory.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, from, size int) ([]model.User, error)
	Delete(ctx context.Context, id string) error
}

// CategoryRepository is the keyed category catalog.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, from, size int) ([]model.Category, error)
	Delete(ctx context.Context, id string) error
}

// EventRepository handles persistence for events.
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// GetForUpdate loads the event with an exclusive row lock.
	// Meaningful only inside InTx; the lock serializes every admission
	// and batch confirmation touching the same event.
	GetForUpdate(ctx context.Context, id string) (*model.Event, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, e *model.Event) error
	ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]model.Event, error)
}

// RequestRepository handles persistence for participation requests.
type RequestRepository interface {
	Create(ctx context.Context, r *model.Request) error
	GetByID(ctx context.Context, id string) (*model.Request, error)
	// ExistsActive reports whether a non-canceled request exists for
	// the (event, requester) pair.
	ExistsActive(ctx context.Context, eventID, requesterID string) (bool, error)
	// GetByIDs loads the requests for the given ids; ids that match
	// nothing are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]model.Request, error)
	Update(ctx context.Context, r *model.Request) error
	UpdateAll(ctx context.Context, rs []model.Request) error
	ListByRequester(ctx context.Context, requesterID string) ([]model.Request, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Request, error)
	CountConfirmed(ctx context.Context, eventID string) (int, error)
}

// CommentRepository handles persistence for the comment forest. The tree
// is traversed through ChildrenOf, never through in-memory back-pointers.
type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ChildrenOf(ctx context.Context, parentID string) ([]model.Comment, error)
	Update(ctx context.Context, c *model.Comment) error
	UpdateAll(ctx context.Context, cs []model.Comment) error
	// ListByEvent returns non-deleted comments for the event, newest
	// first, page-sliced.
	ListByEvent(ctx context.Context, eventID string, from, size int) ([]model.Comment, error)
	ListByAuthor(ctx context.Context, authorID string, scope model.CommentScope, from, size int) ([]model.Comment, error)
}

// HitRepository is the append-only page-view log.
type HitRepository interface {
	Create(ctx context.Context, h *model.Hit) error
	// Stats aggregates hits per (app, uri) within [start, end],
	// optionally restricted to uris, counting distinct ips when
	// unique is set. Ordered by hit count descending.
	Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]model.ViewStats, error)
}
