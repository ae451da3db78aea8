// Package service implements the engagement engine: event lifecycle,
// participation ledger, comment moderation tree, the hit collector and
// the user/category directories. Services validate every precondition
// against current state before mutating anything and surface typed
// failures from internal/apperr.
package service

import (
	"context"
	"time"

	"eventum/internal/apperr"
	"eventum/internal/repository"
)

// Clock supplies the current time. Production wiring passes time.Now;
// tests pass a fake to pin the 2-hour event date rule and timestamps.
type Clock func() time.Time

const (
	defaultPageSize = 10
	maxCommentLen   = 1000
	// minEventLead is how far in the future an event date must lie,
	// evaluated at the instant of the call.
	minEventLead = 2 * time.Hour
)

func normalizePage(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	return from, size
}

func ensureUser(ctx context.Context, store repository.Store, id string) error {
	ok, err := store.Users().Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("user with id=%s was not found", id)
	}
	return nil
}

func ensureCategory(ctx context.Context, store repository.Store, id string) error {
	ok, err := store.Categories().Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("category with id=%s was not found", id)
	}
	return nil
}

func ensureEvent(ctx context.Context, store repository.Store, id string) error {
	ok, err := store.Events().Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("event with id=%s was not found", id)
	}
	return nil
}
