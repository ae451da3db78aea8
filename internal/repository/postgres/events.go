package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"eventum/internal/apperr"
	"eventum/internal/model"
)

const eventColumns = `id, title, annotation, description, category_id,
	initiator_id, paid, state, participant_limit, request_moderation,
	confirmed_requests, comments_disabled, event_date, created_on,
	published_on`

type eventRepo struct {
	q querier
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID,
		&e.InitiatorID, &e.Paid, &e.State, &e.ParticipantLimit,
		&e.RequestModeration, &e.ConfirmedRequests, &e.CommentsDisabled,
		&e.EventDate, &e.CreatedOn, &e.PublishedOn,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		e.ID, e.Title, e.Annotation, e.Description, e.CategoryID,
		e.InitiatorID, e.Paid, e.State, e.ParticipantLimit,
		e.RequestModeration, e.ConfirmedRequests, e.CommentsDisabled,
		e.EventDate, e.CreatedOn, e.PublishedOn,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.q.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("event with id=%s was not found", id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// GetForUpdate takes an exclusive row lock on the event until the
// surrounding transaction resolves, serializing concurrent admissions.
func (r *eventRepo) GetForUpdate(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.q.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("event with id=%s was not found", id)
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	return e, nil
}

func (r *eventRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("event exists: %w", err)
	}
	return exists, nil
}

func (r *eventRepo) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE events SET
			title = $2, annotation = $3, description = $4,
			category_id = $5, paid = $6, state = $7,
			participant_limit = $8, request_moderation = $9,
			confirmed_requests = $10, comments_disabled = $11,
			event_date = $12, published_on = $13
		 WHERE id = $1`,
		e.ID, e.Title, e.Annotation, e.Description, e.CategoryID,
		e.Paid, e.State, e.ParticipantLimit, e.RequestModeration,
		e.ConfirmedRequests, e.CommentsDisabled, e.EventDate, e.PublishedOn,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("event with id=%s was not found", e.ID)
	}
	return nil
}

func (r *eventRepo) ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]model.Event, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE initiator_id = $1
		 ORDER BY created_on DESC
		 OFFSET $2 LIMIT $3`,
		initiatorID, from, size,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
