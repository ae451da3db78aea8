package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"eventum/internal/apperr"
	"eventum/internal/model"
)

type requestRepo struct {
	q querier
}

func (r *requestRepo) Create(ctx context.Context, req *model.Request) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO requests (id, event_id, requester_id, status, created)
		 VALUES ($1, $2, $3, $4, $5)`,
		req.ID, req.EventID, req.RequesterID, req.Status, req.Created,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	err := r.q.QueryRow(ctx,
		`SELECT id, event_id, requester_id, status, created
		 FROM requests WHERE id = $1`, id,
	).Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Status, &req.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("request with id=%s was not found", id)
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &req, nil
}

func (r *requestRepo) ExistsActive(ctx context.Context, eventID, requesterID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM requests
			WHERE event_id = $1 AND requester_id = $2 AND status <> $3
		 )`,
		eventID, requesterID, model.RequestCanceled,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active request: %w", err)
	}
	return exists, nil
}

func (r *requestRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Request, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, event_id, requester_id, status, created
		 FROM requests WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get requests by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]model.Request, len(ids))
	for rows.Next() {
		var req model.Request
		if err := rows.Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Status, &req.Created); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		byID[req.ID] = req
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve the caller's id order; the overflow policy depends on it.
	out := make([]model.Request, 0, len(byID))
	for _, id := range ids {
		if req, ok := byID[id]; ok {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *requestRepo) Update(ctx context.Context, req *model.Request) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE requests SET status = $2 WHERE id = $1`, req.ID, req.Status)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("request with id=%s was not found", req.ID)
	}
	return nil
}

func (r *requestRepo) UpdateAll(ctx context.Context, rs []model.Request) error {
	for i := range rs {
		if err := r.Update(ctx, &rs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *requestRepo) ListByRequester(ctx context.Context, requesterID string) ([]model.Request, error) {
	return r.list(ctx,
		`SELECT id, event_id, requester_id, status, created
		 FROM requests WHERE requester_id = $1 ORDER BY created ASC`,
		requesterID)
}

func (r *requestRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Request, error) {
	return r.list(ctx,
		`SELECT id, event_id, requester_id, status, created
		 FROM requests WHERE event_id = $1 ORDER BY created ASC`,
		eventID)
}

func (r *requestRepo) list(ctx context.Context, sql string, arg any) ([]model.Request, error) {
	rows, err := r.q.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []model.Request
	for rows.Next() {
		var req model.Request
		if err := rows.Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Status, &req.Created); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *requestRepo) CountConfirmed(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = $2`,
		eventID, model.RequestConfirmed,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count confirmed requests: %w", err)
	}
	return n, nil
}
