package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"eventum/internal/apperr"
	"eventum/internal/model"
)

const commentColumns = `id, event_id, author_id, parent_comment_id, text,
	deleted, edited, creation_date, update_date`

type commentRepo struct {
	q querier
}

func scanComment(row pgx.Row) (*model.Comment, error) {
	var (
		c      model.Comment
		parent *string
	)
	err := row.Scan(
		&c.ID, &c.EventID, &c.AuthorID, &parent, &c.Text,
		&c.Deleted, &c.Edited, &c.CreationDate, &c.UpdateDate,
	)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		c.ParentID = *parent
	}
	return &c, nil
}

func nullableParent(c *model.Comment) any {
	if c.ParentID == "" {
		return nil
	}
	return c.ParentID
}

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO comments (`+commentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.EventID, c.AuthorID, nullableParent(c), c.Text,
		c.Deleted, c.Edited, c.CreationDate, c.UpdateDate,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanComment(r.q.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("comment with id=%s was not found", id)
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (r *commentRepo) ChildrenOf(ctx context.Context, parentID string) ([]model.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE parent_comment_id = $1 ORDER BY creation_date ASC`,
		parentID)
}

func (r *commentRepo) Update(ctx context.Context, c *model.Comment) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE comments SET text = $2, deleted = $3, edited = $4, update_date = $5
		 WHERE id = $1`,
		c.ID, c.Text, c.Deleted, c.Edited, c.UpdateDate,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("comment with id=%s was not found", c.ID)
	}
	return nil
}

func (r *commentRepo) UpdateAll(ctx context.Context, cs []model.Comment) error {
	for i := range cs {
		if err := r.Update(ctx, &cs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *commentRepo) ListByEvent(ctx context.Context, eventID string, from, size int) ([]model.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE event_id = $1 AND deleted = FALSE
		 ORDER BY creation_date DESC
		 OFFSET $2 LIMIT $3`,
		eventID, from, size)
}

func (r *commentRepo) ListByAuthor(ctx context.Context, authorID string, scope model.CommentScope, from, size int) ([]model.Comment, error) {
	base := `SELECT ` + commentColumns + ` FROM comments WHERE author_id = $1`
	switch scope {
	case model.ShowActive:
		base += ` AND deleted = FALSE`
	case model.ShowDeleted:
		base += ` AND deleted = TRUE`
	}
	base += ` ORDER BY creation_date DESC OFFSET $2 LIMIT $3`
	return r.list(ctx, base, authorID, from, size)
}

func (r *commentRepo) list(ctx context.Context, sql string, args ...any) ([]model.Comment, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
