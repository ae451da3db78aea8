package postgres

import (
	"context"
	"fmt"
	"time"

	"eventum/internal/model"
)

type hitRepo struct {
	q querier
}

func (r *hitRepo) Create(ctx context.Context, h *model.Hit) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO hits (id, app, uri, ip, ts) VALUES ($1, $2, $3, $4, $5)`,
		h.ID, h.App, h.URI, h.IP, h.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

func (r *hitRepo) Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]model.ViewStats, error) {
	count := `COUNT(*)`
	if unique {
		count = `COUNT(DISTINCT ip)`
	}

	sql := `SELECT app, uri, ` + count + ` AS hits
		FROM hits
		WHERE ts >= $1 AND ts <= $2`
	args := []any{start, end}
	if len(uris) > 0 {
		sql += ` AND uri = ANY($3)`
		args = append(args, uris)
	}
	sql += ` GROUP BY app, uri ORDER BY hits DESC`

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var out []model.ViewStats
	for rows.Next() {
		var vs model.ViewStats
		if err := rows.Scan(&vs.App, &vs.URI, &vs.Hits); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, vs)
	}
	return out, rows.Err()
}
