package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventum/internal/apperr"
	"eventum/internal/model"
	"eventum/internal/repository"
)

// StatsService is the hit collector: an append-only page-view log with
// an aggregate query. No contested invariants live here.
type StatsService struct {
	store repository.Store
	now   Clock
}

// NewStatsService constructs a StatsService. A nil clock defaults to
// time.Now.
func NewStatsService(store repository.Store, now Clock) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{store: store, now: now}
}

// AddHit records one page view.
func (s *StatsService) AddHit(ctx context.Context, req model.NewHitRequest) (*model.Hit, error) {
	if req.App == "" {
		return nil, apperr.Validation("app must not be blank")
	}
	if req.URI == "" {
		return nil, apperr.Validation("uri must not be blank")
	}
	if req.IP == "" {
		return nil, apperr.Validation("ip must not be blank")
	}
	ts := req.Timestamp
	if ts.IsZero() {
		ts = s.now().UTC()
	}

	hit := &model.Hit{
		ID:        uuid.New().String(),
		App:       req.App,
		URI:       req.URI,
		IP:        req.IP,
		Timestamp: ts,
	}
	if err := s.store.Hits().Create(ctx, hit); err != nil {
		return nil, err
	}
	slog.Debug("hit recorded", "app", hit.App, "uri", hit.URI)
	return hit, nil
}

// GetStats aggregates hit counts per (app, uri) within [start, end],
// optionally restricted to uris; unique counts distinct ips instead of
// raw hits.
func (s *StatsService) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]model.ViewStats, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperr.Validation("start and end are required")
	}
	if start.After(end) {
		return nil, apperr.Validation("start must not be after end")
	}
	stats, err := s.store.Hits().Stats(ctx, start, end, uris, unique)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []model.ViewStats{}
	}
	return stats, nil
}
