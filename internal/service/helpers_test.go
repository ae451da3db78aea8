package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"eventum/internal/apperr"
	"eventum/internal/model"
	"eventum/internal/repository/memory"
	"eventum/internal/service"
)

// fakeClock advances one second per reading so records created in
// sequence never share a timestamp.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	store    *memory.Store
	clock    *fakeClock
	events   *service.EventService
	requests *service.RequestService
	comments *service.CommentService
	stats    *service.StatsService
	dir      *service.DirectoryService
}

func newFixture() *fixture {
	store := memory.New()
	clock := newFakeClock()
	return &fixture{
		store:    store,
		clock:    clock,
		events:   service.NewEventService(store, clock.Now),
		requests: service.NewRequestService(store, clock.Now),
		comments: service.NewCommentService(store, clock.Now),
		stats:    service.NewStatsService(store, clock.Now),
		dir:      service.NewDirectoryService(store),
	}
}

func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	u, err := f.dir.CreateUser(context.Background(), model.NewUserRequest{
		Name:  name,
		Email: name + "@example.com",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.ID
}

func (f *fixture) category(t *testing.T) string {
	t.Helper()
	c, err := f.dir.CreateCategory(context.Background(), model.NewCategoryRequest{
		Name: "concerts",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c.ID
}

// newEvent creates a PENDING event owned by initiatorID.
func (f *fixture) newEvent(t *testing.T, initiatorID string, limit int, moderation bool) *model.Event {
	t.Helper()
	e, err := f.events.Create(context.Background(), initiatorID, model.NewEventRequest{
		Title:             "city meetup",
		CategoryID:        f.category(t),
		ParticipantLimit:  limit,
		RequestModeration: &moderation,
		EventDate:         f.clock.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

// publishedEvent creates an event and flips it to PUBLISHED directly in
// the store: publication is an admin action outside the owner-facing
// engine.
func (f *fixture) publishedEvent(t *testing.T, initiatorID string, limit int, moderation bool) *model.Event {
	t.Helper()
	e := f.newEvent(t, initiatorID, limit, moderation)
	now := f.clock.Now()
	e.State = model.StatePublished
	e.PublishedOn = &now
	if err := f.store.Events().Update(context.Background(), e); err != nil {
		t.Fatalf("publish event: %v", err)
	}
	return e
}

func (f *fixture) eventByID(t *testing.T, id string) *model.Event {
	t.Helper()
	e, err := f.store.Events().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get event %s: %v", id, err)
	}
	return e
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected error kind %v, got %v (%v)", kind, got, err)
	}
}
