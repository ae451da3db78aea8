package service_test

import (
	"context"
	"testing"
	"time"

	"eventum/internal/apperr"
	"eventum/internal/model"
)

func TestCreateEvent(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")

	e, err := f.events.Create(context.Background(), owner, model.NewEventRequest{
		Title:            "rooftop concert",
		CategoryID:       f.category(t),
		ParticipantLimit: 50,
		EventDate:        f.clock.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if e.State != model.StatePending {
		t.Errorf("state = %s, want PENDING", e.State)
	}
	if e.ConfirmedRequests != 0 {
		t.Errorf("confirmed = %d, want 0", e.ConfirmedRequests)
	}
	if !e.RequestModeration {
		t.Error("request moderation should default to true")
	}
	if e.CreatedOn.IsZero() {
		t.Error("created_on not set")
	}
}

func TestCreateEventDateTooSoon(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")

	_, err := f.events.Create(context.Background(), owner, model.NewEventRequest{
		Title:      "last minute",
		CategoryID: f.category(t),
		EventDate:  f.clock.Now().Add(30 * time.Minute),
	})
	wantKind(t, err, apperr.KindValidation)
}

func TestCreateEventMissingCollaborators(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	date := f.clock.Now().Add(24 * time.Hour)

	_, err := f.events.Create(context.Background(), "nobody", model.NewEventRequest{
		Title: "x", CategoryID: f.category(t), EventDate: date,
	})
	wantKind(t, err, apperr.KindNotFound)

	_, err = f.events.Create(context.Background(), owner, model.NewEventRequest{
		Title: "x", CategoryID: "no-such-category", EventDate: date,
	})
	wantKind(t, err, apperr.KindNotFound)
}

func TestUpdateEventForbiddenForNonOwner(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	other := f.user(t, "other")
	e := f.newEvent(t, owner, 0, true)

	title := "hijacked"
	_, err := f.events.Update(context.Background(), other, e.ID,
		model.UpdateEventRequest{Title: &title})
	wantKind(t, err, apperr.KindForbidden)
}

func TestUpdateEventOwnerEditWindow(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")

	// A published event rejects owner edits outright.
	published := f.publishedEvent(t, owner, 0, true)
	title := "new title"
	_, err := f.events.Update(context.Background(), owner, published.ID,
		model.UpdateEventRequest{Title: &title})
	wantKind(t, err, apperr.KindConflict)

	// A pending event canceled via CANCEL_REVIEW accepts edits again.
	pending := f.newEvent(t, owner, 0, true)
	action := model.CancelReview
	updated, err := f.events.Update(context.Background(), owner, pending.ID,
		model.UpdateEventRequest{StateAction: &action})
	if err != nil {
		t.Fatalf("cancel review: %v", err)
	}
	if updated.State != model.StateCanceled {
		t.Fatalf("state = %s, want CANCELED", updated.State)
	}

	updated, err = f.events.Update(context.Background(), owner, pending.ID,
		model.UpdateEventRequest{Title: &title})
	if err != nil {
		t.Fatalf("edit canceled event: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
}

func TestUpdateEventAdminActionsRejected(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	e := f.newEvent(t, owner, 0, true)

	for _, action := range []model.StateAction{model.PublishEvent, model.RejectEvent} {
		a := action
		_, err := f.events.Update(context.Background(), owner, e.ID,
			model.UpdateEventRequest{StateAction: &a})
		wantKind(t, err, apperr.KindConflict)
	}

	// The rejected action must not have leaked into the stored state.
	if got := f.eventByID(t, e.ID).State; got != model.StatePending {
		t.Errorf("state = %s, want PENDING", got)
	}
}

func TestUpdateEventPartialFields(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	e := f.newEvent(t, owner, 10, true)

	annotation := "short teaser"
	updated, err := f.events.Update(context.Background(), owner, e.ID,
		model.UpdateEventRequest{Annotation: &annotation})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Annotation != annotation {
		t.Errorf("annotation = %q, want %q", updated.Annotation, annotation)
	}
	if updated.Title != e.Title {
		t.Errorf("title changed by partial update: %q", updated.Title)
	}
	if updated.ParticipantLimit != 10 {
		t.Errorf("limit changed by partial update: %d", updated.ParticipantLimit)
	}
}

func TestUpdateEventBadDateLeavesEventUntouched(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	e := f.newEvent(t, owner, 0, true)

	title := "should not apply"
	soon := f.clock.Now().Add(10 * time.Minute)
	_, err := f.events.Update(context.Background(), owner, e.ID,
		model.UpdateEventRequest{Title: &title, EventDate: &soon})
	wantKind(t, err, apperr.KindValidation)

	if got := f.eventByID(t, e.ID).Title; got != e.Title {
		t.Errorf("title = %q, want unchanged %q", got, e.Title)
	}
}

func TestListByInitiatorNewestFirst(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	first := f.newEvent(t, owner, 0, true)
	second := f.newEvent(t, owner, 0, true)

	events, err := f.events.ListByInitiator(context.Background(), owner, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].ID != second.ID || events[1].ID != first.ID {
		t.Error("events not ordered newest first")
	}
}
