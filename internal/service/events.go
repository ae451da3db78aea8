package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventum/internal/apperr"
	"eventum/internal/model"
	"eventum/internal/repository"
)

// EventService governs an event's lifecycle: creation, owner edits and
// the owner-facing state transitions.
type EventService struct {
	store repository.Store
	now   Clock
}

// NewEventService constructs an EventService. A nil clock defaults to
// time.Now.
func NewEventService(store repository.Store, now Clock) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{store: store, now: now}
}

// validateEventDate enforces the 2-hour lead rule at the instant of the
// call, before any mutation.
func (s *EventService) validateEventDate(date time.Time) error {
	if date.Before(s.now().Add(minEventLead)) {
		return apperr.Validation(
			"event date must be at least 2 hours in the future")
	}
	return nil
}

// Create registers a new event in state PENDING on behalf of its
// initiator.
func (s *EventService) Create(ctx context.Context, initiatorID string, req model.NewEventRequest) (*model.Event, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Validation("event title is required")
	}
	if req.ParticipantLimit < 0 {
		return nil, apperr.Validation("participant limit cannot be negative")
	}
	if err := s.validateEventDate(req.EventDate); err != nil {
		return nil, err
	}
	if err := ensureUser(ctx, s.store, initiatorID); err != nil {
		return nil, err
	}
	if err := ensureCategory(ctx, s.store, req.CategoryID); err != nil {
		return nil, err
	}

	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}

	event := &model.Event{
		ID:                uuid.New().String(),
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		InitiatorID:       initiatorID,
		Paid:              req.Paid,
		State:             model.StatePending,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
		ConfirmedRequests: 0,
		CommentsDisabled:  req.CommentsDisabled,
		EventDate:         req.EventDate,
		CreatedOn:         s.now().UTC(),
	}
	if err := s.store.Events().Create(ctx, event); err != nil {
		return nil, err
	}

	slog.Info("event created",
		"event_id", event.ID, "initiator_id", initiatorID)
	return event, nil
}

// Update applies an owner's partial edit to an event. Only events in
// state PENDING or CANCELED accept edits; absent fields stay untouched.
// A state action, when present, is dispatched after the field updates:
// SEND_TO_REVIEW and CANCEL_REVIEW are the only actions the owner path
// permits.
func (s *EventService) Update(ctx context.Context, callerID, eventID string, patch model.UpdateEventRequest) (*model.Event, error) {
	if err := ensureUser(ctx, s.store, callerID); err != nil {
		return nil, err
	}
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != callerID {
		return nil, apperr.Forbidden(
			"user with id=%s is not allowed to update event with id=%s",
			callerID, eventID)
	}
	if event.State != model.StatePending && event.State != model.StateCanceled {
		return nil, apperr.Conflict(
			"only pending or canceled events can be changed")
	}

	// The date rule is checked against every new date before any field
	// applies, so a violation leaves the event untouched.
	if patch.EventDate != nil {
		if err := s.validateEventDate(*patch.EventDate); err != nil {
			return nil, err
		}
	}
	if patch.ParticipantLimit != nil && *patch.ParticipantLimit < 0 {
		return nil, apperr.Validation("participant limit cannot be negative")
	}
	if patch.CategoryID != nil {
		if err := ensureCategory(ctx, s.store, *patch.CategoryID); err != nil {
			return nil, err
		}
		event.CategoryID = *patch.CategoryID
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Annotation != nil {
		event.Annotation = *patch.Annotation
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Paid != nil {
		event.Paid = *patch.Paid
	}
	if patch.ParticipantLimit != nil {
		event.ParticipantLimit = *patch.ParticipantLimit
	}
	if patch.RequestModeration != nil {
		event.RequestModeration = *patch.RequestModeration
	}
	if patch.CommentsDisabled != nil {
		event.CommentsDisabled = *patch.CommentsDisabled
	}
	if patch.EventDate != nil {
		event.EventDate = *patch.EventDate
	}

	if patch.StateAction != nil {
		switch *patch.StateAction {
		case model.SendToReview:
			event.State = model.StatePending
		case model.CancelReview:
			event.State = model.StateCanceled
		default:
			// PUBLISH_EVENT / REJECT_EVENT are admin-only and must
			// fail here, never silently apply.
			return nil, apperr.Conflict(
				"user cannot perform action: %s", *patch.StateAction)
		}
	}

	if err := s.store.Events().Update(ctx, event); err != nil {
		return nil, err
	}
	slog.Info("event updated", "event_id", eventID, "state", event.State)
	return event, nil
}

// Get returns a single event for its owner's view.
func (s *EventService) Get(ctx context.Context, callerID, eventID string) (*model.Event, error) {
	if err := ensureUser(ctx, s.store, callerID); err != nil {
		return nil, err
	}
	return s.store.Events().GetByID(ctx, eventID)
}

// ListByInitiator returns the caller's events, newest first.
func (s *EventService) ListByInitiator(ctx context.Context, userID string, from, size int) ([]model.Event, error) {
	if err := ensureUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	from, size = normalizePage(from, size)
	return s.store.Events().ListByInitiator(ctx, userID, from, size)
}
