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

// RequestService is the participation ledger. Every mutation runs inside
// a store transaction with the event row locked, so the confirmed
// counter can never race past the participant limit.
type RequestService struct {
	store repository.Store
	now   Clock
}

// NewRequestService constructs a RequestService. A nil clock defaults to
// time.Now.
func NewRequestService(store repository.Store, now Clock) *RequestService {
	if now == nil {
		now = time.Now
	}
	return &RequestService{store: store, now: now}
}

// Add files a participation request. Requests against unmoderated or
// unlimited events are confirmed atomically with their creation.
func (s *RequestService) Add(ctx context.Context, requesterID, eventID string) (*model.Request, error) {
	var out *model.Request
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := ensureUser(ctx, tx, requesterID); err != nil {
			return err
		}
		active, err := tx.Requests().ExistsActive(ctx, eventID, requesterID)
		if err != nil {
			return err
		}
		if active {
			return apperr.DataConflict(
				"event %s already contains a request from user %s",
				eventID, requesterID)
		}

		event, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event.InitiatorID == requesterID {
			return apperr.DataConflict("owner of event cannot perform request")
		}
		if event.State != model.StatePublished {
			return apperr.DataConflict("event is not published")
		}
		if event.IsFull() {
			return apperr.DataConflict("participant limit exceeded")
		}

		req := &model.Request{
			ID:          uuid.New().String(),
			EventID:     eventID,
			RequesterID: requesterID,
			Status:      model.RequestPending,
			Created:     s.now().UTC(),
		}
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			req.Status = model.RequestConfirmed
			event.ConfirmedRequests++
			if err := tx.Events().Update(ctx, event); err != nil {
				return err
			}
		}
		if err := tx.Requests().Create(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("participation request added",
		"request_id", out.ID, "event_id", eventID, "status", out.Status)
	return out, nil
}

// Cancel withdraws the caller's own request. A confirmed request frees
// its seat. Canceling an already-canceled or a rejected request fails
// Conflict: the ledger rejects redundant writes.
func (s *RequestService) Cancel(ctx context.Context, requesterID, requestID string) (*model.Request, error) {
	var out *model.Request
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := ensureUser(ctx, tx, requesterID); err != nil {
			return err
		}
		req, err := tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.RequesterID != requesterID {
			return apperr.Forbidden(
				"user %s cannot cancel request %s", requesterID, requestID)
		}
		switch req.Status {
		case model.RequestCanceled:
			return apperr.Conflict("request is already canceled")
		case model.RequestRejected:
			return apperr.Conflict("a rejected request cannot be canceled")
		}

		event, err := tx.Events().GetForUpdate(ctx, req.EventID)
		if err != nil {
			return err
		}
		if req.Status == model.RequestConfirmed {
			event.ConfirmedRequests--
			if err := tx.Events().Update(ctx, event); err != nil {
				return err
			}
		}

		req.Status = model.RequestCanceled
		if err := tx.Requests().Update(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("participation request canceled", "request_id", requestID)
	return out, nil
}

// UpdateStatuses confirms or rejects a batch of pending requests on
// behalf of the event initiator. The whole batch is prechecked before
// any mutation; when confirming, requests are taken in the caller's
// order until capacity runs out and the remainder is rejected.
func (s *RequestService) UpdateStatuses(ctx context.Context, callerID, eventID string, upd model.StatusUpdateRequest) (*model.StatusUpdateResult, error) {
	if upd.Status != model.RequestConfirmed && upd.Status != model.RequestRejected {
		return nil, apperr.Validation(
			"status must be CONFIRMED or REJECTED, got %s", upd.Status)
	}

	// A repeated id must not load (and confirm) the same request twice;
	// first occurrence keeps its place in the order.
	ids := make([]string, 0, len(upd.RequestIDs))
	seen := make(map[string]struct{}, len(upd.RequestIDs))
	for _, id := range upd.RequestIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	result := &model.StatusUpdateResult{
		Confirmed: []model.Request{},
		Rejected:  []model.Request{},
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := ensureUser(ctx, tx, callerID); err != nil {
			return err
		}
		event, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event.InitiatorID != callerID {
			return apperr.Forbidden(
				"you are not the initiator of event %s", eventID)
		}
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			return apperr.Conflict(
				"request moderation is off or participant limit is 0")
		}
		if event.ConfirmedRequests >= event.ParticipantLimit {
			return apperr.Conflict("participant limit exceeded")
		}

		requests, err := tx.Requests().GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for i := range requests {
			if requests[i].Status != model.RequestPending {
				return apperr.Conflict("all requests must have status PENDING")
			}
		}

		if upd.Status == model.RequestConfirmed {
			for i := range requests {
				if event.ConfirmedRequests < event.ParticipantLimit {
					requests[i].Status = model.RequestConfirmed
					event.ConfirmedRequests++
					result.Confirmed = append(result.Confirmed, requests[i])
				} else {
					requests[i].Status = model.RequestRejected
					result.Rejected = append(result.Rejected, requests[i])
				}
			}
		} else {
			for i := range requests {
				requests[i].Status = model.RequestRejected
			}
			result.Rejected = append(result.Rejected, requests...)
		}

		if err := tx.Requests().UpdateAll(ctx, requests); err != nil {
			return err
		}
		return tx.Events().Update(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("request batch processed",
		"event_id", eventID, "target", upd.Status,
		"confirmed", len(result.Confirmed), "rejected", len(result.Rejected))
	return result, nil
}

// ListByRequester returns every request the user has filed.
func (s *RequestService) ListByRequester(ctx context.Context, userID string) ([]model.Request, error) {
	if err := ensureUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	return s.store.Requests().ListByRequester(ctx, userID)
}

// ListForEvent returns the requests for an event; initiator only.
func (s *RequestService) ListForEvent(ctx context.Context, callerID, eventID string) ([]model.Request, error) {
	if err := ensureUser(ctx, s.store, callerID); err != nil {
		return nil, err
	}
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != callerID {
		return nil, apperr.Forbidden(
			"you are not the initiator of event %s", eventID)
	}
	return s.store.Requests().ListByEvent(ctx, eventID)
}

// Reconcile recomputes the cached confirmed counter from the request
// rows inside the event lock. Intended for repair after manual data
// surgery and as a testing aid; the fast path never needs it.
func (s *RequestService) Reconcile(ctx context.Context, eventID string) (*model.Event, error) {
	var out *model.Event
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		event, err := tx.Events().GetForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		n, err := tx.Requests().CountConfirmed(ctx, eventID)
		if err != nil {
			return err
		}
		if n != event.ConfirmedRequests {
			slog.Warn("confirmed counter drift repaired",
				"event_id", eventID, "cached", event.ConfirmedRequests, "actual", n)
			event.ConfirmedRequests = n
			if err := tx.Events().Update(ctx, event); err != nil {
				return err
			}
		}
		out = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
