package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventum/internal/model"
)

// CreateEvent handles POST /users/{userId}/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req model.NewEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.Create(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListUserEvents handles GET /users/{userId}/events
func (h *Handler) ListUserEvents(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	from, size := pageParams(r)

	events, err := h.events.ListByInitiator(r.Context(), userID, from, size)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetUserEvent handles GET /users/{userId}/events/{eventId}
func (h *Handler) GetUserEvent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")

	event, err := h.events.Get(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PATCH /users/{userId}/events/{eventId}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")

	var patch model.UpdateEventRequest
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.Update(r.Context(), userID, eventID, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ReconcileEvent handles POST /admin/events/{eventId}/reconcile
// Recomputes the cached confirmed counter from the request rows.
func (h *Handler) ReconcileEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.requests.Reconcile(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}
