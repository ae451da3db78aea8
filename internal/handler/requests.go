package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventum/internal/model"
)

// AddRequest handles POST /users/{userId}/requests?eventId=...
func (h *Handler) AddRequest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "eventId query parameter is required")
		return
	}

	req, err := h.requests.Add(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListUserRequests handles GET /users/{userId}/requests
func (h *Handler) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	reqs, err := h.requests.ListByRequester(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// CancelRequest handles PATCH /users/{userId}/requests/{requestId}/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	requestID := chi.URLParam(r, "requestId")

	req, err := h.requests.Cancel(r.Context(), userID, requestID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ListEventRequests handles GET /users/{userId}/events/{eventId}/requests
func (h *Handler) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")

	reqs, err := h.requests.ListForEvent(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// UpdateRequestStatuses handles PATCH /users/{userId}/events/{eventId}/requests
func (h *Handler) UpdateRequestStatuses(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")

	var upd model.StatusUpdateRequest
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.requests.UpdateStatuses(r.Context(), userID, eventID, upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
