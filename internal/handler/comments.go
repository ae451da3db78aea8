package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventum/internal/model"
)

// AddComment handles POST /users/{userId}/events/{eventId}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")

	var req model.NewCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.comments.Add(r.Context(), userID, eventID, req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// ReplyToComment handles POST /users/{userId}/events/{eventId}/comments/{commentId}/reply
func (h *Handler) ReplyToComment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")
	commentID := chi.URLParam(r, "commentId")

	var req model.NewCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.comments.Reply(r.Context(), userID, eventID, commentID, req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// EditComment handles PATCH /users/{userId}/events/{eventId}/comments/{commentId}
func (h *Handler) EditComment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")
	commentID := chi.URLParam(r, "commentId")

	var req model.NewCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.comments.Edit(r.Context(), userID, eventID, commentID, req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// SetCommentStatus handles PATCH /users/{userId}/events/{eventId}/comments/{commentId}/status?command=DELETE|RESTORE
func (h *Handler) SetCommentStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")
	commentID := chi.URLParam(r, "commentId")
	cmd := model.CommentCommand(r.URL.Query().Get("command"))
	if cmd == "" {
		writeError(w, http.StatusBadRequest, "command query parameter is required")
		return
	}

	comment, err := h.comments.SetStatus(r.Context(), userID, eventID, commentID, cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// ListEventComments handles GET /users/{userId}/events/{eventId}/comments
func (h *Handler) ListEventComments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")
	from, size := pageParams(r)

	comments, err := h.comments.ListForEvent(r.Context(), userID, eventID, from, size)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// ListUserComments handles GET /users/{userId}/comments?show=ALL|ACTIVE|DELETED
func (h *Handler) ListUserComments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	scope := model.CommentScope(r.URL.Query().Get("show"))
	from, size := pageParams(r)

	comments, err := h.comments.ListByAuthor(r.Context(), userID, scope, from, size)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// UpdateCommentsSetting handles PATCH /users/{userId}/events/{eventId}/comments/settings?command=ENABLE|DISABLE
func (h *Handler) UpdateCommentsSetting(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	eventID := chi.URLParam(r, "eventId")
	cmd := model.CommentsSetting(r.URL.Query().Get("command"))
	if cmd == "" {
		writeError(w, http.StatusBadRequest, "command query parameter is required")
		return
	}

	event, err := h.comments.ToggleSetting(r.Context(), userID, eventID, cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}
