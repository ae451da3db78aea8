// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventum/internal/apperr"
	"eventum/internal/model"
	"eventum/internal/service"
)

// Handler holds all HTTP handlers for the engagement API.
type Handler struct {
	events   *service.EventService
	requests *service.RequestService
	comments *service.CommentService
	stats    *service.StatsService
	dir      *service.DirectoryService
}

// New constructs a Handler over the service layer.
func New(
	events *service.EventService,
	requests *service.RequestService,
	comments *service.CommentService,
	stats *service.StatsService,
	dir *service.DirectoryService,
) *Handler {
	return &Handler{
		events:   events,
		requests: requests,
		comments: comments,
		stats:    stats,
		dir:      dir,
	}
}

// Routes registers every API route on r. public middleware, when given,
// wraps only the public read surface; the per-user and admin routes
// must never pass through a shared response cache.
func (h *Handler) Routes(r chi.Router, public ...func(http.Handler) http.Handler) {
	r.Get("/health", HealthCheck)

	r.Route("/users/{userId}", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", h.CreateEvent)
			r.Get("/", h.ListUserEvents)
			r.Get("/{eventId}", h.GetUserEvent)
			r.Patch("/{eventId}", h.UpdateEvent)
			r.Get("/{eventId}/requests", h.ListEventRequests)
			r.Patch("/{eventId}/requests", h.UpdateRequestStatuses)
			r.Route("/{eventId}/comments", func(r chi.Router) {
				r.Post("/", h.AddComment)
				r.Get("/", h.ListEventComments)
				r.Patch("/settings", h.UpdateCommentsSetting)
				r.Post("/{commentId}/reply", h.ReplyToComment)
				r.Patch("/{commentId}", h.EditComment)
				r.Patch("/{commentId}/status", h.SetCommentStatus)
			})
		})
		r.Post("/requests", h.AddRequest)
		r.Get("/requests", h.ListUserRequests)
		r.Patch("/requests/{requestId}/cancel", h.CancelRequest)
		r.Get("/comments", h.ListUserComments)
	})

	r.Post("/hit", h.AddHit)
	r.With(public...).Get("/stats", h.GetStats)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/users", h.CreateUser)
		r.Get("/users", h.ListUsers)
		r.Get("/users/{id}", h.GetUser)
		r.Delete("/users/{id}", h.DeleteUser)
		r.Post("/categories", h.CreateCategory)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{id}", h.GetCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)
		r.Post("/events/{eventId}/reconcile", h.ReconcileEvent)
	})
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// writeDomainError maps the engine's typed failures to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case apperr.KindForbidden:
		writeError(w, http.StatusForbidden, err.Error())
	case apperr.KindConflict, apperr.KindDataConflict:
		writeError(w, http.StatusConflict, err.Error())
	case apperr.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pageParams reads the from/size query pair, leaving normalization to
// the service layer.
func pageParams(r *http.Request) (int, int) {
	from, _ := strconv.Atoi(r.URL.Query().Get("from"))
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		size = 0
	}
	return from, size
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
