package handler

import (
	"net/http"
	"time"

	"eventum/internal/model"
)

// statsTimeLayout is the timestamp format the collector API speaks.
const statsTimeLayout = "2006-01-02 15:04:05"

// AddHit handles POST /hit
func (h *Handler) AddHit(w http.ResponseWriter, r *http.Request) {
	var req model.NewHitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	hit, err := h.stats.AddHit(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hit)
}

// GetStats handles GET /stats?start=...&end=...&uris=...&unique=true
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := time.Parse(statsTimeLayout, q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start: expected "+statsTimeLayout)
		return
	}
	end, err := time.Parse(statsTimeLayout, q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end: expected "+statsTimeLayout)
		return
	}
	uris := q["uris"]
	unique := q.Get("unique") == "true"

	stats, err := h.stats.GetStats(r.Context(), start, end, uris, unique)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
