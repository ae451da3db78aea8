package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"eventum/internal/handler"
	"eventum/internal/model"
)

func newCachedMux(t *testing.T, hits *int) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Write([]byte(`[{"id":"e1"}]`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		*hits++
		http.Error(w, "nope", http.StatusNotFound)
	})
	return handler.ResponseCache(rdb, time.Minute)(mux)
}

func TestResponseCacheServesSecondGetFromRedis(t *testing.T) {
	var hits int
	srv := newCachedMux(t, &hits)

	first := httptest.NewRecorder()
	srv.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/events", nil))
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}

	second := httptest.NewRecorder()
	srv.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/events", nil))
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
	if second.Body.String() != first.Body.String() {
		t.Error("cached body differs from origin body")
	}
	if hits != 1 {
		t.Errorf("origin served %d times, want 1", hits)
	}
}

func TestResponseCacheSkipsWrites(t *testing.T) {
	var hits int
	srv := newCachedMux(t, &hits)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", nil))
		if got := rec.Header().Get("X-Cache"); got != "" {
			t.Errorf("POST %d: X-Cache = %q, want unset", i, got)
		}
	}
	if hits != 2 {
		t.Errorf("origin served %d times, want 2", hits)
	}
}

func TestResponseCacheSkipsErrors(t *testing.T) {
	var hits int
	srv := newCachedMux(t, &hits)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET %d: status = %d, want 404", i, rec.Code)
		}
	}
	// Non-2xx responses are never stored.
	if hits != 2 {
		t.Errorf("origin served %d times, want 2", hits)
	}
}

func TestResponseCacheKeyIncludesQuery(t *testing.T) {
	var hits int
	srv := newCachedMux(t, &hits)

	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events?from=0", nil))
	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events?from=10", nil))
	if hits != 2 {
		t.Errorf("origin served %d times, want 2", hits)
	}
}

func TestResponseCacheScopedToPublicRoutes(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := newAPI(handler.ResponseCache(rdb, time.Minute))
	owner := a.user(t, "owner")
	guest := a.user(t, "guest")
	e := a.event(t, owner.ID, 0)
	a.publish(t, e.ID)

	// The public stats route is cached.
	window := "/stats?start=" + url.QueryEscape(time.Now().UTC().Add(-time.Hour).Format("2006-01-02 15:04:05")) +
		"&end=" + url.QueryEscape(time.Now().UTC().Add(time.Hour).Format("2006-01-02 15:04:05"))
	if rec := a.do(t, http.MethodGet, window, nil); rec.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first stats X-Cache = %q, want MISS", rec.Header().Get("X-Cache"))
	}
	if rec := a.do(t, http.MethodGet, window, nil); rec.Header().Get("X-Cache") != "HIT" {
		t.Errorf("second stats X-Cache = %q, want HIT", rec.Header().Get("X-Cache"))
	}

	// The per-user surface never passes through the cache: a requester
	// who cancels and re-lists sees the cancellation immediately.
	rec := a.do(t, http.MethodPost, "/users/"+guest.ID+"/requests?eventId="+e.ID, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add request: status %d: %s", rec.Code, rec.Body)
	}
	req := decode[model.Request](t, rec)

	rec = a.do(t, http.MethodGet, "/users/"+guest.ID+"/requests", nil)
	if got := rec.Header().Get("X-Cache"); got != "" {
		t.Errorf("user listing X-Cache = %q, want unset", got)
	}

	rec = a.do(t, http.MethodPatch, "/users/"+guest.ID+"/requests/"+req.ID+"/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: status %d: %s", rec.Code, rec.Body)
	}
	rec = a.do(t, http.MethodGet, "/users/"+guest.ID+"/requests", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("relist: status %d", rec.Code)
	}
	got := decode[[]model.Request](t, rec)
	if len(got) != 1 || got[0].Status != model.RequestCanceled {
		t.Errorf("relist = %+v, want the canceled request", got)
	}
}

func TestRateLimiterThrottles(t *testing.T) {
	rl := handler.NewRateLimiter(handler.RateLimiterConfig{RPS: 1, Burst: 2})
	srv := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("burst requests = %v, want first two 200", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", codes[2])
	}

	// A different client gets its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("fresh client = %d, want 200", rec.Code)
	}
}
