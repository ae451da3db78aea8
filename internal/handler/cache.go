package handler

import (
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedResponse is the gob-encoded payload stored per cache key.
type cachedResponse struct {
	Status int
	Header map[string][]string
	Body   []byte
}

// cacheKey hashes method, path and query into a bounded redis key.
// Only GETs are cacheable.
func cacheKey(r *http.Request) string {
	if r.Method != http.MethodGet {
		return ""
	}
	sum := sha1.Sum([]byte(r.Method + "|" + r.URL.Path + "|" + r.URL.RawQuery))
	return "cache:http:" + hex.EncodeToString(sum[:])
}

type bufferedWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bufferedWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// ResponseCache serves cacheable GETs from redis and stores 2xx
// responses for ttl. Stale entries simply expire; mutations do not
// invalidate eagerly, so ttl bounds the staleness window.
func ResponseCache(rdb *redis.Client, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cacheKey(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if b, err := rdb.Get(r.Context(), key).Bytes(); err == nil && len(b) > 0 {
				var hit cachedResponse
				if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
					for k, vals := range hit.Header {
						for _, v := range vals {
							w.Header().Add(k, v)
						}
					}
					w.Header().Set("X-Cache", "HIT")
					w.WriteHeader(hit.Status)
					_, _ = w.Write(hit.Body)
					return
				}
			}

			bw := &bufferedWriter{ResponseWriter: w}
			bw.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(bw, r)

			if bw.status >= 200 && bw.status < 300 {
				item := cachedResponse{
					Status: bw.status,
					Header: bw.Header(),
					Body:   bw.buf.Bytes(),
				}
				var out bytes.Buffer
				if err := gob.NewEncoder(&out).Encode(item); err == nil {
					_ = rdb.Set(r.Context(), key, out.Bytes(), ttl).Err()
				}
			}
		})
	}
}
