package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader  = "Idempotency-Key"
	idempotencyPending = "processing"
	maxIdempotencyKey  = 128
)

// storedResponse is what a completed request leaves behind for replays.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Idempotency replays the first response for a repeated Idempotency-Key.
// Keys are scoped per caller and route. A nil client disables the check.
type Idempotency struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewIdempotency(client *redis.Client, prefix string, ttl time.Duration) *Idempotency {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Idempotency{client: client, prefix: prefix, ttl: ttl}
}

func (m *Idempotency) key(r *http.Request, idemKey string) string {
	return m.prefix + "idem:" + UserID(r.Context()) + ":" + r.Method + ":" + r.URL.Path + ":" + idemKey
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (m *Idempotency) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idemKey := r.Header.Get(IdempotencyHeader)
		if m.client == nil || idemKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(idemKey) > maxIdempotencyKey {
			response.BadRequest(w, "Idempotency-Key is too long", nil)
			return
		}

		ctx := r.Context()
		key := m.key(r, idemKey)

		acquired, err := m.client.SetNX(ctx, key, idempotencyPending, m.ttl).Result()
		if err != nil {
			slog.Warn("idempotency store unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if !acquired {
			raw, err := m.client.Get(ctx, key).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				slog.Warn("idempotency lookup failed", "error", err)
			}
			if raw == "" || raw == idempotencyPending {
				response.Conflict(w, "A request with this Idempotency-Key is still in progress")
				return
			}
			var stored storedResponse
			if err := json.Unmarshal([]byte(raw), &stored); err != nil {
				response.Conflict(w, "A request with this Idempotency-Key is still in progress")
				return
			}
			w.Header().Set("Content-Type", stored.ContentType)
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(stored.Status)
			_, _ = w.Write(stored.Body)
			return
		}

		rec := &recorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status == 0 || rec.status >= http.StatusInternalServerError {
			if err := m.client.Del(ctx, key).Err(); err != nil {
				slog.Warn("failed to release idempotency key", "error", err)
			}
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status:      rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.buf.Bytes(),
		})
		if err != nil {
			return
		}
		if err := m.client.Set(ctx, key, string(payload), m.ttl).Err(); err != nil {
			slog.Warn("failed to store idempotent response", "error", err)
		}
	})
}
