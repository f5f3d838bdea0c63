package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/rbac"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
}

func withUser(r *http.Request, id string, role user.Role) *http.Request {
	return r.WithContext(WithPrincipal(r.Context(), Principal{UserID: id, Role: role}))
}

func TestAuthRequired(t *testing.T) {
	svc, err := jwt.NewJWTService("test-secret-key-for-jwt", "1h", "24h", false)
	require.NoError(t, err)

	var got Principal
	h := jwtauth.Verifier(svc.JWTAuth())(AuthRequired(svc.JWTAuth())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFrom(r.Context())
	})))

	access, _, err := svc.GenerateAccessToken("u1", "9000000001", user.RoleAdmin)
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken("u1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"access token", access, http.StatusOK},
		{"refresh token rejected", refresh, http.StatusUnauthorized},
		{"missing token", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, Principal{UserID: "u1", Mobile: "9000000001", Role: user.RoleAdmin}, got)
}

func TestRequirePermission(t *testing.T) {
	enforcer, err := rbac.New()
	require.NoError(t, err)

	calls := 0
	h := RequirePermission(enforcer, user.PermissionLeaveApprove)(okHandler(&calls))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/", nil), "u1", user.RoleEmployee))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/", nil), "u2", user.RoleAdmin))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	calls := 0
	h := l.Handler(okHandler(&calls))
	serve := func(id string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/", nil), id, user.RoleEmployee))
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, serve("u1"))
	assert.Equal(t, http.StatusCreated, serve("u1"))
	assert.Equal(t, http.StatusTooManyRequests, serve("u1"))
	assert.Equal(t, http.StatusCreated, serve("u2"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusCreated, serve("u1"))
}

func TestCronSecret(t *testing.T) {
	calls := 0
	h := CronSecret("s3cret")(okHandler(&calls))

	tests := []struct {
		name   string
		build  func() *http.Request
		status int
	}{
		{"header", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/cron/month-end", nil)
			r.Header.Set("X-Cron-Secret", "s3cret")
			return r
		}, http.StatusCreated},
		{"query", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/cron/month-end?secret=s3cret", nil)
		}, http.StatusCreated},
		{"body", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/cron/month-end", strings.NewReader(`{"secret":"s3cret"}`))
		}, http.StatusCreated},
		{"wrong", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/cron/month-end", nil)
			r.Header.Set("X-Cron-Secret", "nope")
			return r
		}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.build())
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, 3, calls)
}

func TestCronSecret_EmptyConfigRejects(t *testing.T) {
	calls := 0
	rec := httptest.NewRecorder()
	CronSecret("")(okHandler(&calls)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cron/x?secret=", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, calls)
}

const idemKey = "hris:idem:u1:POST:/api/v1/attendance/punch-in:abc"

func idemRequest() *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/punch-in", nil)
	r.Header.Set(IdempotencyHeader, "abc")
	return withUser(r, "u1", user.RoleEmployee)
}

func TestIdempotency_FirstRequestStored(t *testing.T) {
	client, mock := redismock.NewClientMock()
	m := NewIdempotency(client, "hris:", time.Hour)

	mock.ExpectSetNX(idemKey, idempotencyPending, time.Hour).SetVal(true)
	mock.Regexp().ExpectSet(regexp.QuoteMeta(idemKey), `.+`, time.Hour).SetVal("OK")

	calls := 0
	rec := httptest.NewRecorder()
	m.Handler(okHandler(&calls)).ServeHTTP(rec, idemRequest())

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_Replay(t *testing.T) {
	client, mock := redismock.NewClientMock()
	m := NewIdempotency(client, "hris:", time.Hour)

	stored, err := json.Marshal(storedResponse{Status: http.StatusCreated, ContentType: "application/json", Body: []byte(`{"success":true}`)})
	require.NoError(t, err)
	mock.ExpectSetNX(idemKey, idempotencyPending, time.Hour).SetVal(false)
	mock.ExpectGet(idemKey).SetVal(string(stored))

	calls := 0
	rec := httptest.NewRecorder()
	m.Handler(okHandler(&calls)).ServeHTTP(rec, idemRequest())

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Zero(t, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InProgress(t *testing.T) {
	client, mock := redismock.NewClientMock()
	m := NewIdempotency(client, "hris:", time.Hour)

	mock.ExpectSetNX(idemKey, idempotencyPending, time.Hour).SetVal(false)
	mock.ExpectGet(idemKey).SetVal(idempotencyPending)

	calls := 0
	rec := httptest.NewRecorder()
	m.Handler(okHandler(&calls)).ServeHTTP(rec, idemRequest())

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, calls)
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	client, mock := redismock.NewClientMock()
	m := NewIdempotency(client, "hris:", time.Hour)

	mock.ExpectSetNX(idemKey, idempotencyPending, time.Hour).SetVal(true)
	mock.ExpectDel(idemKey).SetVal(1)

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	rec := httptest.NewRecorder()
	m.Handler(failing).ServeHTTP(rec, idemRequest())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_DisabledWithoutClientOrHeader(t *testing.T) {
	calls := 0
	rec := httptest.NewRecorder()
	NewIdempotency(nil, "", 0).Handler(okHandler(&calls)).ServeHTTP(rec, idemRequest())
	assert.Equal(t, 1, calls)

	client, mock := redismock.NewClientMock()
	r := withUser(httptest.NewRequest(http.MethodPost, "/x", nil).WithContext(context.Background()), "u1", user.RoleEmployee)
	NewIdempotency(client, "", 0).Handler(okHandler(&calls)).ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_RetryAfterReflectsRefill(t *testing.T) {
	l := NewRateLimiter(0.25, 1)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	calls := 0
	h := l.Handler(okHandler(&calls))
	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/", nil), "u1", user.RoleEmployee))
		return rec
	}

	assert.Equal(t, http.StatusCreated, serve().Code)
	rejected := serve()
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.Equal(t, "4", rejected.Header().Get("Retry-After"))

	now = now.Add(4 * time.Second)
	assert.Equal(t, http.StatusCreated, serve().Code)
	assert.Equal(t, 2, calls)
}
