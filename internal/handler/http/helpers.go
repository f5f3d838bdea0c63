package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

const maxBodyBytes = 1 << 20

// validatable is implemented by every request DTO.
type validatable interface {
	Validate() error
}

// decodeAndValidate decodes the JSON body into dst and runs its Validate.
// It writes the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst validatable, op string) bool {
	if !decode(w, r, dst, op) {
		return false
	}
	if err := dst.Validate(); err != nil {
		slog.Warn(op+" validate error", "error", err)
		response.HandleError(w, err)
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		slog.Warn(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// currentUser returns the authenticated caller id, writing 401 when absent.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return "", false
	}
	return userID, true
}

func session(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{IPAddress: clientIP(r), UserAgent: r.UserAgent()}
}

// clientIP returns the caller address without port. RealIP middleware has already applied proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func queryBool(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

func queryString(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}

// queryDate parses a YYYY-MM-DD query parameter. ok is false when the value is malformed.
func queryDate(r *http.Request, key string) (*time.Time, bool) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, true
	}
	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// yearMonth reads year and month query params, defaulting to the current month in loc.
// It writes 400 and returns false for a month outside 1..12.
func yearMonth(w http.ResponseWriter, r *http.Request, loc *time.Location) (int, int, bool) {
	now := time.Now().In(loc)
	year, month := queryInt(r, "year", now.Year()), queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 || year < 2000 || year > 9999 {
		response.BadRequest(w, "Invalid year or month", map[string]string{"month": "month must be between 1 and 12"})
		return 0, 0, false
	}
	return year, month, true
}
