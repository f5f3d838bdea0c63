package middleware

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

const maxCronBody = 1 << 16

// CronSecret accepts the shared secret from the X-Cron-Secret header, the secret
// query parameter or a "secret" field of a JSON body.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get("X-Cron-Secret")
			if given == "" {
				given = r.URL.Query().Get("secret")
			}
			if given == "" && r.Body != nil {
				given = secretFromBody(r)
			}
			if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
				response.HandleError(w, batch.ErrInvalidSecret)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// secretFromBody reads the body and puts it back for the next handler.
func secretFromBody(r *http.Request) string {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCronBody))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload struct {
		Secret string `json:"secret"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Secret
}
