package oauth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewGoogleService_DisabledWithoutClientID(t *testing.T) {
	assert.Nil(t, NewGoogleService("", "", ""))
}

func TestGenerateState(t *testing.T) {
	svc := NewGoogleService("client", "secret", "http://localhost/callback")

	a, err := svc.GenerateState("Mozilla/5.0")
	require.NoError(t, err)
	b, err := svc.GenerateState("Mozilla/5.0")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	raw, err := base64.URLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), ".Mozilla/5.0"))

	assert.Contains(t, svc.RedirectURL(a), "state="+a)
}

func TestExchange(t *testing.T) {
	verified := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"at","token_type":"Bearer","expires_in":3600}`)
		case "/userinfo":
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			fmt.Fprintf(w, `{"id":"g-1","email":"asha@example.com","name":"Asha","verified_email":%t}`, verified)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc := &GoogleServiceImpl{
		config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		},
		userInfoURL: srv.URL + "/userinfo",
	}

	info, err := svc.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "g-1", info.GoogleID)
	assert.Equal(t, "asha@example.com", info.Email)

	verified = false
	_, err = svc.Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}
