package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestAccessExp  = "1h"
	handlerTestRefreshExp = "24h"
	handlerTestSecret     = "test-secret-key-for-jwt"
	handlerTestFrontend   = "http://localhost:3000"
)

type fakeAuthService struct {
	loginErr     error
	lastSession  auth.SessionTrackingRequest
	loggedOut    string
	refreshedFor string
	callbackCode string
}

func (f *fakeAuthService) tokens() auth.TokenResponse {
	return auth.TokenResponse{
		AccessToken:           "access-token",
		AccessTokenExpiresIn:  3600,
		RefreshToken:          "refresh-token",
		RefreshTokenExpiresIn: 4102444800,
		User:                  user.UserResponse{ID: "u-1", Name: "Asha"},
	}
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	f.lastSession = session
	if f.loginErr != nil {
		return auth.TokenResponse{}, f.loginErr
	}
	return f.tokens(), nil
}

func (f *fakeAuthService) AdminSignup(ctx context.Context, req auth.AdminSignupRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	return f.tokens(), nil
}

func (f *fakeAuthService) CheckAdmin(ctx context.Context) (auth.CheckAdminResponse, error) {
	return auth.CheckAdminResponse{}, nil
}

func (f *fakeAuthService) GoogleRedirectURL(userAgent string) (string, string, error) {
	return "https://accounts.google.com/o/oauth2/auth?state=abc", "abc", nil
}

func (f *fakeAuthService) OAuthCallbackGoogle(ctx context.Context, code string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	f.callbackCode = code
	return f.tokens(), nil
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) error {
	f.loggedOut = refreshToken
	return nil
}

func (f *fakeAuthService) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	f.refreshedFor = req.RefreshToken
	return auth.AccessTokenResponse{AccessToken: "new-access", AccessTokenExpiresIn: 3600}, nil
}

func createAuthHandler(t *testing.T, svc auth.AuthService) AuthHandler {
	t.Helper()
	jwtSvc, err := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp, handlerTestRefreshExp, false)
	require.NoError(t, err)
	return NewAuthHandler(jwtSvc, svc, handlerTestFrontend, false)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &fakeAuthService{}
	handler := createAuthHandler(t, svc)

	body, _ := json.Marshal(auth.LoginRequest{Mobile: "+919876543210", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	assert.True(t, resp["success"].(bool))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "access-token", data["access_token"])

	cookie := findCookie(w, "refresh_token")
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	assert.Equal(t, "10.1.2.3", svc.lastSession.IPAddress)
	assert.Equal(t, "test-agent", svc.lastSession.UserAgent)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler := createAuthHandler(t, &fakeAuthService{loginErr: auth.ErrInvalidCredentials})

	body, _ := json.Marshal(auth.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeBody(t, w)
	assert.False(t, resp["success"].(bool))
	assert.Nil(t, findCookie(w, "refresh_token"))
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	handler := createAuthHandler(t, &fakeAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("invalid json"))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_MissingIdentifier(t *testing.T) {
	handler := createAuthHandler(t, &fakeAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"password123"}`))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuthHandler_LoginWithGoogle_Redirect(t *testing.T) {
	handler := createAuthHandler(t, &fakeAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login/oauth/google", nil)
	w := httptest.NewRecorder()

	handler.LoginWithGoogle(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	cookie := findCookie(w, "state")
	require.NotNil(t, cookie)
	assert.Equal(t, "abc", cookie.Value)
	assert.Contains(t, w.Header().Get("Location"), "accounts.google.com")
}

func TestAuthHandler_OAuthCallbackGoogle(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		stateCookie string
		wantInLoc   string
	}{
		{name: "provider error", query: "error=access_denied", stateCookie: "abc", wantInLoc: "error=access_denied"},
		{name: "missing cookie", query: "state=abc&code=c1", wantInLoc: "error=state_cookie_not_found"},
		{name: "state mismatch", query: "state=zzz&code=c1", stateCookie: "abc", wantInLoc: "error=state_mismatch"},
		{name: "empty code", query: "state=abc", stateCookie: "abc", wantInLoc: "error=code_empty"},
		{name: "success", query: "state=abc&code=c1", stateCookie: "abc", wantInLoc: "access_token=access-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{}
			handler := createAuthHandler(t, svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/callback/google?"+tt.query, nil)
			if tt.stateCookie != "" {
				req.AddCookie(&http.Cookie{Name: "state", Value: tt.stateCookie})
			}
			w := httptest.NewRecorder()

			handler.OAuthCallbackGoogle(w, req)

			assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
			loc, err := url.Parse(w.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "/auth/callback/google", loc.Path)
			assert.Contains(t, loc.RawQuery, tt.wantInLoc)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("cookie", func(t *testing.T) {
		svc := &fakeAuthService{}
		handler := createAuthHandler(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "rt-1"})
		w := httptest.NewRecorder()

		handler.Logout(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rt-1", svc.loggedOut)
		cleared := findCookie(w, "refresh_token")
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
	})

	t.Run("missing token", func(t *testing.T) {
		handler := createAuthHandler(t, &fakeAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		w := httptest.NewRecorder()

		handler.Logout(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_RefreshToken_FromBody(t *testing.T) {
	svc := &fakeAuthService{}
	handler := createAuthHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"rt-body"}`))
	w := httptest.NewRecorder()

	handler.RefreshToken(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "rt-body", svc.refreshedFor)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "new-access", data["access_token"])
}
