package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)
	AdminSignup(ctx context.Context, req AdminSignupRequest, session SessionTrackingRequest) (TokenResponse, error)
	CheckAdmin(ctx context.Context) (CheckAdminResponse, error)
	GoogleRedirectURL(userAgent string) (url string, state string, err error)
	OAuthCallbackGoogle(ctx context.Context, code string, session SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
}
