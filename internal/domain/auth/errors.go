package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid mobile/email or password")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrUserNotFound        = errors.New("user not found")
	ErrAdminExists         = errors.New("an admin account already exists")
	ErrOAuthNotConfigured  = errors.New("google sign-in is not configured")
	ErrOAuthEmailUnknown   = errors.New("no active account uses this google email")
	ErrInvalidOAuthState   = errors.New("invalid oauth state")
)
