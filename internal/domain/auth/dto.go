package auth

import (
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// LoginRequest accepts either a mobile number or an email as identifier.
type LoginRequest struct {
	Mobile   string `json:"mobile" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,max=255"`
}

func (r *LoginRequest) Validate() error {
	return validator.Struct(r).Err()
}

// Identifier returns the mobile when present, otherwise the email.
func (r *LoginRequest) Identifier() string {
	if r.Mobile != "" {
		return r.Mobile
	}
	return r.Email
}

// AdminSignupRequest bootstraps the first admin account.
type AdminSignupRequest struct {
	Name            string  `json:"name" validate:"required,max=100"`
	Mobile          string  `json:"mobile" validate:"required"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Password        string  `json:"password" validate:"required,min=8,max=255"`
	ConfirmPassword string  `json:"confirm_password" validate:"required"`
}

func (r *AdminSignupRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Mobile != "" && !validator.IsValidMobile(r.Mobile) {
		errs.Add("mobile", "invalid mobile number")
	}
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		errs.Add("confirm_password", "password and confirm_password do not match")
	}
	return errs.Err()
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r *RefreshTokenRequest) Validate() error {
	return validator.Struct(r).Err()
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string            `json:"access_token"`
	AccessTokenExpiresIn  int64             `json:"access_token_expires_in"`
	RefreshToken          string            `json:"refresh_token"`
	RefreshTokenExpiresIn int64             `json:"refresh_token_expires_in"`
	User                  user.UserResponse `json:"user"`
}

type AccessTokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
}

type CheckAdminResponse struct {
	AdminExists bool `json:"admin_exists"`
}
