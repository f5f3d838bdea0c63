package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/oauth"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	jwt.Service
	auth.TokenRepository
	google   oauth.GoogleService
	activity activity.Logger
	now      func() time.Time
}

func NewAuthService(tx database.Transactor, userRepository user.UserRepository, jwtService jwt.Service, tokenRepository auth.TokenRepository, google oauth.GoogleService, activityLogger activity.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		tx:              tx,
		UserRepository:  userRepository,
		Service:         jwtService,
		TokenRepository: tokenRepository,
		google:          google,
		activity:        activityLogger,
		now:             time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// issueTokens signs an access/refresh pair and stores the refresh token.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(u.ID, u.Mobile, u.Role)
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(u.ID)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}
		if err := a.CreateRefreshToken(txCtx, u.ID, resp.RefreshToken, resp.RefreshTokenExpiresIn, session); err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	resp.User = user.ToResponse(u)
	a.activity.Log(ctx, &u.ID, activity.ActionLogin, "user", u.ID, fmt.Sprintf("%s signed in", u.Name))
	return resp, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var (
		u   user.User
		err error
	)
	if req.Mobile != "" {
		u, err = a.UserRepository.GetByMobile(ctx, req.Mobile)
	} else {
		u, err = a.UserRepository.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if u.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !u.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	return a.issueTokens(ctx, u, session)
}

// AdminSignup implements auth.AuthService. It only succeeds while no admin exists.
func (a *AuthServiceImpl) AdminSignup(ctx context.Context, req auth.AdminSignupRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var created user.User
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.tx.Lock(txCtx, "admin-signup"); err != nil {
			return err
		}
		admins, err := a.UserRepository.CountAdmins(txCtx)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins > 0 {
			return auth.ErrAdminExists
		}
		mobileTaken, emailTaken, err := a.UserRepository.ExistsByMobileOrEmail(txCtx, req.Mobile, req.Email, "")
		if err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if mobileTaken {
			return user.ErrMobileExists
		}
		if emailTaken {
			return user.ErrEmailExists
		}

		n := a.now()
		created, err = a.UserRepository.Create(txCtx, user.User{
			Mobile:       req.Mobile,
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: &hashed,
			Role:         user.RoleAdmin,
			WeeklyOff:    user.FromTime(time.Sunday),
			IsActive:     true,
			JoinedAt:     time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	a.activity.Log(ctx, &created.ID, activity.ActionEmployeeCreated, "user", created.ID, "First admin account created")
	return a.issueTokens(ctx, created, session)
}

// CheckAdmin implements auth.AuthService.
func (a *AuthServiceImpl) CheckAdmin(ctx context.Context) (auth.CheckAdminResponse, error) {
	admins, err := a.UserRepository.CountAdmins(ctx)
	if err != nil {
		return auth.CheckAdminResponse{}, fmt.Errorf("failed to count admins: %w", err)
	}
	return auth.CheckAdminResponse{AdminExists: admins > 0}, nil
}

// GoogleRedirectURL implements auth.AuthService.
func (a *AuthServiceImpl) GoogleRedirectURL(userAgent string) (string, string, error) {
	if a.google == nil {
		return "", "", auth.ErrOAuthNotConfigured
	}
	state, err := a.google.GenerateState(userAgent)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return a.google.RedirectURL(state), state, nil
}

// OAuthCallbackGoogle implements auth.AuthService. Only accounts an admin
// already created can sign in with Google; the first sign-in links the account.
func (a *AuthServiceImpl) OAuthCallbackGoogle(ctx context.Context, code string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if a.google == nil {
		return auth.TokenResponse{}, auth.ErrOAuthNotConfigured
	}
	info, err := a.google.Exchange(ctx, code)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := a.UserRepository.GetByEmail(ctx, info.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.TokenResponse{}, auth.ErrOAuthEmailUnknown
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if !u.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	if u.OAuthProviderID == nil {
		if u, err = a.UserRepository.LinkGoogleAccount(ctx, info.GoogleID, info.Email); err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
		}
	} else if *u.OAuthProviderID != info.GoogleID {
		return auth.TokenResponse{}, auth.ErrOAuthEmailUnknown
	}

	return a.issueTokens(ctx, u, session)
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	return a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		_, isRevoked, err := a.TokenRepository.IsRefreshTokenRevoked(txCtx, token)
		if err != nil {
			return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
		}
		if isRevoked {
			return nil
		}
		if err := a.TokenRepository.RevokeRefreshToken(txCtx, token); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		return nil
	})
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if _, err := a.Service.VerifyRefreshToken(req.RefreshToken); err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	userID, isRevoked, err := a.TokenRepository.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !u.IsActive {
		return auth.AccessTokenResponse{}, auth.ErrAccountInactive
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(u.ID, u.Mobile, u.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return resp, nil
}

var _ auth.AuthService = (*AuthServiceImpl)(nil)
