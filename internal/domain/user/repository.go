package user

import (
	"context"
)

type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByMobile(ctx context.Context, mobile string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByIDs(ctx context.Context, ids []string) ([]User, error)
	ExistsByMobileOrEmail(ctx context.Context, mobile string, email *string, excludeID string) (mobileTaken bool, emailTaken bool, err error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ListActive(ctx context.Context) ([]User, error)
	ListAdmins(ctx context.Context) ([]User, error)
	CountAdmins(ctx context.Context) (int64, error)
	Update(ctx context.Context, req UpdateUserRequest) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdatePhoto(ctx context.Context, userID, photoURL string) error
	LinkGoogleAccount(ctx context.Context, googleID, email string) (User, error)
	Deactivate(ctx context.Context, id string) error
}

type ProfileUpdateRepository interface {
	Create(ctx context.Context, req ProfileUpdateRequest) (ProfileUpdateRequest, error)
	GetByID(ctx context.Context, id string) (ProfileUpdateRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (ProfileUpdateRequest, error)
	HasPending(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, filter ProfileUpdateFilter) ([]ProfileUpdateRequest, int64, error)
	Update(ctx context.Context, req ProfileUpdateRequest) error
}
