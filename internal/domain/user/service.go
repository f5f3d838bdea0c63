package user

import (
	"context"
	"io"
)

type UserService interface {
	// Admin
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	UpdateUser(ctx context.Context, actorID string, req UpdateUserRequest) (UserResponse, error)
	GetUser(ctx context.Context, id string) (UserResponse, error)
	ListUsers(ctx context.Context, filter UserFilter) (ListUserResponse, error)
	DeactivateUser(ctx context.Context, actorID, id string) error
	// Self
	GetProfile(ctx context.Context, userID string) (UserResponse, error)
	// UpdateProfile edits the caller's own name and email directly. Only
	// admins may; employees go through ProfileUpdateService.
	UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (UserResponse, error)
	UploadPhoto(ctx context.Context, userID string, file io.Reader, filename string) (UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
}

// ProfileUpdateService runs the employee profile change workflow.
type ProfileUpdateService interface {
	Submit(ctx context.Context, userID string, req SubmitProfileUpdateRequest) (ProfileUpdateResponse, error)
	ListMine(ctx context.Context, userID string, filter ProfileUpdateFilter) (ListProfileUpdateResponse, error)
	Cancel(ctx context.Context, userID, id string) (ProfileUpdateResponse, error)
	List(ctx context.Context, filter ProfileUpdateFilter) (ListProfileUpdateResponse, error)
	// Review applies the requested fields when approving.
	Review(ctx context.Context, reviewerID, id string, req ReviewProfileUpdateRequest) (ProfileUpdateResponse, error)
}
