package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrMobileExists            = errors.New("mobile number already registered")
	ErrEmailExists             = errors.New("email already registered")
	ErrShiftNotFound           = errors.New("shift not found")
	ErrInvalidPhoto            = errors.New("invalid photo")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCannotDeactivateSelf    = errors.New("admins cannot deactivate their own account")
	ErrWrongPassword           = errors.New("current password is incorrect")

	// Profile update requests
	ErrProfileEditNeedsApproval = errors.New("profile changes must be submitted for approval")
	ErrProfileUpdateNotFound    = errors.New("profile update request not found")
	ErrProfileUpdatePending     = errors.New("a pending profile update request already exists")
	ErrProfileUpdateNoChanges   = errors.New("no changes detected in the submitted data")
	ErrProfileUpdateReviewed    = errors.New("profile update request has already been processed")
	ErrNotProfileUpdateOwner    = errors.New("profile update request belongs to another user")
)
