package user

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID             string  `json:"id"`
	Mobile         string  `json:"mobile"`
	Email          *string `json:"email,omitempty"`
	Name           string  `json:"name"`
	Role           string  `json:"role"`
	Department     string  `json:"department"`
	Designation    string  `json:"designation"`
	WeeklyOff      int     `json:"weekly_off"`
	ShiftID        *string `json:"shift_id,omitempty"`
	PhotoURL       *string `json:"photo_url,omitempty"`
	IsActive       bool    `json:"is_active"`
	IsPermanentWFH bool    `json:"is_permanent_wfh"`
	JoinedAt       string  `json:"joined_at"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Mobile:         u.Mobile,
		Email:          u.Email,
		Name:           u.Name,
		Role:           string(u.Role),
		Department:     u.Department,
		Designation:    u.Designation,
		WeeklyOff:      int(u.WeeklyOff),
		ShiftID:        u.ShiftID,
		PhotoURL:       u.PhotoURL,
		IsActive:       u.IsActive,
		IsPermanentWFH: u.IsPermanentWFH,
		JoinedAt:       u.JoinedAt.Format(time.RFC3339),
	}
}

type UserFilter struct {
	Search   string
	Role     *Role
	IsActive *bool
	Page     int
	Limit    int
}

func (f *UserFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ListUserResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Users      []UserResponse `json:"users"`
}

// CreateUserRequest is used by admins to onboard an employee.
type CreateUserRequest struct {
	Mobile         string  `json:"mobile" validate:"required"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Name           string  `json:"name" validate:"required,max=100"`
	Password       string  `json:"password" validate:"required,min=8"`
	Role           string  `json:"role" validate:"omitempty,oneof=admin employee"`
	Department     string  `json:"department" validate:"max=100"`
	Designation    string  `json:"designation" validate:"max=100"`
	WeeklyOff      *int    `json:"weekly_off,omitempty" validate:"omitempty,gte=0,lte=6"`
	ShiftID        *string `json:"shift_id,omitempty"`
	JoinedAt       *string `json:"joined_at,omitempty" validate:"omitempty,date"`
	IsPermanentWFH bool    `json:"is_permanent_wfh"`
}

func (r *CreateUserRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Mobile != "" && !validator.IsValidMobile(r.Mobile) {
		errs.Add("mobile", "invalid mobile number")
	}
	return errs.Err()
}

// UpdateUserRequest is a partial admin update. Nil fields are left untouched.
type UpdateUserRequest struct {
	ID             string  `json:"-"`
	Mobile         *string `json:"mobile,omitempty"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Role           *string `json:"role,omitempty" validate:"omitempty,oneof=admin employee"`
	Department     *string `json:"department,omitempty" validate:"omitempty,max=100"`
	Designation    *string `json:"designation,omitempty" validate:"omitempty,max=100"`
	WeeklyOff      *int    `json:"weekly_off,omitempty" validate:"omitempty,gte=0,lte=6"`
	ShiftID        *string `json:"shift_id,omitempty"`
	ClearShift     bool    `json:"clear_shift"`
	IsActive       *bool   `json:"is_active,omitempty"`
	IsPermanentWFH *bool   `json:"is_permanent_wfh,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	errs := validator.Struct(r)
	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Mobile != nil && !validator.IsValidMobile(*r.Mobile) {
		errs.Add("mobile", "invalid mobile number")
	}
	return errs.Err()
}

// UpdateProfileRequest is the subset of fields an admin may change directly on their own profile.
type UpdateProfileRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
}

func (r *UpdateProfileRequest) Validate() error {
	return validator.Struct(r).Err()
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (r *ChangePasswordRequest) Validate() error {
	errs := validator.Struct(r)
	if r.OldPassword != "" && r.OldPassword == r.NewPassword {
		errs.Add("new_password", "new_password must differ from old_password")
	}
	return errs.Err()
}

// SubmitProfileUpdateRequest proposes new values for the caller's own profile.
type SubmitProfileUpdateRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Reason string  `json:"reason" validate:"max=500"`
}

func (r *SubmitProfileUpdateRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Name == nil && r.Email == nil {
		errs.Add("name", "name or email is required")
	}
	return errs.Err()
}

type ReviewProfileUpdateRequest struct {
	Status  string `json:"status" validate:"required,oneof=approved rejected"`
	Remarks string `json:"review_remarks"`
}

func (r *ReviewProfileUpdateRequest) Validate() error {
	return validator.Struct(r).Err()
}

type ProfileUpdateFilter struct {
	UserID *string
	Status *ProfileUpdateStatus
	Page   int
	Limit  int
}

func (f *ProfileUpdateFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ProfileUpdateResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	UserName       string     `json:"user_name,omitempty"`
	RequestedName  *string    `json:"requested_name,omitempty"`
	RequestedEmail *string    `json:"requested_email,omitempty"`
	ChangedFields  []string   `json:"changed_fields"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	ReviewedBy     *string    `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewRemarks  string     `json:"review_remarks,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func ToProfileUpdateResponse(r ProfileUpdateRequest) ProfileUpdateResponse {
	changed := r.ChangedFields
	if changed == nil {
		changed = []string{}
	}
	return ProfileUpdateResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		UserName:       r.UserName,
		RequestedName:  r.RequestedName,
		RequestedEmail: r.RequestedEmail,
		ChangedFields:  changed,
		Reason:         r.Reason,
		Status:         string(r.Status),
		ReviewedBy:     r.ReviewedBy,
		ReviewedAt:     r.ReviewedAt,
		ReviewRemarks:  r.ReviewRemarks,
		CreatedAt:      r.CreatedAt,
	}
}

type ListProfileUpdateResponse struct {
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
	Requests   []ProfileUpdateResponse `json:"requests"`
}
