package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // HR admin - reviews requests, runs batch jobs
	RoleEmployee Role = "employee" // Regular employee
)

// Weekday follows the Monday-first numbering used for weekly_off (0=Monday, 6=Sunday).
type Weekday int

func (w Weekday) Valid() bool {
	return w >= 0 && w <= 6
}

// FromTime converts a time.Weekday (Sunday=0) to the Monday-first numbering.
func FromTime(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % 7)
}

// TimeWeekday converts back to time.Weekday.
func (w Weekday) TimeWeekday() time.Weekday {
	return time.Weekday((int(w) + 1) % 7)
}

type User struct {
	ID              string
	Mobile          string
	Email           *string
	Name            string
	PasswordHash    *string
	Role            Role
	Department      string
	Designation     string
	WeeklyOff       Weekday
	ShiftID         *string
	PhotoURL        *string
	IsActive        bool
	IsPermanentWFH  bool
	OAuthProvider   *string
	OAuthProviderID *string
	JoinedAt        time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin checks if user is an HR admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type ProfileUpdateStatus string

const (
	ProfileUpdatePending   ProfileUpdateStatus = "pending"
	ProfileUpdateApproved  ProfileUpdateStatus = "approved"
	ProfileUpdateRejected  ProfileUpdateStatus = "rejected"
	ProfileUpdateCancelled ProfileUpdateStatus = "cancelled"
)

// ProfileUpdateRequest is an employee's proposed change to their own name
// or email, applied only when an admin approves it. A nil requested field
// is left unchanged.
type ProfileUpdateRequest struct {
	ID             string
	UserID         string
	RequestedName  *string
	RequestedEmail *string
	ChangedFields  []string
	Reason         string
	Status         ProfileUpdateStatus
	ReviewedBy     *string
	ReviewedAt     *time.Time
	ReviewRemarks  string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO
	UserName string
}
