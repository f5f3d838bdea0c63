package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusOnLeave:
		return true
	}
	return false
}

type Attendance struct {
	ID                string
	UserID            string
	Date              time.Time
	PunchIn           *time.Time
	PunchOut          *time.Time
	PunchInLatitude   *float64
	PunchInLongitude  *float64
	PunchOutLatitude  *float64
	PunchOutLongitude *float64
	PunchInIP         *string
	PunchOutIP        *string
	WorkingHours      decimal.Decimal
	Status            Status  // derived from punches or set by leave approval / absence marking
	StatusOverride    *Status // set by regularization approval or admin edit
	IsOffDay          bool
	IsWFH             bool
	IsAutoPunchOut    bool
	IsLate            bool
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	UserName string
}

// EffectiveStatus resolves override ?? computed.
func (a Attendance) EffectiveStatus() Status {
	if a.StatusOverride != nil {
		return *a.StatusOverride
	}
	return a.Status
}

// AppendNote adds a line to Notes.
func (a *Attendance) AppendNote(note string) {
	if a.Notes == "" {
		a.Notes = note
		return
	}
	a.Notes += "\n" + note
}

// Shift is a working window with an optional break. Times are offsets from midnight.
type Shift struct {
	ID           string
	Name         string
	StartTime    time.Duration
	EndTime      time.Duration
	BreakStart   *time.Duration
	BreakEnd     *time.Duration
	GraceMinutes int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OfficeLocation struct {
	ID           string
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	AllowedIPs   []string
	IsActive     bool
	CreatedAt    time.Time
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

type RegularizationType string

const (
	RegularizationMissedPunchIn  RegularizationType = "missed_punch_in"
	RegularizationMissedPunchOut RegularizationType = "missed_punch_out"
	RegularizationWrongPunch     RegularizationType = "wrong_punch"
	RegularizationForgotPunch    RegularizationType = "forgot_punch"
)

type Regularization struct {
	ID                string
	UserID            string
	Date              time.Time
	RequestType       RegularizationType
	RequestedPunchIn  *time.Duration
	RequestedPunchOut *time.Duration
	Reason            string
	Status            RequestStatus
	ReviewedBy        *string
	ReviewedAt        *time.Time
	ReviewRemarks     string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO
	UserName string
}

type WFHRequest struct {
	ID            string
	UserID        string
	Date          time.Time
	Reason        string
	Status        RequestStatus
	ReviewedBy    *string
	ReviewedAt    *time.Time
	ReviewRemarks string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// DTO
	UserName string
}
