package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType is reference data. MonthlyQuota is credited to each month's balance row.
type LeaveType struct {
	ID              string
	Name            string
	Code            string
	Description     string
	AnnualQuota     decimal.Decimal
	MonthlyQuota    decimal.Decimal
	IsCarryForward  bool
	MaxCarryForward decimal.Decimal // 0 means uncapped
	IsPaid          bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CarryForward returns how much of unused rolls into a new year.
func (t LeaveType) CarryForward(unused decimal.Decimal) decimal.Decimal {
	if !t.IsCarryForward || !unused.IsPositive() {
		return decimal.Zero
	}
	if t.MaxCarryForward.IsPositive() && unused.GreaterThan(t.MaxCarryForward) {
		return t.MaxCarryForward
	}
	return unused
}

// LeaveBalance is one (user, leave type, year, month) row.
type LeaveBalance struct {
	ID             string
	UserID         string
	LeaveTypeID    string
	Year           int
	Month          int
	TotalLeaves    decimal.Decimal
	UsedLeaves     decimal.Decimal
	CarriedForward decimal.Decimal
	LOPDays        decimal.Decimal
	ConvertedDays  decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Join
	LeaveTypeCode string
	LeaveTypeName string
	UserName      string
}

// Remaining is total + carried_forward - used - converted, before holds.
func (b LeaveBalance) Remaining() decimal.Decimal {
	return b.TotalLeaves.Add(b.CarriedForward).Sub(b.UsedLeaves).Sub(b.ConvertedDays)
}

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

type HalfDayType string

const (
	FirstHalf  HalfDayType = "first_half"
	SecondHalf HalfDayType = "second_half"
)

// Allocation is the three-way split of a request's days. CompOff+Paid+LOP equals the request total.
type Allocation struct {
	CompOff decimal.Decimal `json:"comp_off_days"`
	Paid    decimal.Decimal `json:"paid_days"`
	LOP     decimal.Decimal `json:"lop_days"`
}

func (a Allocation) Total() decimal.Decimal {
	return a.CompOff.Add(a.Paid).Add(a.LOP)
}

type LeaveRequest struct {
	ID            string
	UserID        string
	LeaveTypeID   string
	StartDate     time.Time
	EndDate       time.Time
	IsHalfDay     bool
	HalfDayType   *HalfDayType
	TotalDays     decimal.Decimal
	Allocation    Allocation
	Reason        string
	Status        RequestStatus
	ReviewedBy    *string
	ReviewedAt    *time.Time
	ReviewRemarks string
	SplitFromID   *string
	AppliedAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	UserName      string
	LeaveTypeCode string
	LeaveTypeName string
}

// Covers reports whether day falls inside the request range.
func (r LeaveRequest) Covers(day time.Time) bool {
	return !day.Before(r.StartDate) && !day.After(r.EndDate)
}

type AllocationSource string

const (
	SourceCompOff AllocationSource = "comp_off"
	SourcePaid    AllocationSource = "paid"
	SourceLOP     AllocationSource = "lop"
)

type AllocationState string

const (
	StateHeld     AllocationState = "held"
	StateConsumed AllocationState = "consumed"
	StateReleased AllocationState = "released"
)

// AllocationEntry links a request to the exact capacity it holds or consumed.
// CompOffID is set for comp_off rows, LeaveBalanceID for paid and lop rows.
type AllocationEntry struct {
	ID             string
	LeaveRequestID string
	UserID         string
	Source         AllocationSource
	CompOffID      *string
	LeaveBalanceID *string
	Days           decimal.Decimal
	State          AllocationState
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Join, comp_off rows only
	CompOffExpiresOn *time.Time
}

type Holiday struct {
	ID          string
	Name        string
	Date        time.Time
	IsOptional  bool
	Description string
	CreatedAt   time.Time
}
