package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type CreateLeaveTypeRequest struct {
	Name            string           `json:"name" validate:"required,max=50"`
	Code            string           `json:"code" validate:"required,max=10"`
	Description     string           `json:"description"`
	AnnualQuota     decimal.Decimal  `json:"annual_quota"`
	MonthlyQuota    *decimal.Decimal `json:"monthly_quota,omitempty"`
	IsCarryForward  bool             `json:"is_carry_forward"`
	MaxCarryForward decimal.Decimal  `json:"max_carry_forward"`
	IsPaid          *bool            `json:"is_paid,omitempty"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	errs := validator.Struct(r)
	if r.AnnualQuota.IsNegative() {
		errs.Add("annual_quota", "annual_quota must not be negative")
	}
	if r.MonthlyQuota != nil && r.MonthlyQuota.IsNegative() {
		errs.Add("monthly_quota", "monthly_quota must not be negative")
	}
	if r.MaxCarryForward.IsNegative() {
		errs.Add("max_carry_forward", "max_carry_forward must not be negative")
	}
	return errs.Err()
}

type UpdateLeaveTypeRequest struct {
	ID              string           `json:"-"`
	Name            *string          `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Description     *string          `json:"description,omitempty"`
	AnnualQuota     *decimal.Decimal `json:"annual_quota,omitempty"`
	MonthlyQuota    *decimal.Decimal `json:"monthly_quota,omitempty"`
	IsCarryForward  *bool            `json:"is_carry_forward,omitempty"`
	MaxCarryForward *decimal.Decimal `json:"max_carry_forward,omitempty"`
	IsPaid          *bool            `json:"is_paid,omitempty"`
	IsActive        *bool            `json:"is_active,omitempty"`
}

func (r *UpdateLeaveTypeRequest) Validate() error {
	errs := validator.Struct(r)
	for field, v := range map[string]*decimal.Decimal{
		"annual_quota":      r.AnnualQuota,
		"monthly_quota":     r.MonthlyQuota,
		"max_carry_forward": r.MaxCarryForward,
	} {
		if v != nil && v.IsNegative() {
			errs.Add(field, field+" must not be negative")
		}
	}
	return errs.Err()
}

type LeaveTypeResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	AnnualQuota     decimal.Decimal `json:"annual_quota"`
	MonthlyQuota    decimal.Decimal `json:"monthly_quota"`
	IsCarryForward  bool            `json:"is_carry_forward"`
	MaxCarryForward decimal.Decimal `json:"max_carry_forward"`
	IsPaid          bool            `json:"is_paid"`
	IsActive        bool            `json:"is_active"`
}

func ToLeaveTypeResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:              t.ID,
		Name:            t.Name,
		Code:            t.Code,
		Description:     t.Description,
		AnnualQuota:     t.AnnualQuota,
		MonthlyQuota:    t.MonthlyQuota,
		IsCarryForward:  t.IsCarryForward,
		MaxCarryForward: t.MaxCarryForward,
		IsPaid:          t.IsPaid,
		IsActive:        t.IsActive,
	}
}

type BalanceResponse struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	UserName       string          `json:"user_name,omitempty"`
	LeaveTypeID    string          `json:"leave_type_id"`
	LeaveTypeCode  string          `json:"leave_type_code"`
	LeaveTypeName  string          `json:"leave_type_name"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	TotalLeaves    decimal.Decimal `json:"total_leaves"`
	UsedLeaves     decimal.Decimal `json:"used_leaves"`
	CarriedForward decimal.Decimal `json:"carried_forward"`
	LOPDays        decimal.Decimal `json:"lop_days"`
	ConvertedDays  decimal.Decimal `json:"converted_days"`
	HeldDays       decimal.Decimal `json:"held_days"`
	Available      decimal.Decimal `json:"available_leaves"`
}

func ToBalanceResponse(b LeaveBalance, held decimal.Decimal) BalanceResponse {
	return BalanceResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		UserName:       b.UserName,
		LeaveTypeID:    b.LeaveTypeID,
		LeaveTypeCode:  b.LeaveTypeCode,
		LeaveTypeName:  b.LeaveTypeName,
		Year:           b.Year,
		Month:          b.Month,
		TotalLeaves:    b.TotalLeaves,
		UsedLeaves:     b.UsedLeaves,
		CarriedForward: b.CarriedForward,
		LOPDays:        b.LOPDays,
		ConvertedDays:  b.ConvertedDays,
		HeldDays:       held,
		Available:      decimal.Max(decimal.Zero, b.Remaining().Sub(held)),
	}
}

type MyBalanceResponse struct {
	Year             int               `json:"year"`
	Month            int               `json:"month"`
	Balances         []BalanceResponse `json:"balances"`
	CompOffAvailable decimal.Decimal   `json:"comp_off_available"`
}

type BalanceFilter struct {
	UserID      *string
	LeaveTypeID *string
	Year        *int
	Month       *int
	Page        int
	Limit       int
}

type ListBalanceResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Balances   []BalanceResponse `json:"balances"`
}

type UpdateBalanceRequest struct {
	ID             string           `json:"-"`
	TotalLeaves    *decimal.Decimal `json:"total_leaves,omitempty"`
	UsedLeaves     *decimal.Decimal `json:"used_leaves,omitempty"`
	CarriedForward *decimal.Decimal `json:"carried_forward,omitempty"`
	LOPDays        *decimal.Decimal `json:"lop_days,omitempty"`
}

func (r *UpdateBalanceRequest) Validate() error {
	var errs validator.ValidationErrors
	for field, v := range map[string]*decimal.Decimal{
		"total_leaves":    r.TotalLeaves,
		"used_leaves":     r.UsedLeaves,
		"carried_forward": r.CarriedForward,
		"lop_days":        r.LOPDays,
	} {
		if v != nil && v.IsNegative() {
			errs.Add(field, field+" must not be negative")
		}
	}
	return errs.Err()
}

type InitializeBalancesRequest struct {
	Year  int `json:"year" validate:"required,gte=2000,lte=2100"`
	Month int `json:"month" validate:"required,gte=1,lte=12"`
}

func (r *InitializeBalancesRequest) Validate() error {
	return validator.Struct(r).Err()
}

type InitializeBalancesResponse struct {
	Year    int `json:"year"`
	Month   int `json:"month"`
	Created int `json:"created"`
}

type ApplyLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,date"`
	EndDate     string `json:"end_date" validate:"required,date"`
	IsHalfDay   bool   `json:"is_half_day"`
	HalfDayType string `json:"half_day_type" validate:"omitempty,oneof=first_half second_half"`
	Reason      string `json:"reason" validate:"required"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// Validate also parses StartDate and EndDate into Start and End.
func (r *ApplyLeaveRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	r.Start, _ = time.Parse(dateLayout, r.StartDate)
	r.End, _ = time.Parse(dateLayout, r.EndDate)
	if r.End.Before(r.Start) {
		errs.Add("end_date", ErrInvalidDateRange.Error())
	}
	if r.IsHalfDay {
		if !r.Start.Equal(r.End) {
			errs.Add("end_date", ErrHalfDaySingleDate.Error())
		}
		if r.HalfDayType == "" {
			errs.Add("half_day_type", "half_day_type is required for half-day leave")
		}
	}
	return errs.Err()
}

type LeaveRequestResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	UserName      string          `json:"user_name,omitempty"`
	LeaveTypeID   string          `json:"leave_type_id"`
	LeaveTypeCode string          `json:"leave_type_code,omitempty"`
	LeaveTypeName string          `json:"leave_type_name,omitempty"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	IsHalfDay     bool            `json:"is_half_day"`
	HalfDayType   *HalfDayType    `json:"half_day_type,omitempty"`
	TotalDays     decimal.Decimal `json:"total_days"`
	CompOffDays   decimal.Decimal `json:"comp_off_days"`
	PaidDays      decimal.Decimal `json:"paid_days"`
	LOPDays       decimal.Decimal `json:"lop_days"`
	Reason        string          `json:"reason"`
	Status        string          `json:"status"`
	ReviewedBy    *string         `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	ReviewRemarks string          `json:"review_remarks,omitempty"`
	SplitFromID   *string         `json:"split_from_id,omitempty"`
	AppliedAt     time.Time       `json:"applied_at"`
}

func ToRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		UserName:      r.UserName,
		LeaveTypeID:   r.LeaveTypeID,
		LeaveTypeCode: r.LeaveTypeCode,
		LeaveTypeName: r.LeaveTypeName,
		StartDate:     r.StartDate.Format(dateLayout),
		EndDate:       r.EndDate.Format(dateLayout),
		IsHalfDay:     r.IsHalfDay,
		HalfDayType:   r.HalfDayType,
		TotalDays:     r.TotalDays,
		CompOffDays:   r.Allocation.CompOff,
		PaidDays:      r.Allocation.Paid,
		LOPDays:       r.Allocation.LOP,
		Reason:        r.Reason,
		Status:        string(r.Status),
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    r.ReviewedAt,
		ReviewRemarks: r.ReviewRemarks,
		SplitFromID:   r.SplitFromID,
		AppliedAt:     r.AppliedAt,
	}
}

type RequestFilter struct {
	UserID      *string
	Status      *RequestStatus
	LeaveTypeID *string
	From        *time.Time
	To          *time.Time
	Page        int
	Limit       int
}

func (f *RequestFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ListLeaveRequestResponse struct {
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
	Requests   []LeaveRequestResponse `json:"requests"`
}

type ReviewLeaveRequest struct {
	Status  string `json:"status" validate:"required,oneof=approved rejected"`
	Remarks string `json:"review_remarks"`
}

func (r *ReviewLeaveRequest) Validate() error {
	return validator.Struct(r).Err()
}

// AdminUpdateLeaveRequest edits an existing request. When dates change the
// allocation is recomputed unless all three day fields are supplied.
type AdminUpdateLeaveRequest struct {
	ID            string           `json:"-"`
	StartDate     *string          `json:"start_date,omitempty" validate:"omitempty,date"`
	EndDate       *string          `json:"end_date,omitempty" validate:"omitempty,date"`
	CompOffDays   *decimal.Decimal `json:"comp_off_days,omitempty"`
	PaidDays      *decimal.Decimal `json:"paid_days,omitempty"`
	LOPDays       *decimal.Decimal `json:"lop_days,omitempty"`
	Reason        *string          `json:"reason,omitempty"`
	ReviewRemarks *string          `json:"review_remarks,omitempty"`
}

func (r *AdminUpdateLeaveRequest) Validate() error {
	errs := validator.Struct(r)
	set := 0
	for field, v := range map[string]*decimal.Decimal{
		"comp_off_days": r.CompOffDays,
		"paid_days":     r.PaidDays,
		"lop_days":      r.LOPDays,
	} {
		if v == nil {
			continue
		}
		set++
		if v.IsNegative() {
			errs.Add(field, field+" must not be negative")
		}
	}
	if set != 0 && set != 3 {
		errs.Add("allocation", "comp_off_days, paid_days and lop_days must be supplied together")
	}
	return errs.Err()
}

// ManualAllocation returns the explicit allocation if one was supplied.
func (r *AdminUpdateLeaveRequest) ManualAllocation() (Allocation, bool) {
	if r.CompOffDays == nil || r.PaidDays == nil || r.LOPDays == nil {
		return Allocation{}, false
	}
	return Allocation{CompOff: *r.CompOffDays, Paid: *r.PaidDays, LOP: *r.LOPDays}, true
}

// CancelForDateRequest names the day to give back; empty means today.
type CancelForDateRequest struct {
	Date string `json:"date,omitempty" validate:"omitempty,date"`
}

func (r *CancelForDateRequest) Validate() error {
	return validator.Struct(r).Err()
}

// ReconcileResult describes what happened to an approved leave when the user worked on one of its days.
type ReconcileResult struct {
	Action     string                `json:"action"`
	Request    LeaveRequestResponse  `json:"leave_request"`
	NewRequest *LeaveRequestResponse `json:"new_leave_request,omitempty"`
	Restored   Allocation            `json:"restored"`
}

type TodayLeaveResponse struct {
	OnLeave bool                  `json:"on_leave"`
	Request *LeaveRequestResponse `json:"leave_request,omitempty"`
}

type CreateHolidayRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Date        string `json:"date" validate:"required,date"`
	IsOptional  bool   `json:"is_optional"`
	Description string `json:"description"`
}

func (r *CreateHolidayRequest) Validate() error {
	return validator.Struct(r).Err()
}

type UpdateHolidayRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Date        *string `json:"date,omitempty" validate:"omitempty,date"`
	IsOptional  *bool   `json:"is_optional,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (r *UpdateHolidayRequest) Validate() error {
	return validator.Struct(r).Err()
}

type HolidayResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	IsOptional  bool   `json:"is_optional"`
	Description string `json:"description"`
}

func ToHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:          h.ID,
		Name:        h.Name,
		Date:        h.Date.Format(dateLayout),
		IsOptional:  h.IsOptional,
		Description: h.Description,
	}
}
