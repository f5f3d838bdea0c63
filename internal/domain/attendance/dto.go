package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// PunchRequest is the body of punch-in and punch-out. ClientIP is filled by the handler.
type PunchRequest struct {
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Notes     string   `json:"notes" validate:"max=500"`

	ClientIP string `json:"-"`
}

func (r *PunchRequest) Validate() error {
	errs := validator.Struct(r)
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs.Add("longitude", "latitude and longitude must be sent together")
	}
	return errs.Err()
}

type AttendanceResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	UserName          string          `json:"user_name,omitempty"`
	Date              string          `json:"date"`
	PunchIn           *time.Time      `json:"punch_in,omitempty"`
	PunchOut          *time.Time      `json:"punch_out,omitempty"`
	PunchInLatitude   *float64        `json:"punch_in_latitude,omitempty"`
	PunchInLongitude  *float64        `json:"punch_in_longitude,omitempty"`
	PunchOutLatitude  *float64        `json:"punch_out_latitude,omitempty"`
	PunchOutLongitude *float64        `json:"punch_out_longitude,omitempty"`
	PunchInIP         *string         `json:"punch_in_ip,omitempty"`
	PunchOutIP        *string         `json:"punch_out_ip,omitempty"`
	WorkingHours      decimal.Decimal `json:"working_hours"`
	Status            string          `json:"status"`
	ComputedStatus    string          `json:"computed_status"`
	StatusOverride    *string         `json:"status_override,omitempty"`
	IsOffDay          bool            `json:"is_off_day"`
	IsWFH             bool            `json:"is_wfh"`
	IsAutoPunchOut    bool            `json:"is_auto_punch_out"`
	IsLate            bool            `json:"is_late"`
	Notes             string          `json:"notes"`
}

func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                a.ID,
		UserID:            a.UserID,
		UserName:          a.UserName,
		Date:              a.Date.Format(dateLayout),
		PunchIn:           a.PunchIn,
		PunchOut:          a.PunchOut,
		PunchInLatitude:   a.PunchInLatitude,
		PunchInLongitude:  a.PunchInLongitude,
		PunchOutLatitude:  a.PunchOutLatitude,
		PunchOutLongitude: a.PunchOutLongitude,
		PunchInIP:         a.PunchInIP,
		PunchOutIP:        a.PunchOutIP,
		WorkingHours:      a.WorkingHours,
		Status:            string(a.EffectiveStatus()),
		ComputedStatus:    string(a.Status),
		IsOffDay:          a.IsOffDay,
		IsWFH:             a.IsWFH,
		IsAutoPunchOut:    a.IsAutoPunchOut,
		IsLate:            a.IsLate,
		Notes:             a.Notes,
	}
	if a.StatusOverride != nil {
		s := string(*a.StatusOverride)
		resp.StatusOverride = &s
	}
	return resp
}

type PunchInResponse struct {
	Attendance      AttendanceResponse     `json:"attendance"`
	LeaveAdjustment *leave.ReconcileResult `json:"leave_adjustment,omitempty"`
}

type PunchOutResponse struct {
	Attendance    AttendanceResponse       `json:"attendance"`
	CompOffEarned *compoff.CompOffResponse `json:"comp_off_earned,omitempty"`
}

type TodayResponse struct {
	Date        string              `json:"date"`
	Attendance  *AttendanceResponse `json:"attendance,omitempty"`
	IsOffDay    bool                `json:"is_off_day"`
	IsHoliday   bool                `json:"is_holiday"`
	HolidayName string              `json:"holiday_name,omitempty"`
	IsWFH       bool                `json:"is_wfh"`
	OnLeave     bool                `json:"on_leave"`
}

type AttendanceFilter struct {
	UserID *string
	Status *Status
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

func (f *AttendanceFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// UpdateAttendanceRequest is an admin correction. Times are RFC3339.
type UpdateAttendanceRequest struct {
	ID             string  `json:"-"`
	StatusOverride *string `json:"status_override,omitempty" validate:"omitempty,oneof=present absent half_day on_leave"`
	ClearOverride  bool    `json:"clear_override"`
	PunchIn        *string `json:"punch_in,omitempty"`
	PunchOut       *string `json:"punch_out,omitempty"`
	Notes          *string `json:"notes,omitempty"`

	PunchInTime  *time.Time `json:"-"`
	PunchOutTime *time.Time `json:"-"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	errs := validator.Struct(r)
	if r.StatusOverride != nil && r.ClearOverride {
		errs.Add("clear_override", "cannot set and clear status_override together")
	}
	if r.PunchIn != nil {
		t, ok := validator.IsValidDateTime(*r.PunchIn)
		if !ok {
			errs.Add("punch_in", "punch_in must be an RFC3339 timestamp")
		} else {
			r.PunchInTime = &t
		}
	}
	if r.PunchOut != nil {
		t, ok := validator.IsValidDateTime(*r.PunchOut)
		if !ok {
			errs.Add("punch_out", "punch_out must be an RFC3339 timestamp")
		} else {
			r.PunchOutTime = &t
		}
	}
	if r.PunchInTime != nil && r.PunchOutTime != nil && !r.PunchOutTime.After(*r.PunchInTime) {
		errs.Add("punch_out", ErrPunchOutBeforeIn.Error())
	}
	return errs.Err()
}

type OffDayStatsResponse struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	OffDaysWorked     int             `json:"off_days_worked"`
	CompOffsEarned    int64           `json:"comp_offs_earned"`
	CompOffDaysEarned decimal.Decimal `json:"comp_off_days_earned"`
	CompOffAvailable  decimal.Decimal `json:"comp_off_available"`
}

// MonthlySummary is one user's aggregated month.
type MonthlySummary struct {
	UserID       string          `json:"user_id"`
	UserName     string          `json:"user_name"`
	Present      int             `json:"present"`
	HalfDay      int             `json:"half_day"`
	Absent       int             `json:"absent"`
	OnLeave      int             `json:"on_leave"`
	OffDayWorked int             `json:"off_day_worked"`
	Late         int             `json:"late"`
	WFH          int             `json:"wfh"`
	TotalHours   decimal.Decimal `json:"total_hours"`
}

type MonthlyReportResponse struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Rows  []MonthlySummary `json:"rows"`
}

type CreateShiftRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	StartTime    string  `json:"start_time" validate:"required,clock"`
	EndTime      string  `json:"end_time" validate:"required,clock"`
	BreakStart   *string `json:"break_start,omitempty" validate:"omitempty,clock"`
	BreakEnd     *string `json:"break_end,omitempty" validate:"omitempty,clock"`
	GraceMinutes int     `json:"grace_minutes" validate:"gte=0,lte=240"`
}

func (r *CreateShiftRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	if (r.BreakStart == nil) != (r.BreakEnd == nil) {
		errs.Add("break_end", "break_start and break_end must be sent together")
	}
	return errs.Err()
}

// ToShift converts the request. Validate must have succeeded.
func (r *CreateShiftRequest) ToShift() (Shift, error) {
	s := Shift{Name: r.Name, GraceMinutes: r.GraceMinutes, IsActive: true}
	s.StartTime, _ = validator.IsValidClock(r.StartTime)
	s.EndTime, _ = validator.IsValidClock(r.EndTime)
	if r.BreakStart != nil && r.BreakEnd != nil {
		bs, _ := validator.IsValidClock(*r.BreakStart)
		be, _ := validator.IsValidClock(*r.BreakEnd)
		s.BreakStart, s.BreakEnd = &bs, &be
	}
	return s, s.Check()
}

// Check enforces window ordering.
func (s Shift) Check() error {
	if s.EndTime <= s.StartTime {
		return ErrInvalidShiftWindow
	}
	if s.BreakStart != nil && s.BreakEnd != nil {
		if *s.BreakEnd <= *s.BreakStart || *s.BreakStart < s.StartTime || *s.BreakEnd > s.EndTime {
			return ErrInvalidBreakWindow
		}
	}
	return nil
}

type UpdateShiftRequest struct {
	ID           string  `json:"-"`
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	StartTime    *string `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime      *string `json:"end_time,omitempty" validate:"omitempty,clock"`
	BreakStart   *string `json:"break_start,omitempty" validate:"omitempty,clock"`
	BreakEnd     *string `json:"break_end,omitempty" validate:"omitempty,clock"`
	ClearBreak   bool    `json:"clear_break"`
	GraceMinutes *int    `json:"grace_minutes,omitempty" validate:"omitempty,gte=0,lte=240"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (r *UpdateShiftRequest) Validate() error {
	return validator.Struct(r).Err()
}

type ShiftResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	BreakStart   *string `json:"break_start,omitempty"`
	BreakEnd     *string `json:"break_end,omitempty"`
	GraceMinutes int     `json:"grace_minutes"`
	IsActive     bool    `json:"is_active"`
}

// FormatClock renders an offset from midnight as HH:MM.
func FormatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func ToShiftResponse(s Shift) ShiftResponse {
	resp := ShiftResponse{
		ID:           s.ID,
		Name:         s.Name,
		StartTime:    FormatClock(s.StartTime),
		EndTime:      FormatClock(s.EndTime),
		GraceMinutes: s.GraceMinutes,
		IsActive:     s.IsActive,
	}
	if s.BreakStart != nil && s.BreakEnd != nil {
		bs, be := FormatClock(*s.BreakStart), FormatClock(*s.BreakEnd)
		resp.BreakStart, resp.BreakEnd = &bs, &be
	}
	return resp
}

type OfficeLocationRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Latitude     float64  `json:"latitude" validate:"latitude"`
	Longitude    float64  `json:"longitude" validate:"longitude"`
	RadiusMeters float64  `json:"radius_meters" validate:"gt=0"`
	AllowedIPs   []string `json:"allowed_ips" validate:"dive,ip"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

func (r *OfficeLocationRequest) Validate() error {
	return validator.Struct(r).Err()
}

type OfficeLocationResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	RadiusMeters float64  `json:"radius_meters"`
	AllowedIPs   []string `json:"allowed_ips"`
	IsActive     bool     `json:"is_active"`
}

func ToLocationResponse(l OfficeLocation) OfficeLocationResponse {
	return OfficeLocationResponse{
		ID:           l.ID,
		Name:         l.Name,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		RadiusMeters: l.RadiusMeters,
		AllowedIPs:   l.AllowedIPs,
		IsActive:     l.IsActive,
	}
}

type RequestFilter struct {
	UserID *string
	Status *RequestStatus
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

func (f *RequestFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type ReviewRequest struct {
	Status  string `json:"status" validate:"required,oneof=approved rejected"`
	Remarks string `json:"review_remarks"`
}

func (r *ReviewRequest) Validate() error {
	return validator.Struct(r).Err()
}

type ApplyRegularizationRequest struct {
	Date              string  `json:"date" validate:"required,date"`
	RequestType       string  `json:"request_type" validate:"required,oneof=missed_punch_in missed_punch_out wrong_punch forgot_punch"`
	RequestedPunchIn  *string `json:"requested_punch_in,omitempty" validate:"omitempty,clock"`
	RequestedPunchOut *string `json:"requested_punch_out,omitempty" validate:"omitempty,clock"`
	Reason            string  `json:"reason" validate:"required"`
}

func (r *ApplyRegularizationRequest) Validate() error {
	errs := validator.Struct(r)
	if len(errs) > 0 {
		return errs
	}
	switch RegularizationType(r.RequestType) {
	case RegularizationMissedPunchIn:
		if r.RequestedPunchIn == nil {
			errs.Add("requested_punch_in", ErrRegularizationTimesRequired.Error())
		}
	case RegularizationMissedPunchOut:
		if r.RequestedPunchOut == nil {
			errs.Add("requested_punch_out", ErrRegularizationTimesRequired.Error())
		}
	default:
		if r.RequestedPunchIn == nil && r.RequestedPunchOut == nil {
			errs.Add("requested_punch_in", ErrRegularizationTimesRequired.Error())
		}
	}
	if r.RequestedPunchIn != nil && r.RequestedPunchOut != nil {
		in, _ := validator.IsValidClock(*r.RequestedPunchIn)
		out, _ := validator.IsValidClock(*r.RequestedPunchOut)
		if out <= in {
			errs.Add("requested_punch_out", ErrPunchOutBeforeIn.Error())
		}
	}
	return errs.Err()
}

type RegularizationResponse struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	UserName          string     `json:"user_name,omitempty"`
	Date              string     `json:"date"`
	RequestType       string     `json:"request_type"`
	RequestedPunchIn  *string    `json:"requested_punch_in,omitempty"`
	RequestedPunchOut *string    `json:"requested_punch_out,omitempty"`
	Reason            string     `json:"reason"`
	Status            string     `json:"status"`
	ReviewedBy        *string    `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
	ReviewRemarks     string     `json:"review_remarks,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func ToRegularizationResponse(r Regularization) RegularizationResponse {
	resp := RegularizationResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		UserName:      r.UserName,
		Date:          r.Date.Format(dateLayout),
		RequestType:   string(r.RequestType),
		Reason:        r.Reason,
		Status:        string(r.Status),
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    r.ReviewedAt,
		ReviewRemarks: r.ReviewRemarks,
		CreatedAt:     r.CreatedAt,
	}
	if r.RequestedPunchIn != nil {
		s := FormatClock(*r.RequestedPunchIn)
		resp.RequestedPunchIn = &s
	}
	if r.RequestedPunchOut != nil {
		s := FormatClock(*r.RequestedPunchOut)
		resp.RequestedPunchOut = &s
	}
	return resp
}

type ListRegularizationResponse struct {
	TotalCount int64                    `json:"total_count"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	TotalPages int                      `json:"total_pages"`
	Requests   []RegularizationResponse `json:"requests"`
}

type ApplyWFHRequest struct {
	Date   string `json:"date" validate:"required,date"`
	Reason string `json:"reason" validate:"required"`
}

func (r *ApplyWFHRequest) Validate() error {
	return validator.Struct(r).Err()
}

type WFHResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	UserName      string     `json:"user_name,omitempty"`
	Date          string     `json:"date"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
	ReviewedBy    *string    `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewRemarks string     `json:"review_remarks,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToWFHResponse(w WFHRequest) WFHResponse {
	return WFHResponse{
		ID:            w.ID,
		UserID:        w.UserID,
		UserName:      w.UserName,
		Date:          w.Date.Format(dateLayout),
		Reason:        w.Reason,
		Status:        string(w.Status),
		ReviewedBy:    w.ReviewedBy,
		ReviewedAt:    w.ReviewedAt,
		ReviewRemarks: w.ReviewRemarks,
		CreatedAt:     w.CreatedAt,
	}
}

type ListWFHResponse struct {
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
	Requests   []WFHResponse `json:"requests"`
}

type WFHTodayResponse struct {
	IsWFH   bool         `json:"is_wfh"`
	Request *WFHResponse `json:"request,omitempty"`
}
