package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// PunchIn validates location and network, records the punch and reconciles any approved leave for today
	PunchIn(ctx context.Context, userID string, req PunchRequest) (PunchInResponse, error)

	// PunchOut closes today's session, derives hours and status, and credits off-day work
	PunchOut(ctx context.Context, userID string, req PunchRequest) (PunchOutResponse, error)

	// Today returns today's attendance and calendar context for a user
	Today(ctx context.Context, userID string) (TodayResponse, error)

	// MyAttendance lists a user's rows for a month
	MyAttendance(ctx context.Context, userID string, year, month int) ([]AttendanceResponse, error)

	// OffDayStats summarises off-day work and comp-off credits for a month
	OffDayStats(ctx context.Context, userID string, year, month int) (OffDayStatsResponse, error)

	// ListAttendance retrieves attendance records with filters (admin)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// UpdateAttendance applies an admin correction
	UpdateAttendance(ctx context.Context, actorID string, req UpdateAttendanceRequest) (AttendanceResponse, error)

	// MonthlyReport aggregates all users for a month
	MonthlyReport(ctx context.Context, year, month int) (MonthlyReportResponse, error)

	// AutoPunchOut closes every open session of date at the configured hour
	AutoPunchOut(ctx context.Context, date time.Time) ([]Attendance, error)

	// MarkAbsent creates absent rows for users with no punch, leave, wfh or holiday on date
	MarkAbsent(ctx context.Context, date time.Time) (int, error)
}

type ShiftService interface {
	CreateShift(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)
	ListShifts(ctx context.Context) ([]ShiftResponse, error)
	DeleteShift(ctx context.Context, id string) error

	CreateLocation(ctx context.Context, req OfficeLocationRequest) (OfficeLocationResponse, error)
	UpdateLocation(ctx context.Context, id string, req OfficeLocationRequest) (OfficeLocationResponse, error)
	ListLocations(ctx context.Context) ([]OfficeLocationResponse, error)
	DeleteLocation(ctx context.Context, id string) error
}

type RegularizationService interface {
	Apply(ctx context.Context, userID string, req ApplyRegularizationRequest) (RegularizationResponse, error)
	ListMine(ctx context.Context, userID string, filter RequestFilter) (ListRegularizationResponse, error)
	Cancel(ctx context.Context, userID, id string) (RegularizationResponse, error)
	List(ctx context.Context, filter RequestFilter) (ListRegularizationResponse, error)
	Review(ctx context.Context, reviewerID, id string, req ReviewRequest) (RegularizationResponse, error)
}

type WFHService interface {
	Apply(ctx context.Context, userID string, req ApplyWFHRequest) (WFHResponse, error)
	ListMine(ctx context.Context, userID string, filter RequestFilter) (ListWFHResponse, error)
	TodayStatus(ctx context.Context, userID string) (WFHTodayResponse, error)
	Cancel(ctx context.Context, userID, id string) (WFHResponse, error)
	List(ctx context.Context, filter RequestFilter) (ListWFHResponse, error)
	Review(ctx context.Context, reviewerID, id string, req ReviewRequest) (WFHResponse, error)
}
