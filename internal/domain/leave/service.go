package leave

import (
	"context"
	"time"
)

type LeaveService interface {
	// Type
	CreateLeaveType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	UpdateLeaveType(ctx context.Context, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	ListLeaveTypes(ctx context.Context, activeOnly bool) ([]LeaveTypeResponse, error)
	DeleteLeaveType(ctx context.Context, id string) error
	// Balance
	GetMyBalance(ctx context.Context, userID string, year, month int) (MyBalanceResponse, error)
	ListBalances(ctx context.Context, filter BalanceFilter) (ListBalanceResponse, error)
	UpdateBalance(ctx context.Context, req UpdateBalanceRequest) (BalanceResponse, error)
	InitializeBalances(ctx context.Context, req InitializeBalancesRequest) (InitializeBalancesResponse, error)
	// Request
	Apply(ctx context.Context, userID string, req ApplyLeaveRequest) (LeaveRequestResponse, error)
	ListMyRequests(ctx context.Context, userID string, filter RequestFilter) (ListLeaveRequestResponse, error)
	ListRequests(ctx context.Context, filter RequestFilter) (ListLeaveRequestResponse, error)
	GetRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	CancelRequest(ctx context.Context, userID, requestID string) (LeaveRequestResponse, error)
	Review(ctx context.Context, reviewerID, requestID string, req ReviewLeaveRequest) (LeaveRequestResponse, error)
	AdminUpdate(ctx context.Context, actorID string, req AdminUpdateLeaveRequest) (LeaveRequestResponse, error)
	// Attendance reconciliation
	TodayLeave(ctx context.Context, userID string, today time.Time) (TodayLeaveResponse, error)
	ReconcileWorkedDay(ctx context.Context, userID string, day time.Time) (*ReconcileResult, error)
	CancelForDate(ctx context.Context, userID string, req CancelForDateRequest) (ReconcileResult, error)
	// Holiday
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	UpdateHoliday(ctx context.Context, req UpdateHolidayRequest) (HolidayResponse, error)
	ListHolidays(ctx context.Context, year int) ([]HolidayResponse, error)
	DeleteHoliday(ctx context.Context, id string) error
}
