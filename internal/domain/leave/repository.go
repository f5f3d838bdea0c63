package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	GetByCode(ctx context.Context, code string) (LeaveType, error)
	List(ctx context.Context, activeOnly bool) ([]LeaveType, error)
	Update(ctx context.Context, leaveType LeaveType) error
	Delete(ctx context.Context, id string) error
}

// LeaveBalanceRepository - interface for leave_balances table
type LeaveBalanceRepository interface {
	// CreateIfMissing inserts b unless the (user, type, year, month) row exists, then returns the stored row.
	CreateIfMissing(ctx context.Context, b LeaveBalance) (LeaveBalance, bool, error)
	// Upsert overwrites total_leaves and carried_forward of an existing row.
	Upsert(ctx context.Context, b LeaveBalance) (LeaveBalance, error)
	Get(ctx context.Context, userID, leaveTypeID string, year, month int) (LeaveBalance, error)
	GetForUpdate(ctx context.Context, userID, leaveTypeID string, year, month int) (LeaveBalance, error)
	GetByID(ctx context.Context, id string) (LeaveBalance, error)
	GetByIDForUpdate(ctx context.Context, id string) (LeaveBalance, error)
	ListByUserMonth(ctx context.Context, userID string, year, month int) ([]LeaveBalance, error)
	List(ctx context.Context, filter BalanceFilter) ([]LeaveBalance, int64, error)
	Update(ctx context.Context, b LeaveBalance) error
	// AddUsage adds the deltas (which may be negative) to used_leaves and lop_days.
	AddUsage(ctx context.Context, id string, usedDelta, lopDelta decimal.Decimal) error
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]LeaveRequest, int64, error)
	Update(ctx context.Context, request LeaveRequest) error
	HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error)
	// ListApprovedCovering returns approved requests of userID whose range contains day, locked for update.
	ListApprovedCovering(ctx context.Context, userID string, day time.Time) ([]LeaveRequest, error)
	ListApprovedInRange(ctx context.Context, start, end time.Time) ([]LeaveRequest, error)
	CountByStatus(ctx context.Context, status RequestStatus) (int64, error)
	CountApprovedBetween(ctx context.Context, start, end time.Time) (int64, error)
	CountReviewedOn(ctx context.Context, status RequestStatus, day time.Time) (int64, error)
}

// AllocationRepository - interface for leave_allocations table
type AllocationRepository interface {
	Create(ctx context.Context, entry AllocationEntry) (AllocationEntry, error)
	ListByRequest(ctx context.Context, requestID string, state AllocationState) ([]AllocationEntry, error)
	UpdateDays(ctx context.Context, id string, days decimal.Decimal, state AllocationState) error
	ReleaseHeld(ctx context.Context, requestID string) error
	// HeldCompOff sums held days per comp-off row for userID, ignoring excludeRequestID.
	HeldCompOff(ctx context.Context, userID, excludeRequestID string) (map[string]decimal.Decimal, error)
	// MoveHeldCompOff points every held comp-off entry on fromID at toID.
	MoveHeldCompOff(ctx context.Context, fromID, toID string) error
	// HeldPaid sums held paid days against one balance row, ignoring excludeRequestID.
	HeldPaid(ctx context.Context, balanceID, excludeRequestID string) (decimal.Decimal, error)
}

type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	GetByID(ctx context.Context, id string) (Holiday, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]Holiday, error)
	ListByYear(ctx context.Context, year int) ([]Holiday, error)
	Update(ctx context.Context, h Holiday) error
	Delete(ctx context.Context, id string) error
}
