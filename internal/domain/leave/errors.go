package leave

import "errors"

var (
	ErrLeaveTypeNotFound       = errors.New("leave type not found")
	ErrLeaveTypeCodeExists     = errors.New("leave type code already exists")
	ErrLeaveTypeInactive       = errors.New("leave type is inactive")
	ErrLeaveBalanceNotFound    = errors.New("leave balance not found")
	ErrLeaveRequestNotFound    = errors.New("leave request not found")
	ErrLeaveAlreadyProcessed   = errors.New("leave request already processed")
	ErrOverlappingLeave        = errors.New("leave request overlaps an existing pending or approved leave")
	ErrInvalidDateRange        = errors.New("end date must not be before start date")
	ErrHalfDaySingleDate       = errors.New("half-day leave must start and end on the same date")
	ErrNotLeaveOwner           = errors.New("leave request does not belong to user")
	ErrLeaveNotApproved        = errors.New("leave request is not approved")
	ErrDateOutsideLeave        = errors.New("date is outside the leave range")
	ErrNoLeaveForDate          = errors.New("no approved leave covers this date")
	ErrAllocationMismatch      = errors.New("comp_off_days + paid_days + lop_days must equal total_days")
	ErrHolidayNotFound         = errors.New("holiday not found")
	ErrHolidayExists           = errors.New("a holiday already exists on this date")
	ErrInsufficientCompOffHeld = errors.New("comp-off hold exceeds available credit")
)
