package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrAlreadyPunchedIn     = errors.New("you have already punched in today")
	ErrNotPunchedIn         = errors.New("you have not punched in yet")
	ErrAlreadyPunchedOut    = errors.New("you have already punched out today")
	ErrOutsideAllowedRadius = errors.New("you are outside the allowed office radius")
	ErrIPNotAllowed         = errors.New("punching is not allowed from this network")
	ErrPunchOutBeforeIn     = errors.New("punch out must be after punch in")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidStatus      = errors.New("invalid attendance status")

	// Shift and location errors
	ErrShiftNotFound          = errors.New("shift not found")
	ErrInvalidShiftWindow     = errors.New("shift end must be after shift start")
	ErrInvalidBreakWindow     = errors.New("break must lie inside the shift")
	ErrOfficeLocationNotFound = errors.New("office location not found")

	// Regularization errors
	ErrRegularizationNotFound      = errors.New("regularization request not found")
	ErrRegularizationPending       = errors.New("a pending regularization already exists for this date")
	ErrRegularizationFutureDate    = errors.New("regularization is only allowed for past dates")
	ErrRegularizationTimesRequired = errors.New("requested punch times are required for this request type")

	// WFH errors
	ErrWFHNotFound = errors.New("wfh request not found")
	ErrWFHExists   = errors.New("a wfh request already exists for this date")
	ErrWFHPastDate = errors.New("wfh can only be requested for today or a future date")

	// Shared request errors
	ErrRequestAlreadyReviewed = errors.New("request has already been reviewed")
	ErrNotRequestOwner        = errors.New("request does not belong to user")
)
