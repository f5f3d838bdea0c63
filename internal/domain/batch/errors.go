package batch

import "errors"

var (
	ErrUnknownJob        = errors.New("unknown batch job")
	ErrJobRunning        = errors.New("job is already running for this period")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrInvalidSecret     = errors.New("invalid cron secret")
	ErrFuturePeriod      = errors.New("period has not ended yet")
	ErrRunNotFound       = errors.New("batch run not found")
	ErrDryRunRollback    = errors.New("dry run")
	ErrMonthEndPending   = errors.New("month-end for december has not completed")
	ErrTooEarly          = errors.New("job is not due yet")
	ErrDryRunUnsupported = errors.New("dry run is only supported for month-end and year-end")
)
