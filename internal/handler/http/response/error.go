package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

var (
	badRequest = []error{
		attendance.ErrOutsideAllowedRadius,
		attendance.ErrIPNotAllowed,
		attendance.ErrPunchOutBeforeIn,
		attendance.ErrNotPunchedIn,
		attendance.ErrInvalidStatus,
		attendance.ErrInvalidShiftWindow,
		attendance.ErrInvalidBreakWindow,
		attendance.ErrRegularizationFutureDate,
		attendance.ErrRegularizationTimesRequired,
		attendance.ErrWFHPastDate,
		leave.ErrLeaveTypeInactive,
		leave.ErrInvalidDateRange,
		leave.ErrHalfDaySingleDate,
		leave.ErrLeaveNotApproved,
		leave.ErrDateOutsideLeave,
		leave.ErrNoLeaveForDate,
		leave.ErrAllocationMismatch,
		compoff.ErrSplitExceedsCredit,
		compoff.ErrInvalidCreditAmount,
		batch.ErrUnknownJob,
		batch.ErrInvalidPeriod,
		batch.ErrFuturePeriod,
		batch.ErrMonthEndPending,
		batch.ErrTooEarly,
		batch.ErrDryRunUnsupported,
		notification.ErrInvalidType,
		notification.ErrInvalidSubject,
		notification.ErrEmptyPreference,
		report.ErrInvalidMonth,
		report.ErrInvalidYear,
		report.ErrInvalidFormat,
		user.ErrInvalidPhoto,
		user.ErrWrongPassword,
		user.ErrCannotDeactivateSelf,
		user.ErrProfileUpdateNoChanges,
		storage.ErrUnsupportedImage,
		storage.ErrInvalidPath,
	}

	notFound = []error{
		auth.ErrUserNotFound,
		user.ErrUserNotFound,
		user.ErrShiftNotFound,
		attendance.ErrAttendanceNotFound,
		attendance.ErrShiftNotFound,
		attendance.ErrOfficeLocationNotFound,
		attendance.ErrRegularizationNotFound,
		attendance.ErrWFHNotFound,
		leave.ErrLeaveTypeNotFound,
		leave.ErrLeaveBalanceNotFound,
		leave.ErrLeaveRequestNotFound,
		leave.ErrHolidayNotFound,
		compoff.ErrCompOffNotFound,
		batch.ErrRunNotFound,
		notification.ErrNotificationNotFound,
		user.ErrProfileUpdateNotFound,
	}

	conflict = []error{
		attendance.ErrAlreadyPunchedIn,
		attendance.ErrAlreadyPunchedOut,
		attendance.ErrRegularizationPending,
		attendance.ErrWFHExists,
		attendance.ErrRequestAlreadyReviewed,
		auth.ErrAdminExists,
		user.ErrMobileExists,
		user.ErrEmailExists,
		user.ErrProfileUpdatePending,
		user.ErrProfileUpdateReviewed,
		leave.ErrLeaveTypeCodeExists,
		leave.ErrLeaveAlreadyProcessed,
		leave.ErrOverlappingLeave,
		leave.ErrHolidayExists,
		leave.ErrInsufficientCompOffHeld,
		compoff.ErrCompOffNotEarned,
		compoff.ErrCompOffNotUsed,
		compoff.ErrCompOffExists,
		batch.ErrJobRunning,
	}

	unauthorized = []error{
		auth.ErrInvalidCredentials,
		auth.ErrInvalidToken,
		auth.ErrTokenExpired,
		auth.ErrRefreshTokenRevoked,
		auth.ErrOAuthEmailUnknown,
		auth.ErrInvalidOAuthState,
		batch.ErrInvalidSecret,
	}

	forbidden = []error{
		auth.ErrAccountInactive,
		user.ErrInsufficientPermissions,
		attendance.ErrNotRequestOwner,
		leave.ErrNotLeaveOwner,
		user.ErrProfileEditNeedsApproval,
		user.ErrNotProfileUpdateOwner,
	}
)

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case matches(err, badRequest):
		BadRequest(w, err.Error(), nil)
	case matches(err, notFound):
		NotFound(w, err.Error())
	case matches(err, conflict):
		Conflict(w, err.Error())
	case matches(err, unauthorized):
		Unauthorized(w, err.Error())
	case matches(err, forbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrOAuthNotConfigured):
		NotImplemented(w, err.Error())
	case errors.Is(err, sse.ErrTooManyStreams):
		TooManyRequests(w, err.Error(), 0)
	case errors.Is(err, notification.ErrShuttingDown):
		ServiceUnavailable(w, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
