package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create creates a new attendance record
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// CreateIfMissing inserts attendance unless a row for (user, date) already exists
	CreateIfMissing(ctx context.Context, attendance Attendance) (bool, error)

	// GetByID retrieves attendance by ID
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByUserAndDate retrieves attendance for a user on a date, nil when none exists
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error)

	// GetByUserAndDateForUpdate is GetByUserAndDate with a row lock
	GetByUserAndDateForUpdate(ctx context.Context, userID string, date time.Time) (*Attendance, error)

	// Update writes every mutable column of attendance
	Update(ctx context.Context, attendance Attendance) error

	// Delete removes an attendance row
	Delete(ctx context.Context, id string) error

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListByUserBetween returns a user's rows in [start, end] ordered by date
	ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]Attendance, error)

	// ListByEffectiveStatus returns a user's rows in [start, end] whose override ?? status equals status, ordered by date
	ListByEffectiveStatus(ctx context.Context, userID string, start, end time.Time, status Status) ([]Attendance, error)

	// ListOpenSessions returns rows on date that have a punch in and no punch out
	ListOpenSessions(ctx context.Context, date time.Time) ([]Attendance, error)

	// CountByEffectiveStatus counts rows on date grouped by override ?? status
	CountByEffectiveStatus(ctx context.Context, date time.Time) (map[Status]int64, error)

	// MonthlySummary aggregates per-user totals for a month
	MonthlySummary(ctx context.Context, start, end time.Time) ([]MonthlySummary, error)
}

type ShiftRepository interface {
	Create(ctx context.Context, shift Shift) (Shift, error)
	GetByID(ctx context.Context, id string) (Shift, error)
	List(ctx context.Context) ([]Shift, error)
	Update(ctx context.Context, shift Shift) error
	Delete(ctx context.Context, id string) error
}

type OfficeLocationRepository interface {
	Create(ctx context.Context, loc OfficeLocation) (OfficeLocation, error)
	GetByID(ctx context.Context, id string) (OfficeLocation, error)
	List(ctx context.Context, activeOnly bool) ([]OfficeLocation, error)
	Update(ctx context.Context, loc OfficeLocation) error
	Delete(ctx context.Context, id string) error
}

type RegularizationRepository interface {
	Create(ctx context.Context, req Regularization) (Regularization, error)
	GetByID(ctx context.Context, id string) (Regularization, error)
	GetByIDForUpdate(ctx context.Context, id string) (Regularization, error)
	HasPending(ctx context.Context, userID string, date time.Time) (bool, error)
	List(ctx context.Context, filter RequestFilter) ([]Regularization, int64, error)
	Update(ctx context.Context, req Regularization) error
	CountPending(ctx context.Context) (int64, error)
}

type WFHRepository interface {
	// Create returns ErrWFHExists when the user already has a pending or approved request for that date
	Create(ctx context.Context, req WFHRequest) (WFHRequest, error)
	GetByID(ctx context.Context, id string) (WFHRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (WFHRequest, error)
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*WFHRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]WFHRequest, int64, error)
	Update(ctx context.Context, req WFHRequest) error
	CountPending(ctx context.Context) (int64, error)
	// ApprovedUserIDs returns users with approved wfh on date
	ApprovedUserIDs(ctx context.Context, date time.Time) (map[string]bool, error)
}
