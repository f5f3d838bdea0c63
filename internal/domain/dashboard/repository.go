package dashboard

import (
	"context"
	"time"
)

// DayStats combines attendance counts for a single day
type DayStats struct {
	Present int64
	HalfDay int64
	Absent  int64
	OnLeave int64
	Late    int64
	WFH     int64
}

// PendingStats combines pending counts of every request kind
type PendingStats struct {
	Leaves          int64
	Regularizations int64
	WFH             int64
}

// DashboardRepository defines the interface for dashboard data access
type DashboardRepository interface {
	// CountActiveEmployees returns the number of active users with the employee or admin role
	CountActiveEmployees(ctx context.Context) (int64, error)

	// GetDayStats returns effective-status counts for date in a single query
	GetDayStats(ctx context.Context, date time.Time) (*DayStats, error)

	// GetPendingStats returns pending request counts in a single query
	GetPendingStats(ctx context.Context) (*PendingStats, error)

	// CountLeavesApprovedOn counts leave requests approved on date
	CountLeavesApprovedOn(ctx context.Context, date time.Time) (int64, error)

	// CountLeavesInMonth counts approved leave requests overlapping [start, end]
	CountLeavesInMonth(ctx context.Context, start, end time.Time) (int64, error)
}
