package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

func (r *dashboardRepositoryImpl) CountActiveEmployees(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active AND role IN ('employee', 'admin')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count active employees: %w", err)
	}
	return n, nil
}

// GetDayStats counts effective statuses, lateness and WFH for date in a single query
func (r *dashboardRepositoryImpl) GetDayStats(ctx context.Context, date time.Time) (*dashboard.DayStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) FILTER (WHERE COALESCE(status_override, status) = 'present'),
			COUNT(*) FILTER (WHERE COALESCE(status_override, status) = 'half_day'),
			COUNT(*) FILTER (WHERE COALESCE(status_override, status) = 'absent'),
			COUNT(*) FILTER (WHERE COALESCE(status_override, status) = 'on_leave'),
			COUNT(*) FILTER (WHERE is_late),
			COUNT(*) FILTER (WHERE is_wfh)
		FROM attendances
		WHERE date = $1
	`

	var stats dashboard.DayStats
	err := q.QueryRow(ctx, query, date).Scan(
		&stats.Present, &stats.HalfDay, &stats.Absent, &stats.OnLeave, &stats.Late, &stats.WFH,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get day stats: %w", err)
	}
	return &stats, nil
}

// GetPendingStats returns pending counts of every request kind in a single query
func (r *dashboardRepositoryImpl) GetPendingStats(ctx context.Context) (*dashboard.PendingStats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM leave_requests WHERE status = 'pending'),
			(SELECT COUNT(*) FROM regularization_requests WHERE status = 'pending'),
			(SELECT COUNT(*) FROM wfh_requests WHERE status = 'pending')
	`

	var stats dashboard.PendingStats
	if err := q.QueryRow(ctx, query).Scan(&stats.Leaves, &stats.Regularizations, &stats.WFH); err != nil {
		return nil, fmt.Errorf("failed to get pending stats: %w", err)
	}
	return &stats, nil
}

func (r *dashboardRepositoryImpl) CountLeavesApprovedOn(ctx context.Context, date time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM leave_requests
		WHERE status = 'approved' AND reviewed_at >= $1 AND reviewed_at < $1 + INTERVAL '1 day'`, date).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved leaves: %w", err)
	}
	return n, nil
}

func (r *dashboardRepositoryImpl) CountLeavesInMonth(ctx context.Context, start, end time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM leave_requests
		WHERE status = 'approved' AND start_date <= $2 AND end_date >= $1`, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count leaves in month: %w", err)
	}
	return n, nil
}
