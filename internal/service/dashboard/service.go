package dashboard

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/dashboard"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	loc *time.Location
	now func() time.Time
}

func NewDashboardService(repo dashboard.DashboardRepository, loc *time.Location) *DashboardServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		loc:                 loc,
		now:                 time.Now,
	}
}

// GetDashboard runs the five dashboard queries concurrently.
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	n := s.now().In(s.loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := today.AddDate(0, 0, 1-today.Day())
	monthEnd := monthStart.AddDate(0, 1, -1)

	var (
		total         int64
		day           *dashboard.DayStats
		pending       *dashboard.PendingStats
		approvedToday int64
		thisMonth     int64
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		total, err = s.CountActiveEmployees(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		day, err = s.GetDayStats(gCtx, today)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.GetPendingStats(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		approvedToday, err = s.CountLeavesApprovedOn(gCtx, today)
		return err
	})
	g.Go(func() error {
		var err error
		thisMonth, err = s.CountLeavesInMonth(gCtx, monthStart, monthEnd)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	marked := day.Present + day.HalfDay + day.Absent + day.OnLeave
	return &dashboard.DashboardResponse{
		Date:              today.Format("2006-01-02"),
		TotalEmployees:    total,
		PresentToday:      day.Present,
		HalfDayToday:      day.HalfDay,
		AbsentToday:       day.Absent,
		OnLeaveToday:      day.OnLeave,
		LateToday:         day.Late,
		WFHToday:          day.WFH,
		NotMarkedToday:    max(0, total-marked),
		PendingLeaves:     pending.Leaves,
		PendingRegularize: pending.Regularizations,
		PendingWFH:        pending.WFH,
		ApprovedToday:     approvedToday,
		LeavesThisMonth:   thisMonth,
	}, nil
}

var _ dashboard.DashboardService = (*DashboardServiceImpl)(nil)
