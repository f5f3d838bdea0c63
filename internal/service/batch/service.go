package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/lock"
	leaveservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const lockTTL = 30 * time.Minute

// AttendanceJobs is the part of the attendance service the daily jobs drive.
type AttendanceJobs interface {
	AutoPunchOut(ctx context.Context, date time.Time) ([]attendance.Attendance, error)
	MarkAbsent(ctx context.Context, date time.Time) (int, error)
}

type BatchServiceImpl struct {
	tx database.Transactor
	batch.Repository
	userRepo       user.UserRepository
	leaveTypeRepo  leave.LeaveTypeRepository
	balanceRepo    leave.LeaveBalanceRepository
	balanceService *leaveservice.BalanceService
	attendanceRepo attendance.AttendanceRepository
	attendanceJobs AttendanceJobs
	compOffService compoff.CompOffService
	locker         lock.Locker
	activity       activity.Logger
	policy         config.PolicyConfig
	loc            *time.Location
	now            func() time.Time
}

func NewBatchService(
	tx database.Transactor,
	repo batch.Repository,
	userRepo user.UserRepository,
	leaveTypeRepo leave.LeaveTypeRepository,
	balanceRepo leave.LeaveBalanceRepository,
	balanceService *leaveservice.BalanceService,
	attendanceRepo attendance.AttendanceRepository,
	attendanceJobs AttendanceJobs,
	compOffService compoff.CompOffService,
	locker lock.Locker,
	activityLogger activity.Logger,
	policy config.PolicyConfig,
	loc *time.Location,
) *BatchServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &BatchServiceImpl{
		tx:             tx,
		Repository:     repo,
		userRepo:       userRepo,
		leaveTypeRepo:  leaveTypeRepo,
		balanceRepo:    balanceRepo,
		balanceService: balanceService,
		attendanceRepo: attendanceRepo,
		attendanceJobs: attendanceJobs,
		compOffService: compOffService,
		locker:         locker,
		activity:       activityLogger,
		policy:         policy,
		loc:            loc,
		now:            time.Now,
	}
}

func (s *BatchServiceImpl) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// DefaultPeriod is the previous month for month-end, the previous year for
// year-end, yesterday for mark-absent and today for the other daily jobs.
func (s *BatchServiceImpl) DefaultPeriod(job batch.Job) string {
	today := s.today()
	switch job {
	case batch.JobMonthEnd:
		return today.AddDate(0, 0, -today.Day()).Format("2006-01")
	case batch.JobYearEnd:
		return strconv.Itoa(today.Year() - 1)
	case batch.JobMarkAbsent:
		return today.AddDate(0, 0, -1).Format("2006-01-02")
	default:
		return today.Format("2006-01-02")
	}
}

// Run implements batch.Service.
func (s *BatchServiceImpl) Run(ctx context.Context, job batch.Job, req batch.TriggerRequest, triggeredBy string) (batch.RunResponse, error) {
	if err := req.Validate(job); err != nil {
		return batch.RunResponse{}, err
	}
	if req.DryRun && job != batch.JobMonthEnd && job != batch.JobYearEnd {
		return batch.RunResponse{}, batch.ErrDryRunUnsupported
	}
	period := req.Period
	if period == "" {
		period = s.DefaultPeriod(job)
	}
	start, end, err := s.checkPeriod(job, period, req.Force)
	if err != nil {
		return batch.RunResponse{}, err
	}
	if job == batch.JobYearEnd && !req.DryRun {
		if err := s.requireDecemberClosed(ctx, start.Year()); err != nil {
			return batch.RunResponse{}, err
		}
	}

	release, err := s.locker.Acquire(ctx, string(job)+":"+period, lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return batch.RunResponse{}, batch.ErrJobRunning
		}
		return batch.RunResponse{}, err
	}
	defer release()

	run, err := s.Repository.StartRun(ctx, batch.Run{
		Job:         job,
		Period:      period,
		Status:      batch.RunRunning,
		DryRun:      req.DryRun,
		TriggeredBy: triggeredBy,
		StartedAt:   s.now(),
	})
	if err != nil {
		return batch.RunResponse{}, fmt.Errorf("failed to start batch run: %w", err)
	}
	slog.Info("Batch run started", "job", job, "period", period, "dry_run", req.DryRun, "triggered_by", triggeredBy)

	var outcomes []batch.Outcome
	switch job {
	case batch.JobMonthEnd:
		outcomes, err = s.monthEnd(ctx, period, start, end, req.DryRun)
	case batch.JobYearEnd:
		outcomes, err = s.yearEnd(ctx, period, start.Year(), req.DryRun)
	case batch.JobAutoPunchOut:
		outcomes, err = s.autoPunchOut(ctx, start)
	case batch.JobMarkAbsent:
		outcomes, err = s.markAbsent(ctx, start)
	case batch.JobExpireCompOffs:
		outcomes, err = s.expireCompOffs(ctx, start)
	default:
		err = batch.ErrUnknownJob
	}

	finished := s.now()
	run.FinishedAt = &finished
	run.Status = batch.RunCompleted
	for _, o := range outcomes {
		switch o.Status {
		case batch.OutcomeProcessed:
			run.Processed++
		case batch.OutcomeSkipped:
			run.Skipped++
		case batch.OutcomeFailed:
			run.Failed++
		}
	}
	if err != nil {
		msg := err.Error()
		run.Status = batch.RunFailed
		run.Error = &msg
	} else if run.Failed > 0 {
		msg := fmt.Sprintf("%d employee(s) failed", run.Failed)
		run.Status = batch.RunFailed
		run.Error = &msg
	}
	if ferr := s.Repository.FinishRun(ctx, run); ferr != nil {
		slog.Error("failed to record batch run", "run_id", run.ID, "error", ferr)
	}

	s.activity.Log(ctx, nil, activity.ActionBatchRun, "batch_run", run.ID,
		fmt.Sprintf("%s %s %s: %d processed, %d skipped, %d failed", job, period, run.Status, run.Processed, run.Skipped, run.Failed))
	slog.Info("Batch run finished", "job", job, "period", period, "status", run.Status,
		"processed", run.Processed, "skipped", run.Skipped, "failed", run.Failed)

	if err != nil {
		return batch.ToRunResponse(run, outcomes), err
	}
	return batch.ToRunResponse(run, outcomes), nil
}

// ListRuns implements batch.Service.
func (s *BatchServiceImpl) ListRuns(ctx context.Context, job *batch.Job, limit int) ([]batch.RunResponse, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	runs, err := s.Repository.ListRuns(ctx, job, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch runs: %w", err)
	}
	resp := make([]batch.RunResponse, 0, len(runs))
	for _, r := range runs {
		resp = append(resp, batch.ToRunResponse(r, nil))
	}
	return resp, nil
}

// checkPeriod parses period into its first and last day and rejects periods
// that have not ended. Daily jobs for today also wait for their hour unless forced.
func (s *BatchServiceImpl) checkPeriod(job batch.Job, period string, force bool) (time.Time, time.Time, error) {
	start, err := time.Parse(batch.PeriodLayout(job), period)
	if err != nil {
		return time.Time{}, time.Time{}, batch.ErrInvalidPeriod
	}
	today := s.today()

	switch job {
	case batch.JobMonthEnd:
		end := start.AddDate(0, 1, -1)
		if !end.Before(today) {
			return time.Time{}, time.Time{}, batch.ErrFuturePeriod
		}
		return start, end, nil
	case batch.JobYearEnd:
		end := start.AddDate(1, 0, -1)
		if !end.Before(today) {
			return time.Time{}, time.Time{}, batch.ErrFuturePeriod
		}
		return start, end, nil
	}

	if start.After(today) {
		return time.Time{}, time.Time{}, batch.ErrFuturePeriod
	}
	if !force && start.Equal(today) {
		hour := s.now().In(s.loc).Hour()
		switch job {
		case batch.JobAutoPunchOut:
			if hour < s.policy.AutoPunchOutHour {
				return time.Time{}, time.Time{}, batch.ErrTooEarly
			}
		case batch.JobMarkAbsent:
			return time.Time{}, time.Time{}, batch.ErrTooEarly
		}
	}
	return start, start, nil
}

func (s *BatchServiceImpl) requireDecemberClosed(ctx context.Context, year int) error {
	_, err := s.Repository.LatestCompleted(ctx, batch.JobMonthEnd, fmt.Sprintf("%d-12", year))
	if errors.Is(err, pgx.ErrNoRows) {
		return batch.ErrMonthEndPending
	}
	if err != nil {
		return fmt.Errorf("failed to check month-end run: %w", err)
	}
	return nil
}

// forEachEmployee runs fn for every active non-admin user that had joined by
// cutoff, at most BatchMaxConcurrency at a time.
func (s *BatchServiceImpl) forEachEmployee(ctx context.Context, cutoff time.Time, fn func(ctx context.Context, u user.User) batch.Outcome) ([]batch.Outcome, error) {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	employees := make([]user.User, 0, len(users))
	for _, u := range users {
		if u.IsAdmin() || u.JoinedAt.After(cutoff) {
			continue
		}
		employees = append(employees, u)
	}

	outcomes := make([]batch.Outcome, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.policy.BatchMaxConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, u := range employees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := fn(gctx, u)
			o.UserID, o.UserName = u.ID, u.Name
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func failed(err error) batch.Outcome {
	return batch.Outcome{Status: batch.OutcomeFailed, Error: err.Error()}
}

func (s *BatchServiceImpl) autoPunchOut(ctx context.Context, date time.Time) ([]batch.Outcome, error) {
	closed, err := s.attendanceJobs.AutoPunchOut(ctx, date)
	if err != nil {
		return nil, err
	}
	outcomes := make([]batch.Outcome, 0, len(closed))
	for _, a := range closed {
		outcomes = append(outcomes, batch.Outcome{UserID: a.UserID, UserName: a.UserName, Status: batch.OutcomeProcessed})
	}
	return outcomes, nil
}

func (s *BatchServiceImpl) markAbsent(ctx context.Context, date time.Time) ([]batch.Outcome, error) {
	marked, err := s.attendanceJobs.MarkAbsent(ctx, date)
	if err != nil {
		return nil, err
	}
	outcomes := make([]batch.Outcome, marked)
	for i := range outcomes {
		outcomes[i] = batch.Outcome{Status: batch.OutcomeProcessed, AbsentDays: 1}
	}
	return outcomes, nil
}

func (s *BatchServiceImpl) expireCompOffs(ctx context.Context, date time.Time) ([]batch.Outcome, error) {
	var expired []compoff.CompOff
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		expired, err = s.compOffService.ExpireBefore(txCtx, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	outcomes := make([]batch.Outcome, 0, len(expired))
	for _, c := range expired {
		outcomes = append(outcomes, batch.Outcome{
			UserID:          c.UserID,
			UserName:        c.UserName,
			Status:          batch.OutcomeProcessed,
			CompOffCredited: c.CreditDays.Neg(),
		})
	}
	return outcomes, nil
}

func zeroOutcome(status string) batch.Outcome {
	return batch.Outcome{
		Status:          status,
		DeductedDays:    decimal.Zero,
		LOPDays:         decimal.Zero,
		CompOffCredited: decimal.Zero,
		CarryForward:    decimal.Zero,
	}
}

var _ batch.Service = (*BatchServiceImpl)(nil)
