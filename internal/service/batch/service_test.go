package batch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/lock"
	compoffservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/compoff"
	leaveservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/servicetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttendanceJobs struct {
	autoPunchOutDates []time.Time
	markAbsentDates   []time.Time
	closed            []attendance.Attendance
	marked            int
}

func (f *fakeAttendanceJobs) AutoPunchOut(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	f.autoPunchOutDates = append(f.autoPunchOutDates, date)
	return f.closed, nil
}

func (f *fakeAttendanceJobs) MarkAbsent(ctx context.Context, date time.Time) (int, error) {
	f.markAbsentDates = append(f.markAbsentDates, date)
	return f.marked, nil
}

type batchHarness struct {
	svc         *BatchServiceImpl
	runs        *servicetest.BatchRuns
	balances    *servicetest.Balances
	attendances *servicetest.Attendances
	compOffs    *servicetest.CompOffs
	jobs        *fakeAttendanceJobs
	locker      *lock.LocalLocker
	activity    *servicetest.ActivityLog
	sick        leave.LeaveType
	earned      leave.LeaveType
	employeeID  string
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// The clock reads 2026-03-01 02:00, so the default month-end period is 2026-02.
func newBatchHarness(t *testing.T) *batchHarness {
	t.Helper()
	h := &batchHarness{
		runs:        servicetest.NewBatchRuns(),
		balances:    servicetest.NewBalances(),
		attendances: servicetest.NewAttendances(),
		compOffs:    servicetest.NewCompOffs(),
		jobs:        &fakeAttendanceJobs{},
		locker:      lock.NewLocalLocker(),
		activity:    &servicetest.ActivityLog{},
		sick: leave.LeaveType{
			ID: "sl", Code: "SL", Name: "Sick Leave", MonthlyQuota: decimal.NewFromInt(1), IsPaid: true, IsActive: true,
		},
		earned: leave.LeaveType{
			ID: "el", Code: "EL", Name: "Earned Leave", MonthlyQuota: decimal.NewFromInt(1), IsPaid: true, IsActive: true,
			IsCarryForward: true, MaxCarryForward: decimal.NewFromInt(2),
		},
	}
	users := servicetest.NewUsers()
	h.employeeID = users.Seed(user.User{Name: "Asha", Role: user.RoleEmployee, IsActive: true, JoinedAt: date(2025, 1, 6)})
	users.Seed(user.User{Name: "Hari", Role: user.RoleAdmin, IsActive: true})
	users.Seed(user.User{Name: "New", Role: user.RoleEmployee, IsActive: true, JoinedAt: date(2026, 3, 1)})

	tx := &servicetest.Transactor{}
	leaveTypes := servicetest.NewLeaveTypes(h.sick, h.earned)
	allocations := servicetest.NewAllocations(h.compOffs)
	compOffService := compoffservice.NewCompOffService(h.compOffs, users, tx, h.activity, nil, 90)
	policy := config.PolicyConfig{
		SickLeaveCode:       "SL",
		HoursPerDay:         decimal.NewFromInt(8),
		AutoPunchOutHour:    23,
		BatchMaxConcurrency: 2,
	}

	h.svc = NewBatchService(tx, h.runs, users, leaveTypes, h.balances,
		leaveservice.NewBalanceService(leaveTypes, h.balances, allocations),
		h.attendances, h.jobs, compOffService, h.locker, h.activity, policy, time.UTC)
	h.svc.now = func() time.Time { return time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC) }
	return h
}

func (h *batchHarness) absent(t *testing.T, d time.Time) {
	t.Helper()
	_, err := h.attendances.Create(context.Background(), attendance.Attendance{UserID: h.employeeID, Date: d, Status: attendance.StatusAbsent})
	require.NoError(t, err)
}

// ===== Month-end =====

func TestMonthEnd_NoAbsencesConvertsSickLeave(t *testing.T) {
	h := newBatchHarness(t)
	ctx := context.Background()

	resp, err := h.svc.Run(ctx, batch.JobMonthEnd, batch.TriggerRequest{}, "test")
	require.NoError(t, err)

	assert.Equal(t, "2026-02", resp.Period)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 1, resp.Processed)
	require.Len(t, resp.Outcomes, 1)
	assert.True(t, decimal.NewFromInt(1).Equal(resp.Outcomes[0].CompOffCredited))

	credits := h.compOffs.ByUser(h.employeeID)
	require.Len(t, credits, 1)
	assert.Equal(t, compoff.SourceMonthEndSick, credits[0].Source)
	assert.Equal(t, "2026-02", credits[0].SourceKey)
	assert.Equal(t, date(2026, 2, 28), credits[0].EarnedDate)
	assert.True(t, decimal.NewFromInt(8).Equal(credits[0].EarnedHours))

	bal, ok := h.balances.Find(h.employeeID, "sl", 2026, 2)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(1).Equal(bal.ConvertedDays))
	assert.True(t, bal.Remaining().IsZero())
	assert.Contains(t, h.activity.Actions(), activity.ActionBatchRun)
}

func TestMonthEnd_ConversionReachesNextMonthRollover(t *testing.T) {
	h := newBatchHarness(t)
	ctx := context.Background()
	_, _, err := h.svc.balanceService.EnsureBalance(ctx, h.employeeID, h.sick, 2026, 2)
	require.NoError(t, err)
	march, _, err := h.svc.balanceService.EnsureBalance(ctx, h.employeeID, h.sick, 2026, 3)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(1).Equal(march.CarriedForward))

	_, err = h.svc.Run(ctx, batch.JobMonthEnd, batch.TriggerRequest{Period: "2026-02"}, "test")
	require.NoError(t, err)

	// converted sick leave is not carried a second time
	march, ok := h.balances.Find(h.employeeID, "sl", 2026, 3)
	require.True(t, ok)
	assert.True(t, march.CarriedForward.IsZero())
}

func TestMonthEnd_RerunIsNoOp(t *testing.T) {
	h := newBatchHarness(t)
	ctx := context.Background()
	_, err := h.svc.Run(ctx, batch.JobMonthEnd, batch.TriggerRequest{Period: "2026-02"}, "test")
	require.NoError(t, err)

	resp, err := h.svc.Run(ctx, batch.JobMonthEnd, batch.TriggerRequest{Period: "2026-02"}, "test")
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Processed)
	assert.Equal(t, 1, resp.Skipped)
	assert.Len(t, h.compOffs.ByUser(h.employeeID), 1)
}

func TestMonthEnd_AbsencesDeductThenLOP(t *testing.T) {
	h := newBatchHarness(t)
	ctx := context.Background()
	for _, d := range []int{3, 10, 17} {
		h.absent(t, date(2026, 2, d))
	}

	resp, err := h.svc.Run(ctx, batch.JobMonthEnd, batch.TriggerRequest{Period: "2026-02"}, "test")
	require.NoError(t, err)

	require.Len(t, resp.Outcomes, 1)
	o := resp.Outcomes[0]
	assert.Equal(t, 3, o.AbsentDays)
	assert.True(t, decimal.NewFromInt(1).Equal(o.DeductedDays))
	assert.True(t, decimal.NewFromInt(2).Equal(o.LOPDays))
	assert.True(t, o.CompOffCredited.IsZero())
	assert.Empty(t, h.compOffs.ByUser(h.employeeID))

	bal, _ := h.balances.Find(h.employeeID, "sl", 2026, 2)
	assert.True(t, decimal.NewFromInt(1).Equal(bal.UsedLeaves))
	assert.True(t, decimal.NewFromInt(2).Equal(bal.LOPDays))

	first, _ := h.attendances.Find(h.employeeID, date(2026, 2, 3))
	assert.False(t, strings.Contains(first.Notes, "LOP"))
	for _, d := range []int{10, 17} {
		row, _ := h.attendances.Find(h.employeeID, date(2026, 2, d))
		assert.True(t, strings.HasPrefix(row.Notes, lopNote), "day %d", d)
	}
}

func TestMonthEnd_OverrideCountsAsPresent(t *testing.T) {
	h := newBatchHarness(t)
	present := attendance.StatusPresent
	_, err := h.attendances.Create(context.Background(), attendance.Attendance{
		UserID: h.employeeID, Date: date(2026, 2, 5), Status: attendance.StatusAbsent, StatusOverride: &present,
	})
	require.NoError(t, err)

	resp, err := h.svc.Run(context.Background(), batch.JobMonthEnd, batch.TriggerRequest{Period: "2026-02"}, "test")
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Outcomes[0].AbsentDays)
	assert.True(t, decimal.NewFromInt(1).Equal(resp.Outcomes[0].CompOffCredited))
}

func TestMonthEnd_PeriodChecks(t *testing.T) {
	h := newBatchHarness(t)
	ctx := context.Background()

	_, err := h.svc.Run(ctx, batch.JobMonthEnd, batch.TriggerRequest{Period: "2026-03"}, "test")
	assert.ErrorIs(t, err, batch.ErrFuturePeriod)

	_, err = h.svc.Run(ctx, batch.JobMonthEnd, batch.TriggerRequest{Period: "March"}, "test")
	assert.Error(t, err)

	assert.Empty(t, h.runs.Runs)
}

func TestRun_LockHeld(t *testing.T) {
	h := newBatchHarness(t)
	release, err := h.locker.Acquire(context.Background(), "month-end:2026-02", time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = h.svc.Run(context.Background(), batch.JobMonthEnd, batch.TriggerRequest{}, "test")

	assert.ErrorIs(t, err, batch.ErrJobRunning)
}

// ===== Year-end =====

func TestYearEnd_RequiresDecemberMonthEnd(t *testing.T) {
	h := newBatchHarness(t)

	_, err := h.svc.Run(context.Background(), batch.JobYearEnd, batch.TriggerRequest{Period: "2025"}, "test")

	assert.ErrorIs(t, err, batch.ErrMonthEndPending)
}

func TestYearEnd_CarriesForwardCapped(t *testing.T) {
	h := newBatchHarness(t)
	ctx := context.Background()
	_, err := h.runs.StartRun(ctx, batch.Run{Job: batch.JobMonthEnd, Period: "2025-12", Status: batch.RunCompleted})
	require.NoError(t, err)
	_, _, err = h.balances.CreateIfMissing(ctx, leave.LeaveBalance{
		UserID: h.employeeID, LeaveTypeID: "el", Year: 2025, Month: 12,
		TotalLeaves: decimal.NewFromInt(1), CarriedForward: decimal.NewFromInt(3), UsedLeaves: decimal.Zero,
	})
	require.NoError(t, err)
	_, _, err = h.balances.CreateIfMissing(ctx, leave.LeaveBalance{
		UserID: h.employeeID, LeaveTypeID: "sl", Year: 2025, Month: 12,
		TotalLeaves: decimal.NewFromInt(1), UsedLeaves: decimal.Zero,
	})
	require.NoError(t, err)

	resp, err := h.svc.Run(ctx, batch.JobYearEnd, batch.TriggerRequest{}, "test")
	require.NoError(t, err)

	assert.Equal(t, "2025", resp.Period)
	require.Len(t, resp.Outcomes, 1)
	assert.True(t, decimal.NewFromInt(2).Equal(resp.Outcomes[0].CarryForward))

	el, ok := h.balances.Find(h.employeeID, "el", 2026, 1)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(2).Equal(el.CarriedForward))
	sl, ok := h.balances.Find(h.employeeID, "sl", 2026, 1)
	require.True(t, ok)
	assert.True(t, sl.CarriedForward.IsZero())

	again, err := h.svc.Run(ctx, batch.JobYearEnd, batch.TriggerRequest{Period: "2025"}, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Skipped)
}

// ===== Daily jobs =====

func TestAutoPunchOut_HourGate(t *testing.T) {
	h := newBatchHarness(t)
	ctx := context.Background()
	h.jobs.closed = []attendance.Attendance{{UserID: h.employeeID, UserName: "Asha"}}

	_, err := h.svc.Run(ctx, batch.JobAutoPunchOut, batch.TriggerRequest{}, "test")
	assert.ErrorIs(t, err, batch.ErrTooEarly)

	resp, err := h.svc.Run(ctx, batch.JobAutoPunchOut, batch.TriggerRequest{Force: true}, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Processed)
	assert.Equal(t, []time.Time{date(2026, 3, 1)}, h.jobs.autoPunchOutDates)

	// A past day needs no gate
	_, err = h.svc.Run(ctx, batch.JobAutoPunchOut, batch.TriggerRequest{Period: "2026-02-27"}, "test")
	require.NoError(t, err)
}

func TestMarkAbsent_DefaultsToYesterday(t *testing.T) {
	h := newBatchHarness(t)
	h.jobs.marked = 3

	resp, err := h.svc.Run(context.Background(), batch.JobMarkAbsent, batch.TriggerRequest{}, "test")
	require.NoError(t, err)

	assert.Equal(t, "2026-02-28", resp.Period)
	assert.Equal(t, 3, resp.Processed)
	assert.Equal(t, []time.Time{date(2026, 2, 28)}, h.jobs.markAbsentDates)
}

func TestExpireCompOffs(t *testing.T) {
	h := newBatchHarness(t)
	h.compOffs.Seed(compoff.CompOff{UserID: h.employeeID, CreditDays: decimal.NewFromInt(1), Status: compoff.StatusEarned, ExpiresOn: date(2026, 2, 1)})
	h.compOffs.Seed(compoff.CompOff{UserID: h.employeeID, CreditDays: decimal.NewFromInt(1), Status: compoff.StatusEarned, ExpiresOn: date(2026, 5, 1)})

	resp, err := h.svc.Run(context.Background(), batch.JobExpireCompOffs, batch.TriggerRequest{}, "test")
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Processed)
}

func TestRun_DryRunOnlyForPeriodJobs(t *testing.T) {
	h := newBatchHarness(t)

	_, err := h.svc.Run(context.Background(), batch.JobMarkAbsent, batch.TriggerRequest{DryRun: true}, "test")

	assert.ErrorIs(t, err, batch.ErrDryRunUnsupported)
}

func TestMonthEnd_DryRunIsRecorded(t *testing.T) {
	h := newBatchHarness(t)

	resp, err := h.svc.Run(context.Background(), batch.JobMonthEnd, batch.TriggerRequest{DryRun: true}, "cli")
	require.NoError(t, err)

	assert.True(t, resp.DryRun)
	assert.Equal(t, "cli", resp.TriggeredBy)
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, batch.OutcomeProcessed, resp.Outcomes[0].Status)

	runs, err := h.svc.ListRuns(context.Background(), nil, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].DryRun)
}
