package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	compoffservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/servicetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLeaves records reconciliation calls and reports leave from a fixed set.
type fakeLeaves struct {
	onLeave    map[string]bool
	result     *leave.ReconcileResult
	reconciled []time.Time
}

func (f *fakeLeaves) TodayLeave(ctx context.Context, userID string, today time.Time) (leave.TodayLeaveResponse, error) {
	return leave.TodayLeaveResponse{OnLeave: f.onLeave[userID]}, nil
}

func (f *fakeLeaves) ReconcileWorkedDay(ctx context.Context, userID string, day time.Time) (*leave.ReconcileResult, error) {
	f.reconciled = append(f.reconciled, day)
	return f.result, nil
}

type attendanceHarness struct {
	svc         *AttendanceServiceImpl
	regs        *RegularizationServiceImpl
	wfh         *WFHServiceImpl
	users       *servicetest.Users
	attendances *servicetest.Attendances
	compOffs    *servicetest.CompOffs
	holidays    *servicetest.Holidays
	wfhs        *servicetest.WFHs
	leaves      *fakeLeaves
	activity    *servicetest.ActivityLog
	tx          *servicetest.Transactor
	now         time.Time
	employeeID  string
	adminID     string
}

// 2026-03-02 is a Monday; the employee's weekly off is Sunday.
func newAttendanceHarness(t *testing.T) *attendanceHarness {
	t.Helper()
	h := &attendanceHarness{
		users:       servicetest.NewUsers(),
		attendances: servicetest.NewAttendances(),
		compOffs:    servicetest.NewCompOffs(),
		holidays:    servicetest.NewHolidays(),
		wfhs:        servicetest.NewWFHs(),
		leaves:      &fakeLeaves{onLeave: map[string]bool{}},
		activity:    &servicetest.ActivityLog{},
		now:         time.Date(2026, 3, 2, 10, 5, 0, 0, time.UTC),
	}
	h.employeeID = h.users.Seed(user.User{Name: "Asha", Role: user.RoleEmployee, WeeklyOff: user.FromTime(time.Sunday), IsActive: true})
	h.adminID = h.users.Seed(user.User{Name: "Hari", Role: user.RoleAdmin, WeeklyOff: user.FromTime(time.Sunday), IsActive: true})

	tx := &servicetest.Transactor{}
	h.tx = tx
	h.attendances.Locker = tx
	rules := NewRules(testPolicy(), time.UTC)
	locations := servicetest.NewLocations(office)
	shifts := servicetest.NewShifts()
	compOffService := compoffservice.NewCompOffService(h.compOffs, h.users, tx, h.activity, nil, 90)

	h.svc = NewAttendanceService(tx, h.attendances, shifts, locations, h.wfhs, h.users, h.holidays,
		h.compOffs, compOffService, h.leaves, h.activity, nil, nil, rules, Geofence{}, 23)
	h.svc.now = func() time.Time { return h.now }

	h.regs = NewRegularizationService(tx, servicetest.NewRegularizations(), h.attendances, shifts, h.users, h.activity, nil, nil, rules)
	h.regs.now = func() time.Time { return h.now }

	h.wfh = NewWFHService(tx, h.wfhs, h.users, h.activity, nil, nil, time.UTC)
	h.wfh.now = func() time.Time { return h.now }
	return h
}

func (h *attendanceHarness) at(hh, mm int) {
	h.now = time.Date(h.now.Year(), h.now.Month(), h.now.Day(), hh, mm, 0, 0, time.UTC)
}

func (h *attendanceHarness) onDay(y int, m time.Month, d int) {
	h.now = time.Date(y, m, d, h.now.Hour(), h.now.Minute(), 0, 0, time.UTC)
}

func inOffice() attendance.PunchRequest {
	return attendance.PunchRequest{Latitude: ptr(12.9717), Longitude: ptr(77.5947), ClientIP: "203.0.113.10"}
}

// ===== PunchIn =====

func TestPunchIn_CreatesRow(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()

	resp, err := h.svc.PunchIn(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	assert.Equal(t, "2026-03-02", resp.Attendance.Date)
	assert.Equal(t, "present", resp.Attendance.Status)
	assert.False(t, resp.Attendance.IsLate)
	assert.False(t, resp.Attendance.IsOffDay)
	assert.Nil(t, resp.LeaveAdjustment)
	require.Len(t, h.leaves.reconciled, 1)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), h.leaves.reconciled[0])
	assert.Equal(t, []activity.Action{activity.ActionPunchIn}, h.activity.Actions())

	_, err = h.svc.PunchIn(ctx, h.employeeID, inOffice())
	assert.ErrorIs(t, err, attendance.ErrAlreadyPunchedIn)
}

func TestPunchIn_LocksUserBeforeAttendanceRow(t *testing.T) {
	h := newAttendanceHarness(t)

	_, err := h.svc.PunchIn(context.Background(), h.employeeID, inOffice())
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(h.tx.Locks), 2)
	assert.Equal(t, []string{"leave:" + h.employeeID, "row:attendance:" + h.employeeID}, h.tx.Locks[:2])
}

func TestPunchIn_LateAfterGrace(t *testing.T) {
	h := newAttendanceHarness(t)
	h.at(10, 30)

	resp, err := h.svc.PunchIn(context.Background(), h.employeeID, inOffice())
	require.NoError(t, err)

	assert.True(t, resp.Attendance.IsLate)
}

func TestPunchIn_Geofence(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	far := attendance.PunchRequest{Latitude: ptr(13.2), Longitude: ptr(77.5946), ClientIP: "203.0.113.10"}

	_, err := h.svc.PunchIn(ctx, h.employeeID, far)
	assert.ErrorIs(t, err, attendance.ErrOutsideAllowedRadius)

	_, err = h.svc.PunchIn(ctx, h.employeeID, attendance.PunchRequest{ClientIP: "192.0.2.44"})
	assert.ErrorIs(t, err, attendance.ErrIPNotAllowed)

	// Approved WFH waives both checks
	h.wfhs.Rows["w1"] = &attendance.WFHRequest{ID: "w1", UserID: h.employeeID, Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Status: attendance.RequestApproved}
	resp, err := h.svc.PunchIn(ctx, h.employeeID, far)
	require.NoError(t, err)
	assert.True(t, resp.Attendance.IsWFH)
}

func TestPunchIn_ReturnsLeaveAdjustment(t *testing.T) {
	h := newAttendanceHarness(t)
	h.leaves.result = &leave.ReconcileResult{Action: "cancelled"}

	resp, err := h.svc.PunchIn(context.Background(), h.employeeID, inOffice())
	require.NoError(t, err)

	require.NotNil(t, resp.LeaveAdjustment)
	assert.Equal(t, "cancelled", resp.LeaveAdjustment.Action)
}

func TestPunchIn_ReusesAbsentRow(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := h.attendances.Create(ctx, attendance.Attendance{UserID: h.employeeID, Date: day, Status: attendance.StatusAbsent})
	require.NoError(t, err)

	_, err = h.svc.PunchIn(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	assert.Len(t, h.attendances.Rows, 1)
	row, ok := h.attendances.Find(h.employeeID, day)
	require.True(t, ok)
	assert.Equal(t, attendance.StatusPresent, row.Status)
	assert.NotNil(t, row.PunchIn)
}

// ===== PunchOut =====

func TestPunchOut_DerivesHoursAndStatus(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	h.at(10, 0)
	_, err := h.svc.PunchIn(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	h.at(18, 30)
	resp, err := h.svc.PunchOut(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	assert.Equal(t, "7.5", resp.Attendance.WorkingHours.String())
	assert.Equal(t, "present", resp.Attendance.Status)
	assert.Nil(t, resp.CompOffEarned)

	_, err = h.svc.PunchOut(ctx, h.employeeID, inOffice())
	assert.ErrorIs(t, err, attendance.ErrAlreadyPunchedOut)
}

func TestPunchOut_ShortDayIsHalfDay(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	h.at(10, 0)
	_, err := h.svc.PunchIn(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	h.at(15, 0)
	resp, err := h.svc.PunchOut(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	assert.Equal(t, "4", resp.Attendance.WorkingHours.String())
	assert.Equal(t, "half_day", resp.Attendance.Status)
}

func TestPunchOut_WithoutPunchIn(t *testing.T) {
	h := newAttendanceHarness(t)

	_, err := h.svc.PunchOut(context.Background(), h.employeeID, inOffice())

	assert.ErrorIs(t, err, attendance.ErrNotPunchedIn)
}

func TestPunchOut_OffDayEarnsCompOff(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	h.onDay(2026, 3, 1) // Sunday
	h.at(9, 0)
	in, err := h.svc.PunchIn(ctx, h.employeeID, inOffice())
	require.NoError(t, err)
	assert.True(t, in.Attendance.IsOffDay)
	assert.False(t, in.Attendance.IsLate)

	h.at(17, 0)
	resp, err := h.svc.PunchOut(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	require.NotNil(t, resp.CompOffEarned)
	assert.True(t, decimal.NewFromInt(1).Equal(resp.CompOffEarned.CreditDays))
	assert.Equal(t, "2026-05-30", resp.CompOffEarned.ExpiresOn)

	credits := h.compOffs.ByUser(h.employeeID)
	require.Len(t, credits, 1)
	assert.Equal(t, compoff.SourceOffDayWork, credits[0].Source)
	assert.Equal(t, "2026-03-01", credits[0].SourceKey)
	require.NotNil(t, credits[0].AttendanceID)

	// A second credit for the same day is a no-op
	row, _ := h.attendances.Find(h.employeeID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	again, err := h.svc.earnOffDayCredit(ctx, row)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Len(t, h.compOffs.ByUser(h.employeeID), 1)
}

func TestPunchOut_HolidayShortSessionEarnsHalf(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	_, err := h.holidays.Create(ctx, leave.Holiday{Name: "Holi", Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	h.onDay(2026, 3, 4)
	h.at(10, 0)
	_, err = h.svc.PunchIn(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	h.at(15, 0)
	resp, err := h.svc.PunchOut(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	assert.True(t, resp.Attendance.IsOffDay)
	require.NotNil(t, resp.CompOffEarned)
	assert.True(t, decimal.NewFromFloat(0.5).Equal(resp.CompOffEarned.CreditDays))
}

// ===== Today =====

func TestToday_Holiday(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	_, err := h.holidays.Create(ctx, leave.Holiday{Name: "Holi", Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	h.onDay(2026, 3, 4)
	h.leaves.onLeave[h.employeeID] = true

	resp, err := h.svc.Today(ctx, h.employeeID)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-04", resp.Date)
	assert.True(t, resp.IsHoliday)
	assert.True(t, resp.IsOffDay)
	assert.Equal(t, "Holi", resp.HolidayName)
	assert.True(t, resp.OnLeave)
	assert.Nil(t, resp.Attendance)
}

// ===== Admin edits =====

func TestUpdateAttendance_OverrideAndClear(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	h.at(10, 0)
	_, err := h.svc.PunchIn(ctx, h.employeeID, inOffice())
	require.NoError(t, err)
	h.at(12, 0)
	out, err := h.svc.PunchOut(ctx, h.employeeID, inOffice())
	require.NoError(t, err)
	require.Equal(t, "half_day", out.Attendance.Status)

	absent := "absent"
	resp, err := h.svc.UpdateAttendance(ctx, h.adminID, attendance.UpdateAttendanceRequest{ID: out.Attendance.ID, StatusOverride: &absent})
	require.NoError(t, err)
	assert.Equal(t, "absent", resp.Status)
	assert.Equal(t, "half_day", resp.ComputedStatus)

	// Moving the punch out re-derives the computed status but keeps the override
	later := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	resp, err = h.svc.UpdateAttendance(ctx, h.adminID, attendance.UpdateAttendanceRequest{ID: out.Attendance.ID, PunchOutTime: &later})
	require.NoError(t, err)
	assert.Equal(t, "present", resp.ComputedStatus)
	assert.Equal(t, "absent", resp.Status)

	resp, err = h.svc.UpdateAttendance(ctx, h.adminID, attendance.UpdateAttendanceRequest{ID: out.Attendance.ID, ClearOverride: true})
	require.NoError(t, err)
	assert.Equal(t, "present", resp.Status)
	assert.Nil(t, resp.StatusOverride)
}

func TestUpdateAttendance_NotFound(t *testing.T) {
	h := newAttendanceHarness(t)

	_, err := h.svc.UpdateAttendance(context.Background(), h.adminID, attendance.UpdateAttendanceRequest{ID: "missing"})

	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

// ===== Jobs =====

func TestAutoPunchOut_ClosesOpenSessions(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	h.at(10, 0)
	_, err := h.svc.PunchIn(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	closed, err := h.svc.AutoPunchOut(ctx, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, closed, 1)
	row := closed[0]
	assert.True(t, row.IsAutoPunchOut)
	assert.Equal(t, time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), row.PunchOut.UTC())
	assert.Equal(t, "12", row.WorkingHours.String())
	assert.Contains(t, row.Notes, "Auto punched out")
	assert.Contains(t, h.activity.Actions(), activity.ActionAutoPunchOut)

	again, err := h.svc.AutoPunchOut(ctx, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMarkAbsent(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	onLeaveID := h.users.Seed(user.User{Name: "Ravi", Role: user.RoleEmployee, WeeklyOff: user.FromTime(time.Sunday), IsActive: true})
	h.leaves.onLeave[onLeaveID] = true
	wfhID := h.users.Seed(user.User{Name: "Meera", Role: user.RoleEmployee, WeeklyOff: user.FromTime(time.Sunday), IsActive: true, IsPermanentWFH: true})
	mondayOffID := h.users.Seed(user.User{Name: "Vik", Role: user.RoleEmployee, WeeklyOff: user.FromTime(time.Monday), IsActive: true})
	_, err := h.svc.PunchIn(ctx, h.adminID, inOffice())
	require.NoError(t, err)

	marked, err := h.svc.MarkAbsent(ctx, day)
	require.NoError(t, err)

	assert.Equal(t, 1, marked)
	row, ok := h.attendances.Find(h.employeeID, day)
	require.True(t, ok)
	assert.Equal(t, attendance.StatusAbsent, row.Status)
	for _, id := range []string{onLeaveID, wfhID, mondayOffID} {
		_, ok := h.attendances.Find(id, day)
		assert.False(t, ok, "user %s should be skipped", id)
	}

	marked, err = h.svc.MarkAbsent(ctx, day)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestOffDayStatsAndMonthlyReport(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	h.onDay(2026, 3, 1)
	h.at(9, 0)
	_, err := h.svc.PunchIn(ctx, h.employeeID, inOffice())
	require.NoError(t, err)
	h.at(17, 0)
	_, err = h.svc.PunchOut(ctx, h.employeeID, inOffice())
	require.NoError(t, err)

	stats, err := h.svc.OffDayStats(ctx, h.employeeID, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OffDaysWorked)
	assert.Equal(t, int64(1), stats.CompOffsEarned)
	assert.True(t, decimal.NewFromInt(1).Equal(stats.CompOffAvailable))

	report, err := h.svc.MonthlyReport(ctx, 2026, 3)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 1, report.Rows[0].Present)
	assert.Equal(t, 1, report.Rows[0].OffDayWorked)
}

// ===== Regularization =====

func TestRegularization_ApproveWritesPunches(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	in, out := "10:00", "18:30"

	req, err := h.regs.Apply(ctx, h.employeeID, attendance.ApplyRegularizationRequest{
		Date: "2026-02-27", RequestType: "forgot_punch", RequestedPunchIn: &in, RequestedPunchOut: &out, Reason: "Badge reader down",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", req.Status)

	_, err = h.regs.Apply(ctx, h.employeeID, attendance.ApplyRegularizationRequest{
		Date: "2026-02-27", RequestType: "forgot_punch", RequestedPunchIn: &in, Reason: "again",
	})
	assert.ErrorIs(t, err, attendance.ErrRegularizationPending)

	reviewed, err := h.regs.Review(ctx, h.adminID, req.ID, attendance.ReviewRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "approved", reviewed.Status)

	row, ok := h.attendances.Find(h.employeeID, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "7.5", row.WorkingHours.String())
	assert.Equal(t, attendance.StatusPresent, row.EffectiveStatus())
	require.NotNil(t, row.StatusOverride)
	assert.Contains(t, row.Notes, "Regularized: forgot punch")

	_, err = h.regs.Review(ctx, h.adminID, req.ID, attendance.ReviewRequest{Status: "rejected"})
	assert.ErrorIs(t, err, attendance.ErrRequestAlreadyReviewed)
}

func TestRegularization_Errors(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()
	in := "10:00"

	_, err := h.regs.Apply(ctx, h.employeeID, attendance.ApplyRegularizationRequest{
		Date: "2026-03-02", RequestType: "missed_punch_in", RequestedPunchIn: &in, Reason: "today",
	})
	assert.ErrorIs(t, err, attendance.ErrRegularizationFutureDate)

	req, err := h.regs.Apply(ctx, h.employeeID, attendance.ApplyRegularizationRequest{
		Date: "2026-02-26", RequestType: "missed_punch_in", RequestedPunchIn: &in, Reason: "late bus",
	})
	require.NoError(t, err)

	_, err = h.regs.Cancel(ctx, h.adminID, req.ID)
	assert.ErrorIs(t, err, attendance.ErrNotRequestOwner)

	cancelled, err := h.regs.Cancel(ctx, h.employeeID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = h.regs.Review(ctx, h.adminID, "missing", attendance.ReviewRequest{Status: "approved"})
	assert.ErrorIs(t, err, attendance.ErrRegularizationNotFound)
}

// ===== WFH =====

func TestWFH_ApplyReviewToday(t *testing.T) {
	h := newAttendanceHarness(t)
	ctx := context.Background()

	_, err := h.wfh.Apply(ctx, h.employeeID, attendance.ApplyWFHRequest{Date: "2026-03-01", Reason: "yesterday"})
	assert.ErrorIs(t, err, attendance.ErrWFHPastDate)

	req, err := h.wfh.Apply(ctx, h.employeeID, attendance.ApplyWFHRequest{Date: "2026-03-02", Reason: "plumber visit"})
	require.NoError(t, err)

	_, err = h.wfh.Apply(ctx, h.employeeID, attendance.ApplyWFHRequest{Date: "2026-03-02", Reason: "again"})
	assert.ErrorIs(t, err, attendance.ErrWFHExists)

	status, err := h.wfh.TodayStatus(ctx, h.employeeID)
	require.NoError(t, err)
	assert.False(t, status.IsWFH)
	require.NotNil(t, status.Request)

	_, err = h.wfh.Review(ctx, h.adminID, req.ID, attendance.ReviewRequest{Status: "approved"})
	require.NoError(t, err)

	status, err = h.wfh.TodayStatus(ctx, h.employeeID)
	require.NoError(t, err)
	assert.True(t, status.IsWFH)
	assert.Equal(t, []activity.Action{activity.ActionWFHApplied, activity.ActionWFHReviewed}, h.activity.Actions())
}

func TestShiftService(t *testing.T) {
	svc := NewShiftService(servicetest.NewShifts(), servicetest.NewLocations())
	ctx := context.Background()
	bs, be := "13:00", "13:30"

	created, err := svc.CreateShift(ctx, attendance.CreateShiftRequest{Name: "Early", StartTime: "07:00", EndTime: "15:00", BreakStart: &bs, BreakEnd: &be})
	require.NoError(t, err)
	assert.Equal(t, "07:00", created.StartTime)
	require.NotNil(t, created.BreakStart)

	late := "16:00"
	_, err = svc.UpdateShift(ctx, attendance.UpdateShiftRequest{ID: created.ID, BreakStart: &late})
	assert.ErrorIs(t, err, attendance.ErrInvalidBreakWindow)

	updated, err := svc.UpdateShift(ctx, attendance.UpdateShiftRequest{ID: created.ID, ClearBreak: true})
	require.NoError(t, err)
	assert.Nil(t, updated.BreakStart)

	_, err = svc.UpdateShift(ctx, attendance.UpdateShiftRequest{ID: "missing"})
	assert.ErrorIs(t, err, attendance.ErrShiftNotFound)

	loc, err := svc.CreateLocation(ctx, attendance.OfficeLocationRequest{Name: "HQ", Latitude: 12.97, Longitude: 77.59, RadiusMeters: 150})
	require.NoError(t, err)
	assert.True(t, loc.IsActive)
	require.NoError(t, svc.DeleteLocation(ctx, loc.ID))
	assert.ErrorIs(t, svc.DeleteLocation(ctx, loc.ID), attendance.ErrOfficeLocationNotFound)
}
