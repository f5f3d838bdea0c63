package leave

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	compoffservice "github.com/cmlabs-hris/hris-attendance-go/internal/service/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/servicetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	svc         *LeaveServiceImpl
	tx          *servicetest.Transactor
	activity    *servicetest.ActivityLog
	compOffs    *servicetest.CompOffs
	balances    *servicetest.Balances
	requests    *servicetest.Requests
	allocations *servicetest.Allocations
	attendances *servicetest.Attendances
	sick        leave.LeaveType
	unpaid      leave.LeaveType
	employeeID  string
	adminID     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		tx:          &servicetest.Transactor{},
		activity:    &servicetest.ActivityLog{},
		compOffs:    servicetest.NewCompOffs(),
		balances:    servicetest.NewBalances(),
		requests:    servicetest.NewRequests(),
		attendances: servicetest.NewAttendances(),
		sick: leave.LeaveType{
			ID: "sl", Code: "SL", Name: "Sick Leave",
			AnnualQuota: d(12), MonthlyQuota: d(1), IsPaid: true, IsActive: true,
		},
		unpaid: leave.LeaveType{
			ID: "ul", Code: "UL", Name: "Unpaid Leave",
			AnnualQuota: d(0), MonthlyQuota: d(0), IsPaid: false, IsActive: true,
		},
	}
	h.allocations = servicetest.NewAllocations(h.compOffs)
	h.requests.Locker = h.tx
	h.attendances.Locker = h.tx

	users := servicetest.NewUsers()
	h.employeeID = users.Seed(user.User{Name: "Asha", Mobile: "9000000001", Role: user.RoleEmployee, IsActive: true})
	h.adminID = users.Seed(user.User{Name: "Hari", Mobile: "9000000002", Role: user.RoleAdmin, IsActive: true})

	compOffService := compoffservice.NewCompOffService(h.compOffs, users, h.tx, h.activity, nil, 90)
	h.svc = NewLeaveService(
		h.tx,
		servicetest.NewLeaveTypes(h.sick, h.unpaid),
		h.balances,
		h.requests,
		h.allocations,
		servicetest.NewHolidays(),
		users,
		h.attendances,
		compOffService,
		h.activity,
		nil,
		nil,
		time.UTC,
	)
	h.svc.now = func() time.Time { return date("2026-03-01").Add(9 * time.Hour) }
	return h
}

func (h *harness) seedCompOff(days float64, expires string) string {
	return h.compOffs.Seed(compoff.CompOff{
		UserID:     h.employeeID,
		EarnedDate: date("2026-02-01"),
		CreditDays: d(days),
		Status:     compoff.StatusEarned,
		ExpiresOn:  date(expires),
		Source:     compoff.SourceManual,
	})
}

func (h *harness) apply(t *testing.T, leaveTypeID, start, end string) leave.LeaveRequestResponse {
	t.Helper()
	resp, err := h.svc.Apply(context.Background(), h.employeeID, leave.ApplyLeaveRequest{
		LeaveTypeID: leaveTypeID,
		Reason:      "fever",
		Start:       date(start),
		End:         date(end),
	})
	require.NoError(t, err)
	return resp
}

func (h *harness) approve(t *testing.T, id string) leave.LeaveRequestResponse {
	t.Helper()
	resp, err := h.svc.Review(context.Background(), h.adminID, id, leave.ReviewLeaveRequest{Status: "approved"})
	require.NoError(t, err)
	return resp
}

func assertAllocation(t *testing.T, got leave.Allocation, compOff, paid, lop float64) {
	t.Helper()
	if !got.CompOff.Equal(d(compOff)) || !got.Paid.Equal(d(paid)) || !got.LOP.Equal(d(lop)) {
		t.Errorf("allocation = (%s, %s, %s), want (%v, %v, %v)", got.CompOff, got.Paid, got.LOP, compOff, paid, lop)
	}
}

func respAllocation(r leave.LeaveRequestResponse) leave.Allocation {
	return leave.Allocation{CompOff: r.CompOffDays, Paid: r.PaidDays, LOP: r.LOPDays}
}

func sumDays(entries []leave.AllocationEntry, state leave.AllocationState) map[leave.AllocationSource]decimal.Decimal {
	out := map[leave.AllocationSource]decimal.Decimal{}
	for _, e := range entries {
		if e.State == state {
			out[e.Source] = out[e.Source].Add(e.Days)
		}
	}
	return out
}

// ===== APPLY =====

func TestLeaveService_Apply_HoldsCapacity(t *testing.T) {
	h := newHarness(t)
	compOffID := h.seedCompOff(1, "2026-06-30")

	// Act
	resp := h.apply(t, "sl", "2026-03-02", "2026-03-04")

	// Assert
	assert.Equal(t, "pending", resp.Status)
	assert.True(t, resp.TotalDays.Equal(d(3)))
	assertAllocation(t, respAllocation(resp), 1, 1, 1)

	held := sumDays(h.allocations.ForRequest(resp.ID), leave.StateHeld)
	assert.True(t, held[leave.SourceCompOff].Equal(d(1)))
	assert.True(t, held[leave.SourcePaid].Equal(d(1)))
	assert.True(t, held[leave.SourceLOP].Equal(d(1)))

	// holds do not touch the ledger
	assert.Equal(t, compoff.StatusEarned, h.compOffs.Get(compOffID).Status)
	balance, ok := h.balances.Find(h.employeeID, "sl", 2026, 3)
	require.True(t, ok)
	assert.True(t, balance.UsedLeaves.IsZero())

	assert.Contains(t, h.tx.Locks, "leave:"+h.employeeID)
	assert.Equal(t, []activity.Action{activity.ActionLeaveApplied}, h.activity.Actions())
}

func TestLeaveService_Apply_HeldCapacityNotOffered(t *testing.T) {
	h := newHarness(t)
	h.seedCompOff(1, "2026-06-30")
	h.apply(t, "sl", "2026-03-02", "2026-03-03")

	// Act
	second := h.apply(t, "sl", "2026-03-10", "2026-03-10")

	// Assert
	assertAllocation(t, respAllocation(second), 0, 0, 1)
}

func TestLeaveService_Apply_Errors(t *testing.T) {
	h := newHarness(t)
	h.apply(t, "sl", "2026-03-02", "2026-03-04")

	tests := []struct {
		name        string
		leaveTypeID string
		start, end  string
		wantErr     error
	}{
		{"overlap with pending", "sl", "2026-03-04", "2026-03-05", leave.ErrOverlappingLeave},
		{"unknown type", "nope", "2026-03-10", "2026-03-10", leave.ErrLeaveTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Apply(context.Background(), h.employeeID, leave.ApplyLeaveRequest{
				LeaveTypeID: tt.leaveTypeID,
				Reason:      "x",
				Start:       date(tt.start),
				End:         date(tt.end),
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLeaveService_Apply_UnpaidTypeSkipsPaid(t *testing.T) {
	h := newHarness(t)

	resp := h.apply(t, "ul", "2026-03-02", "2026-03-03")

	assertAllocation(t, respAllocation(resp), 0, 0, 2)
}

// ===== REVIEW =====

func TestLeaveService_Review_ConsumesSoonestExpiringCompOff(t *testing.T) {
	h := newHarness(t)
	soon := h.seedCompOff(1, "2026-04-30")
	later := h.seedCompOff(1, "2026-05-31")
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-02")

	// Act
	resp := h.approve(t, applied.ID)

	// Assert
	assert.Equal(t, "approved", resp.Status)
	assertAllocation(t, respAllocation(resp), 1, 0, 0)
	assert.Equal(t, compoff.StatusUsed, h.compOffs.Get(soon).Status)
	assert.Equal(t, compoff.StatusEarned, h.compOffs.Get(later).Status)

	entries := h.allocations.ForRequest(applied.ID)
	assert.Empty(t, sumDays(entries, leave.StateHeld))
	consumed := sumDays(entries, leave.StateConsumed)
	assert.True(t, consumed[leave.SourceCompOff].Equal(d(1)))

	row, ok := h.attendances.Find(h.employeeID, date("2026-03-02"))
	require.True(t, ok)
	assert.Equal(t, attendance.StatusOnLeave, row.Status)
	assert.Equal(t, h.adminID, *resp.ReviewedBy)
}

func TestLeaveService_Review_SickQuotaOneNoCompOff(t *testing.T) {
	h := newHarness(t)
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-04")

	resp := h.approve(t, applied.ID)

	assertAllocation(t, respAllocation(resp), 0, 1, 2)
	balance, ok := h.balances.Find(h.employeeID, "sl", 2026, 3)
	require.True(t, ok)
	assert.True(t, balance.UsedLeaves.Equal(d(1)))
	assert.True(t, balance.LOPDays.Equal(d(2)))
	assert.True(t, balance.Remaining().IsZero())
	for _, day := range []string{"2026-03-02", "2026-03-03", "2026-03-04"} {
		_, ok := h.attendances.Find(h.employeeID, date(day))
		assert.True(t, ok, "attendance for %s", day)
	}
}

func TestLeaveService_Review_RecomputesAgainstCurrentCapacity(t *testing.T) {
	h := newHarness(t)
	compOffID := h.seedCompOff(1, "2026-06-30")
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-02")
	assertAllocation(t, respAllocation(applied), 1, 0, 0)

	// the credit disappears between apply and review
	h.compOffs.Rows[compOffID].Status = compoff.StatusCancelled

	resp := h.approve(t, applied.ID)

	assertAllocation(t, respAllocation(resp), 0, 1, 0)
}

func TestLeaveService_Review_PartialDrawKeepsOtherHolds(t *testing.T) {
	h := newHarness(t)
	compOffID := h.seedCompOff(2, "2026-06-30")
	first := h.apply(t, "ul", "2026-03-02", "2026-03-02")
	second := h.apply(t, "ul", "2026-03-03", "2026-03-03")
	assertAllocation(t, respAllocation(first), 1, 0, 0)
	assertAllocation(t, respAllocation(second), 1, 0, 0)

	h.approve(t, first.ID)

	// the unused day moved to a remainder row, still held by the second request
	var remainderID string
	for _, c := range h.compOffs.ByUser(h.employeeID) {
		if c.ID != compOffID {
			remainderID = c.ID
		}
	}
	require.NotEmpty(t, remainderID)
	for _, e := range h.allocations.ForRequest(second.ID) {
		if e.State == leave.StateHeld && e.Source == leave.SourceCompOff {
			assert.Equal(t, remainderID, *e.CompOffID)
		}
	}

	third := h.apply(t, "ul", "2026-03-10", "2026-03-10")
	assertAllocation(t, respAllocation(third), 0, 0, 1)

	resp := h.approve(t, second.ID)
	assertAllocation(t, respAllocation(resp), 1, 0, 0)
	assert.Equal(t, compoff.StatusUsed, h.compOffs.Get(remainderID).Status)
}

func TestLeaveService_Review_LocksUserBeforeRequestRow(t *testing.T) {
	h := newHarness(t)
	applied := h.apply(t, "ul", "2026-03-02", "2026-03-02")
	h.tx.Locks = nil

	h.approve(t, applied.ID)

	require.GreaterOrEqual(t, len(h.tx.Locks), 3)
	assert.Equal(t, []string{
		"leave:" + h.employeeID,
		"row:leave_request:" + applied.ID,
	}, h.tx.Locks[:2])
	// marking the day on leave locks the attendance row after the user
	assert.Contains(t, h.tx.Locks[2:], "row:attendance:"+h.employeeID)
}

func TestLeaveService_AdminUpdate_LocksUserBeforeRequestRow(t *testing.T) {
	h := newHarness(t)
	applied := h.apply(t, "ul", "2026-03-02", "2026-03-02")
	h.tx.Locks = nil

	remarks := "moved by admin"
	_, err := h.svc.AdminUpdate(context.Background(), h.adminID, leave.AdminUpdateLeaveRequest{ID: applied.ID, ReviewRemarks: &remarks})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(h.tx.Locks), 2)
	assert.Equal(t, []string{
		"leave:" + h.employeeID,
		"row:leave_request:" + applied.ID,
	}, h.tx.Locks[:2])
}

func TestLeaveService_Review_NotifiesChangedAllocation(t *testing.T) {
	h := newHarness(t)
	notifier := &servicetest.Notifier{}
	h.svc.notificationService = notifier

	applied := h.apply(t, "ul", "2026-03-02", "2026-03-02")
	assertAllocation(t, respAllocation(applied), 0, 0, 1)
	h.seedCompOff(1, "2026-06-30")

	resp := h.approve(t, applied.ID)
	assertAllocation(t, respAllocation(resp), 1, 0, 0)

	sent := notifier.To(h.employeeID)
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeLeaveApproved, sent[0].Type)
	assert.Equal(t, true, sent[0].Data["allocation_changed"])
	assert.Equal(t, "1", sent[0].Data["applied_lop_days"])
	assert.Equal(t, "1", sent[0].Data["comp_off_days"])
	assert.Contains(t, sent[0].Message, "changed since you applied")
}

func TestLeaveService_Review_UnchangedAllocationPlainNotice(t *testing.T) {
	h := newHarness(t)
	notifier := &servicetest.Notifier{}
	h.svc.notificationService = notifier
	applied := h.apply(t, "ul", "2026-03-02", "2026-03-02")

	h.approve(t, applied.ID)

	sent := notifier.To(h.employeeID)
	require.Len(t, sent, 1)
	assert.NotContains(t, sent[0].Data, "allocation_changed")
	assert.Equal(t, "Your leave for 2026-03-02 was approved", sent[0].Message)
}

func TestLeaveService_Review_Reject(t *testing.T) {
	h := newHarness(t)
	compOffID := h.seedCompOff(1, "2026-06-30")
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-02")

	resp, err := h.svc.Review(context.Background(), h.adminID, applied.ID, leave.ReviewLeaveRequest{Status: "rejected", Remarks: "busy week"})
	require.NoError(t, err)

	assert.Equal(t, "rejected", resp.Status)
	assert.Equal(t, "busy week", resp.ReviewRemarks)
	assert.Empty(t, sumDays(h.allocations.ForRequest(applied.ID), leave.StateHeld))
	assert.Equal(t, compoff.StatusEarned, h.compOffs.Get(compOffID).Status)

	_, err = h.svc.Review(context.Background(), h.adminID, applied.ID, leave.ReviewLeaveRequest{Status: "approved"})
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyProcessed)
}

// ===== CANCEL =====

func TestLeaveService_CancelRequest_ReleasesHolds(t *testing.T) {
	h := newHarness(t)
	h.seedCompOff(1, "2026-06-30")
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-03")

	_, err := h.svc.CancelRequest(context.Background(), h.adminID, applied.ID)
	assert.ErrorIs(t, err, leave.ErrNotLeaveOwner)

	resp, err := h.svc.CancelRequest(context.Background(), h.employeeID, applied.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Empty(t, sumDays(h.allocations.ForRequest(applied.ID), leave.StateHeld))

	// the released capacity is offered again
	again := h.apply(t, "sl", "2026-03-02", "2026-03-03")
	assertAllocation(t, respAllocation(again), 1, 1, 0)
}

// ===== RECONCILE =====

func TestLeaveService_ReconcileWorkedDay_SingleDayCancelsAndRestores(t *testing.T) {
	h := newHarness(t)
	compOffID := h.seedCompOff(1, "2026-06-30")
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-02")
	h.approve(t, applied.ID)
	require.Equal(t, compoff.StatusUsed, h.compOffs.Get(compOffID).Status)

	// Act
	result, err := h.svc.ReconcileWorkedDay(context.Background(), h.employeeID, date("2026-03-02"))

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, string(ActionCancelled), result.Action)
	assert.Equal(t, "cancelled", result.Request.Status)
	assert.Nil(t, result.NewRequest)
	assertAllocation(t, result.Restored, 1, 0, 0)

	restored := h.compOffs.Get(compOffID)
	assert.Equal(t, compoff.StatusEarned, restored.Status)
	assert.True(t, restored.CreditDays.Equal(d(1)))
	assert.Empty(t, sumDays(h.allocations.ForRequest(applied.ID), leave.StateConsumed))
	assert.Contains(t, h.activity.Actions(), activity.ActionLeaveAdjusted)
}

func TestLeaveService_ReconcileWorkedDay_InteriorDaySplits(t *testing.T) {
	h := newHarness(t)
	h.seedCompOff(1, "2026-06-30")
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-04")
	approved := h.approve(t, applied.ID)
	assertAllocation(t, respAllocation(approved), 1, 1, 1)

	// Act
	result, err := h.svc.ReconcileWorkedDay(context.Background(), h.employeeID, date("2026-03-03"))

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, string(ActionSplitAround), result.Action)

	assert.Equal(t, "2026-03-02", result.Request.StartDate)
	assert.Equal(t, "2026-03-02", result.Request.EndDate)
	assertAllocation(t, respAllocation(result.Request), 1, 0, 0)

	require.NotNil(t, result.NewRequest)
	assert.Equal(t, "2026-03-04", result.NewRequest.StartDate)
	assert.Equal(t, "2026-03-04", result.NewRequest.EndDate)
	assert.Equal(t, "approved", result.NewRequest.Status)
	assert.Equal(t, applied.ID, *result.NewRequest.SplitFromID)
	assertAllocation(t, respAllocation(*result.NewRequest), 0, 1, 0)

	total := result.Request.TotalDays.Add(result.NewRequest.TotalDays)
	assert.True(t, total.Equal(d(2)))
	assertAllocation(t, result.Restored, 0, 0, 1)

	balance, _ := h.balances.Find(h.employeeID, "sl", 2026, 3)
	assert.True(t, balance.UsedLeaves.Equal(d(1)))
	assert.True(t, balance.LOPDays.IsZero())

	tailConsumed := sumDays(h.allocations.ForRequest(result.NewRequest.ID), leave.StateConsumed)
	assert.True(t, tailConsumed[leave.SourcePaid].Equal(d(1)))
}

func TestLeaveService_ReconcileWorkedDay_FirstDayMovesStart(t *testing.T) {
	h := newHarness(t)
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-03")
	h.approve(t, applied.ID)

	result, err := h.svc.ReconcileWorkedDay(context.Background(), h.employeeID, date("2026-03-02"))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, string(ActionStartMoved), result.Action)
	assert.Equal(t, "2026-03-03", result.Request.StartDate)
	assertAllocation(t, respAllocation(result.Request), 0, 1, 0)
	assertAllocation(t, result.Restored, 0, 0, 1)
}

func TestLeaveService_ReconcileWorkedDay_NoLeave(t *testing.T) {
	h := newHarness(t)

	result, err := h.svc.ReconcileWorkedDay(context.Background(), h.employeeID, date("2026-03-02"))

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestLeaveService_CancelForDate(t *testing.T) {
	h := newHarness(t)
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-03")
	h.approve(t, applied.ID)

	_, err := h.svc.CancelForDate(context.Background(), h.employeeID, leave.CancelForDateRequest{Date: "2026-03-10"})
	assert.ErrorIs(t, err, leave.ErrNoLeaveForDate)

	result, err := h.svc.CancelForDate(context.Background(), h.employeeID, leave.CancelForDateRequest{Date: "2026-03-03"})
	require.NoError(t, err)
	assert.Equal(t, string(ActionEndMoved), result.Action)

	_, ok := h.attendances.Find(h.employeeID, date("2026-03-03"))
	assert.False(t, ok, "placeholder on_leave row should be removed")
	_, ok = h.attendances.Find(h.employeeID, date("2026-03-02"))
	assert.True(t, ok)
}

func TestLeaveService_CancelForDate_DefaultsToBusinessToday(t *testing.T) {
	h := newHarness(t)
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-03")
	h.approve(t, applied.ID)

	// 20:00 UTC on the 2nd is already the 3rd in India
	h.svc.loc = time.FixedZone("IST", 5*3600+1800)
	h.svc.now = func() time.Time { return time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC) }

	result, err := h.svc.CancelForDate(context.Background(), h.employeeID, leave.CancelForDateRequest{})
	require.NoError(t, err)

	assert.Equal(t, string(ActionEndMoved), result.Action)
	assert.Equal(t, "2026-03-02", result.Request.EndDate)
}

func TestCancelForDateRequest_DateOptional(t *testing.T) {
	assert.NoError(t, (&leave.CancelForDateRequest{}).Validate())
	assert.Error(t, (&leave.CancelForDateRequest{Date: "03/02/2026"}).Validate())
}

// ===== ADMIN UPDATE =====

func TestLeaveService_AdminUpdate_ManualAllocationMustMatch(t *testing.T) {
	h := newHarness(t)
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-03")
	h.approve(t, applied.ID)

	zero, one, two := d(0), d(1), d(2)
	_, err := h.svc.AdminUpdate(context.Background(), h.adminID, leave.AdminUpdateLeaveRequest{
		ID: applied.ID, CompOffDays: &zero, PaidDays: &one, LOPDays: &one,
	})
	require.NoError(t, err)

	_, err = h.svc.AdminUpdate(context.Background(), h.adminID, leave.AdminUpdateLeaveRequest{
		ID: applied.ID, CompOffDays: &zero, PaidDays: &two, LOPDays: &one,
	})
	assert.ErrorIs(t, err, leave.ErrAllocationMismatch)
}

func TestLeaveService_AdminUpdate_ApprovedDatesRestoredThenConsumed(t *testing.T) {
	h := newHarness(t)
	applied := h.apply(t, "sl", "2026-03-02", "2026-03-04")
	h.approve(t, applied.ID)

	end := "2026-03-02"
	resp, err := h.svc.AdminUpdate(context.Background(), h.adminID, leave.AdminUpdateLeaveRequest{ID: applied.ID, EndDate: &end})
	require.NoError(t, err)

	assert.True(t, resp.TotalDays.Equal(d(1)))
	assertAllocation(t, respAllocation(resp), 0, 1, 0)
	balance, _ := h.balances.Find(h.employeeID, "sl", 2026, 3)
	assert.True(t, balance.UsedLeaves.Equal(d(1)))
	assert.True(t, balance.LOPDays.IsZero())
	_, ok := h.attendances.Find(h.employeeID, date("2026-03-04"))
	assert.False(t, ok)
}

// ===== BALANCES =====

func sickBalance(t *testing.T, resp leave.MyBalanceResponse) leave.BalanceResponse {
	t.Helper()
	for _, b := range resp.Balances {
		if b.LeaveTypeCode == "SL" {
			return b
		}
	}
	t.Fatalf("no SL balance in %+v", resp.Balances)
	return leave.BalanceResponse{}
}

func TestLeaveService_GetMyBalance_RollsOverPreviousMonth(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	march, err := h.svc.GetMyBalance(ctx, h.employeeID, 2026, 3)
	require.NoError(t, err)
	assert.True(t, sickBalance(t, march).Available.Equal(d(1)))

	// Act
	april, err := h.svc.GetMyBalance(ctx, h.employeeID, 2026, 4)

	// Assert
	require.NoError(t, err)
	assert.True(t, sickBalance(t, april).CarriedForward.Equal(d(1)))
	assert.True(t, sickBalance(t, april).Available.Equal(d(2)))

	// no November row, nothing to roll over
	december, err := h.svc.GetMyBalance(ctx, h.employeeID, 2026, 12)
	require.NoError(t, err)
	assert.True(t, sickBalance(t, december).CarriedForward.IsZero())

	// year boundary follows the per-type carry-forward rule
	january, err := h.svc.GetMyBalance(ctx, h.employeeID, 2027, 1)
	require.NoError(t, err)
	assert.True(t, sickBalance(t, january).CarriedForward.IsZero())
}

func TestLeaveService_UpdateBalance_RefreshesNextMonthRollover(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	march, err := h.svc.GetMyBalance(ctx, h.employeeID, 2026, 3)
	require.NoError(t, err)
	_, err = h.svc.GetMyBalance(ctx, h.employeeID, 2026, 4)
	require.NoError(t, err)

	used := d(1)
	_, err = h.svc.UpdateBalance(ctx, leave.UpdateBalanceRequest{ID: sickBalance(t, march).ID, UsedLeaves: &used})
	require.NoError(t, err)

	april, ok := h.balances.Find(h.employeeID, "sl", 2026, 4)
	require.True(t, ok)
	assert.True(t, april.CarriedForward.IsZero())
}
