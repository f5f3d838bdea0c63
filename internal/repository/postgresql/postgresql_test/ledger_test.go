package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCompOffRepository_SourceKeyIsUnique(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, postgresql.NewUserRepository(db), "9000000001", nil)
	repo := postgresql.NewCompOffRepository(db)

	c := compoff.CompOff{
		UserID:     u.ID,
		EarnedDate: day(2025, 3, 9),
		CreditDays: decimal.NewFromInt(1),
		ExpiresOn:  day(2025, 6, 7),
		Source:     compoff.SourceOffDayWork,
		SourceKey:  "2025-03-09",
	}
	created, err := repo.Create(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, compoff.StatusEarned, created.Status)

	_, err = repo.Create(ctx, c)
	assert.ErrorIs(t, err, compoff.ErrCompOffExists)
}

func TestCompOffRepository_UsableAndExpire(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, postgresql.NewUserRepository(db), "9000000001", nil)
	repo := postgresql.NewCompOffRepository(db)

	for i, exp := range []time.Time{day(2025, 5, 1), day(2025, 4, 1), day(2025, 3, 1)} {
		_, err := repo.Create(ctx, compoff.CompOff{
			UserID:     u.ID,
			EarnedDate: exp.AddDate(0, -3, 0),
			CreditDays: decimal.NewFromInt(1),
			ExpiresOn:  exp,
			Source:     compoff.SourceManual,
			SourceKey:  string(rune('a' + i)),
		})
		require.NoError(t, err)
	}

	usable, err := repo.ListUsable(ctx, u.ID, day(2025, 3, 15))
	require.NoError(t, err)
	require.Len(t, usable, 2)
	assert.Equal(t, day(2025, 4, 1), usable[0].ExpiresOn.UTC())

	sum, err := repo.SumUsable(ctx, u.ID, day(2025, 3, 15))
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(2)))

	expired, err := repo.ExpireBefore(ctx, day(2025, 3, 15))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, compoff.StatusExpired, expired[0].Status)
}

func TestAllocationRepository_HeldSums(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, postgresql.NewUserRepository(db), "9000000001", nil)

	lt, err := postgresql.NewLeaveTypeRepository(db).Create(ctx, leave.LeaveType{
		Name: "Casual", Code: "CL", AnnualQuota: decimal.NewFromInt(12), MonthlyQuota: decimal.NewFromInt(1), IsPaid: true, IsActive: true,
	})
	require.NoError(t, err)

	bal, _, err := postgresql.NewLeaveBalanceRepository(db).CreateIfMissing(ctx, leave.LeaveBalance{
		UserID: u.ID, LeaveTypeID: lt.ID, Year: 2025, Month: 3, TotalLeaves: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	co, err := postgresql.NewCompOffRepository(db).Create(ctx, compoff.CompOff{
		UserID: u.ID, EarnedDate: day(2025, 3, 2), CreditDays: decimal.NewFromInt(1),
		ExpiresOn: day(2025, 5, 31), Source: compoff.SourceManual, SourceKey: "k",
	})
	require.NoError(t, err)

	req, err := postgresql.NewLeaveRequestRepository(db).Create(ctx, leave.LeaveRequest{
		UserID: u.ID, LeaveTypeID: lt.ID, StartDate: day(2025, 3, 10), EndDate: day(2025, 3, 11),
		TotalDays:  decimal.NewFromInt(2),
		Allocation: leave.Allocation{CompOff: decimal.NewFromInt(1), Paid: decimal.NewFromInt(1), LOP: decimal.Zero},
		Status:     leave.StatusPending,
		Reason:     "family",
	})
	require.NoError(t, err)
	assert.Equal(t, "CL", req.LeaveTypeCode)

	alloc := postgresql.NewAllocationRepository(db)
	_, err = alloc.Create(ctx, leave.AllocationEntry{
		LeaveRequestID: req.ID, UserID: u.ID, Source: leave.SourceCompOff, CompOffID: &co.ID,
		Days: decimal.NewFromInt(1), State: leave.StateHeld,
	})
	require.NoError(t, err)
	_, err = alloc.Create(ctx, leave.AllocationEntry{
		LeaveRequestID: req.ID, UserID: u.ID, Source: leave.SourcePaid, LeaveBalanceID: &bal.ID,
		Days: decimal.NewFromInt(1), State: leave.StateHeld,
	})
	require.NoError(t, err)

	held, err := alloc.HeldCompOff(ctx, u.ID, "")
	require.NoError(t, err)
	assert.True(t, held[co.ID].Equal(decimal.NewFromInt(1)))

	paid, err := alloc.HeldPaid(ctx, bal.ID, req.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsZero())

	entries, err := alloc.ListByRequest(ctx, req.ID, leave.StateHeld)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, alloc.ReleaseHeld(ctx, req.ID))
	held, err = alloc.HeldCompOff(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Empty(t, held)

	overlap, err := postgresql.NewLeaveRequestRepository(db).HasOverlap(ctx, u.ID, day(2025, 3, 11), day(2025, 3, 12), "")
	require.NoError(t, err)
	assert.True(t, overlap)
}

func TestBatchRepository_MarkItemOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, postgresql.NewUserRepository(db), "9000000001", nil)
	repo := postgresql.NewBatchRepository(db)

	first, err := repo.MarkItem(ctx, batch.JobMonthEnd, "2025-03", u.ID)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkItem(ctx, batch.JobMonthEnd, "2025-03", u.ID)
	require.NoError(t, err)
	assert.False(t, again)

	run, err := repo.StartRun(ctx, batch.Run{Job: batch.JobMonthEnd, Period: "2025-03", TriggeredBy: "test"})
	require.NoError(t, err)
	run.Status = batch.RunCompleted
	run.Processed = 1
	require.NoError(t, repo.FinishRun(ctx, run))

	latest, err := repo.LatestCompleted(ctx, batch.JobMonthEnd, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
}

func TestAllocationRepository_MoveHeldCompOff(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, postgresql.NewUserRepository(db), "9000000001", nil)

	lt, err := postgresql.NewLeaveTypeRepository(db).Create(ctx, leave.LeaveType{
		Name: "Casual", Code: "CL", AnnualQuota: decimal.NewFromInt(12), MonthlyQuota: decimal.NewFromInt(1), IsPaid: true, IsActive: true,
	})
	require.NoError(t, err)

	compOffs := postgresql.NewCompOffRepository(db)
	from, err := compOffs.Create(ctx, compoff.CompOff{
		UserID: u.ID, EarnedDate: day(2025, 3, 2), CreditDays: decimal.NewFromInt(2),
		ExpiresOn: day(2025, 5, 31), Source: compoff.SourceManual, SourceKey: "from",
	})
	require.NoError(t, err)
	to, err := compOffs.Create(ctx, compoff.CompOff{
		UserID: u.ID, EarnedDate: day(2025, 3, 2), CreditDays: decimal.NewFromInt(1),
		ExpiresOn: day(2025, 5, 31), Source: compoff.SourceManual, SourceKey: "to",
	})
	require.NoError(t, err)

	req, err := postgresql.NewLeaveRequestRepository(db).Create(ctx, leave.LeaveRequest{
		UserID: u.ID, LeaveTypeID: lt.ID, StartDate: day(2025, 3, 10), EndDate: day(2025, 3, 10),
		TotalDays:  decimal.NewFromInt(1),
		Allocation: leave.Allocation{CompOff: decimal.NewFromInt(1), Paid: decimal.Zero, LOP: decimal.Zero},
		Status:     leave.StatusPending,
		Reason:     "errand",
	})
	require.NoError(t, err)

	alloc := postgresql.NewAllocationRepository(db)
	_, err = alloc.Create(ctx, leave.AllocationEntry{
		LeaveRequestID: req.ID, UserID: u.ID, Source: leave.SourceCompOff, CompOffID: &from.ID,
		Days: decimal.NewFromInt(1), State: leave.StateHeld,
	})
	require.NoError(t, err)

	require.NoError(t, alloc.MoveHeldCompOff(ctx, from.ID, to.ID))

	held, err := alloc.HeldCompOff(ctx, u.ID, "")
	require.NoError(t, err)
	assert.NotContains(t, held, from.ID)
	assert.True(t, held[to.ID].Equal(decimal.NewFromInt(1)))
}
