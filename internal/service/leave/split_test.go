package leave

import (
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approved(start, end string, compOff, paid, lop float64) leave.LeaveRequest {
	alloc := leave.Allocation{CompOff: d(compOff), Paid: d(paid), LOP: d(lop)}
	return leave.LeaveRequest{
		ID:         "req-1",
		StartDate:  date(start),
		EndDate:    date(end),
		TotalDays:  alloc.Total(),
		Allocation: alloc,
		Status:     leave.StatusApproved,
	}
}

func TestPlanSplit_SingleDayCancels(t *testing.T) {
	plan, err := PlanSplit(approved("2024-03-05", "2024-03-05", 1, 0, 0), date("2024-03-05"))

	require.NoError(t, err)
	assert.Equal(t, ActionCancelled, plan.Action)
	assert.Nil(t, plan.Keep)
	assert.Nil(t, plan.Tail)
	assert.True(t, plan.Restored.CompOff.Equal(d(1)))
	assert.True(t, plan.Restored.Total().Equal(d(1)))
}

func TestPlanSplit_StartMoves(t *testing.T) {
	plan, err := PlanSplit(approved("2024-03-05", "2024-03-07", 1, 1, 1), date("2024-03-05"))

	require.NoError(t, err)
	assert.Equal(t, ActionStartMoved, plan.Action)
	require.NotNil(t, plan.Keep)
	assert.Equal(t, date("2024-03-06"), plan.Keep.Start)
	assert.Equal(t, date("2024-03-07"), plan.Keep.End)
	assert.True(t, plan.Keep.TotalDays.Equal(d(2)))
	// own comp-off first, then own paid
	assert.True(t, plan.Keep.Allocation.CompOff.Equal(d(1)))
	assert.True(t, plan.Keep.Allocation.Paid.Equal(d(1)))
	assert.True(t, plan.Keep.Allocation.LOP.IsZero())
	assert.True(t, plan.Restored.LOP.Equal(d(1)))
}

func TestPlanSplit_EndMoves(t *testing.T) {
	plan, err := PlanSplit(approved("2024-03-05", "2024-03-07", 0, 3, 0), date("2024-03-07"))

	require.NoError(t, err)
	assert.Equal(t, ActionEndMoved, plan.Action)
	assert.Equal(t, date("2024-03-06"), plan.Keep.End)
	assert.True(t, plan.Keep.Allocation.Paid.Equal(d(2)))
	assert.True(t, plan.Restored.Paid.Equal(d(1)))
}

func TestPlanSplit_InteriorDay(t *testing.T) {
	req := approved("2024-03-04", "2024-03-08", 1, 2, 2)

	plan, err := PlanSplit(req, date("2024-03-06"))

	require.NoError(t, err)
	assert.Equal(t, ActionSplitAround, plan.Action)
	require.NotNil(t, plan.Keep)
	require.NotNil(t, plan.Tail)
	assert.Equal(t, date("2024-03-05"), plan.Keep.End)
	assert.Equal(t, date("2024-03-07"), plan.Tail.Start)
	assert.True(t, plan.Keep.TotalDays.Add(plan.Tail.TotalDays).Equal(req.TotalDays.Sub(d(1))))

	// kept segment draws first: 1 comp-off + 1 paid; tail takes the last paid + 1 lop
	assert.True(t, plan.Keep.Allocation.CompOff.Equal(d(1)))
	assert.True(t, plan.Keep.Allocation.Paid.Equal(d(1)))
	assert.True(t, plan.Tail.Allocation.Paid.Equal(d(1)))
	assert.True(t, plan.Tail.Allocation.LOP.Equal(d(1)))
	assert.True(t, plan.Restored.LOP.Equal(d(1)))
	assert.True(t, plan.Restored.CompOff.IsZero())
	assert.True(t, plan.Restored.Paid.IsZero())
}

func TestPlanSplit_Errors(t *testing.T) {
	pending := approved("2024-03-05", "2024-03-07", 0, 3, 0)
	pending.Status = leave.StatusPending

	tests := []struct {
		name string
		req  leave.LeaveRequest
		day  string
		want error
	}{
		{"not approved", pending, "2024-03-05", leave.ErrLeaveNotApproved},
		{"before range", approved("2024-03-05", "2024-03-07", 0, 3, 0), "2024-03-04", leave.ErrDateOutsideLeave},
		{"after range", approved("2024-03-05", "2024-03-07", 0, 3, 0), "2024-03-08", leave.ErrDateOutsideLeave},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanSplit(tt.req, date(tt.day))
			if err != tt.want {
				t.Errorf("PlanSplit() error = %v, want %v", err, tt.want)
			}
		})
	}
}
