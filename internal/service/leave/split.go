package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type SplitAction string

const (
	ActionCancelled   SplitAction = "cancelled"
	ActionStartMoved  SplitAction = "start_moved"
	ActionEndMoved    SplitAction = "end_moved"
	ActionSplitAround SplitAction = "split"
)

// Segment is a date range with its reallocated days.
type Segment struct {
	Start      time.Time
	End        time.Time
	TotalDays  decimal.Decimal
	Allocation leave.Allocation
}

// SplitPlan describes how an approved request changes when day is worked.
// Keep is the original row after the change (nil when cancelled), Tail the
// new row created for an interior day, Restored what goes back to the ledger.
type SplitPlan struct {
	Action   SplitAction
	Day      time.Time
	Keep     *Segment
	Tail     *Segment
	Restored leave.Allocation
}

// PlanSplit removes day from r. The remaining segments are reallocated with
// Allocate using only the comp-off and paid days r itself consumed, kept
// segment first.
func PlanSplit(r leave.LeaveRequest, day time.Time) (SplitPlan, error) {
	if r.Status != leave.StatusApproved {
		return SplitPlan{}, leave.ErrLeaveNotApproved
	}
	day = dateOnly(day)
	start, end := dateOnly(r.StartDate), dateOnly(r.EndDate)
	if day.Before(start) || day.After(end) {
		return SplitPlan{}, leave.ErrDateOutsideLeave
	}

	plan := SplitPlan{Day: day}
	prev, next := day.AddDate(0, 0, -1), day.AddDate(0, 0, 1)

	switch {
	case start.Equal(end) || r.IsHalfDay:
		plan.Action = ActionCancelled
	case start.Equal(day):
		plan.Action = ActionStartMoved
		plan.Keep = &Segment{Start: next, End: end}
	case end.Equal(day):
		plan.Action = ActionEndMoved
		plan.Keep = &Segment{Start: start, End: prev}
	default:
		plan.Action = ActionSplitAround
		plan.Keep = &Segment{Start: start, End: prev}
		plan.Tail = &Segment{Start: next, End: end}
	}

	compOff, paid := r.Allocation.CompOff, r.Allocation.Paid
	used := leave.Allocation{CompOff: decimal.Zero, Paid: decimal.Zero, LOP: decimal.Zero}
	for _, seg := range []*Segment{plan.Keep, plan.Tail} {
		if seg == nil {
			continue
		}
		seg.TotalDays = RangeDays(seg.Start, seg.End, false)
		seg.Allocation = Allocate(seg.TotalDays, compOff, paid)
		compOff = compOff.Sub(seg.Allocation.CompOff)
		paid = paid.Sub(seg.Allocation.Paid)
		used = leave.Allocation{
			CompOff: used.CompOff.Add(seg.Allocation.CompOff),
			Paid:    used.Paid.Add(seg.Allocation.Paid),
			LOP:     used.LOP.Add(seg.Allocation.LOP),
		}
	}
	plan.Restored = subAllocation(r.Allocation, used)
	return plan, nil
}
