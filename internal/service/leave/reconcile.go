package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
)

// TodayLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) TodayLeave(ctx context.Context, userID string, today time.Time) (leave.TodayLeaveResponse, error) {
	requests, err := l.LeaveRequestRepository.ListApprovedCovering(ctx, userID, today)
	if err != nil {
		return leave.TodayLeaveResponse{}, fmt.Errorf("failed to find approved leave: %w", err)
	}
	if len(requests) == 0 {
		return leave.TodayLeaveResponse{OnLeave: false}, nil
	}
	resp := leave.ToRequestResponse(requests[0])
	return leave.TodayLeaveResponse{OnLeave: true, Request: &resp}, nil
}

// ReconcileWorkedDay removes day from the approved leave covering it, if
// any. It returns nil when no approved leave covers day. Callers on the
// punch-in path run it inside their own transaction.
func (l *LeaveServiceImpl) ReconcileWorkedDay(ctx context.Context, userID string, day time.Time) (*leave.ReconcileResult, error) {
	var result *leave.ReconcileResult
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := l.tx.Lock(txCtx, "leave:"+userID); err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}
		requests, err := l.LeaveRequestRepository.ListApprovedCovering(txCtx, userID, day)
		if err != nil {
			return fmt.Errorf("failed to find approved leave: %w", err)
		}
		if len(requests) == 0 {
			return nil
		}
		r, err := l.reconcile(txCtx, requests[0], day, "employee punched in")
		if err != nil {
			return err
		}
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result != nil {
		l.afterReconcile(ctx, userID, day, *result)
	}
	return result, nil
}

// CancelForDate lets an employee give back one day of an approved leave
// before working it. Without a date it cancels today in the business timezone.
func (l *LeaveServiceImpl) CancelForDate(ctx context.Context, userID string, req leave.CancelForDateRequest) (leave.ReconcileResult, error) {
	day := l.today()
	if req.Date != "" {
		day, _ = time.Parse("2006-01-02", req.Date)
	}

	var result leave.ReconcileResult
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := l.tx.Lock(txCtx, "leave:"+userID); err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}
		requests, err := l.LeaveRequestRepository.ListApprovedCovering(txCtx, userID, day)
		if err != nil {
			return fmt.Errorf("failed to find approved leave: %w", err)
		}
		if len(requests) == 0 {
			return leave.ErrNoLeaveForDate
		}
		result, err = l.reconcile(txCtx, requests[0], day, "cancelled by employee")
		if err != nil {
			return err
		}
		return l.clearOnLeaveDay(txCtx, userID, day)
	})
	if err != nil {
		return leave.ReconcileResult{}, err
	}

	l.afterReconcile(ctx, userID, day, result)
	return result, nil
}

// reconcile applies PlanSplit to request and moves ledger rows to match.
func (l *LeaveServiceImpl) reconcile(ctx context.Context, request leave.LeaveRequest, day time.Time, reason string) (leave.ReconcileResult, error) {
	plan, err := PlanSplit(request, day)
	if err != nil {
		return leave.ReconcileResult{}, err
	}
	remark := fmt.Sprintf("%s: %s removed from leave (%s)", day.Format("2006-01-02"), reason, plan.Action)

	var tail *leave.LeaveRequest
	if plan.Tail != nil {
		t := leave.LeaveRequest{
			UserID:        request.UserID,
			LeaveTypeID:   request.LeaveTypeID,
			StartDate:     plan.Tail.Start,
			EndDate:       plan.Tail.End,
			TotalDays:     plan.Tail.TotalDays,
			Allocation:    plan.Tail.Allocation,
			Reason:        request.Reason,
			Status:        leave.StatusApproved,
			ReviewedBy:    request.ReviewedBy,
			ReviewedAt:    request.ReviewedAt,
			ReviewRemarks: fmt.Sprintf("Split from leave %s: %s", request.ID, remark),
			SplitFromID:   &request.ID,
		}
		created, err := l.LeaveRequestRepository.Create(ctx, t)
		if err != nil {
			return leave.ReconcileResult{}, fmt.Errorf("failed to create split leave request: %w", err)
		}
		created.LeaveTypeCode, created.LeaveTypeName = request.LeaveTypeCode, request.LeaveTypeName
		tail = &created
	}

	restored, err := l.requestService.Reapportion(ctx, request, plan, tail)
	if err != nil {
		return leave.ReconcileResult{}, err
	}

	if plan.Keep == nil {
		request.Status = leave.StatusCancelled
	} else {
		request.StartDate = plan.Keep.Start
		request.EndDate = plan.Keep.End
		request.TotalDays = plan.Keep.TotalDays
		request.Allocation = plan.Keep.Allocation
	}
	request.ReviewRemarks = appendRemark(request.ReviewRemarks, remark)
	if err := l.LeaveRequestRepository.Update(ctx, request); err != nil {
		return leave.ReconcileResult{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	result := leave.ReconcileResult{
		Action:   string(plan.Action),
		Request:  leave.ToRequestResponse(request),
		Restored: restored,
	}
	if tail != nil {
		resp := leave.ToRequestResponse(*tail)
		result.NewRequest = &resp
	}
	return result, nil
}

func (l *LeaveServiceImpl) afterReconcile(ctx context.Context, userID string, day time.Time, result leave.ReconcileResult) {
	l.activity.Log(ctx, &userID, activity.ActionLeaveAdjusted, "leave_request", result.Request.ID,
		fmt.Sprintf("Leave %s for %s; restored comp-off %s, paid %s, lop %s", result.Action, day.Format("2006-01-02"),
			result.Restored.CompOff, result.Restored.Paid, result.Restored.LOP))
	l.notifyLeaveAdjusted(ctx, userID, day, result)
}
