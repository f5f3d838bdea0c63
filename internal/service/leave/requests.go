package leave

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/activity"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/jackc/pgx/v5"
)

// Apply computes the allocation against current capacity and holds it until review.
func (l *LeaveServiceImpl) Apply(ctx context.Context, userID string, req leave.ApplyLeaveRequest) (leave.LeaveRequestResponse, error) {
	leaveType, err := l.getLeaveType(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !leaveType.IsActive {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveTypeInactive
	}

	var created leave.LeaveRequest
	err = l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := l.tx.Lock(txCtx, "leave:"+userID); err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}

		overlap, err := l.LeaveRequestRepository.HasOverlap(txCtx, userID, req.Start, req.End, "")
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave requests: %w", err)
		}
		if overlap {
			return leave.ErrOverlappingLeave
		}

		c, err := l.requestService.CapacityFor(txCtx, userID, leaveType, req.Start, "")
		if err != nil {
			return err
		}

		total := RangeDays(req.Start, req.End, req.IsHalfDay)
		request := leave.LeaveRequest{
			UserID:      userID,
			LeaveTypeID: leaveType.ID,
			StartDate:   req.Start,
			EndDate:     req.End,
			IsHalfDay:   req.IsHalfDay,
			TotalDays:   total,
			Allocation:  Allocate(total, c.compOff, c.paid),
			Reason:      req.Reason,
			Status:      leave.StatusPending,
		}
		if req.IsHalfDay {
			t := leave.HalfDayType(req.HalfDayType)
			request.HalfDayType = &t
		}

		created, err = l.LeaveRequestRepository.Create(txCtx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return l.requestService.Hold(txCtx, created, c)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	created.LeaveTypeCode = leaveType.Code
	created.LeaveTypeName = leaveType.Name
	l.activity.Log(ctx, &userID, activity.ActionLeaveApplied, "leave_request", created.ID,
		fmt.Sprintf("Applied for %s %s to %s (%s day(s))", leaveType.Code,
			created.StartDate.Format("2006-01-02"), created.EndDate.Format("2006-01-02"), created.TotalDays))
	l.notifyLeaveApplied(ctx, created)

	return leave.ToRequestResponse(created), nil
}

// ListMyRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListMyRequests(ctx context.Context, userID string, filter leave.RequestFilter) (leave.ListLeaveRequestResponse, error) {
	filter.UserID = &userID
	return l.ListRequests(ctx, filter)
}

// ListRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, filter leave.RequestFilter) (leave.ListLeaveRequestResponse, error) {
	filter.Normalize()
	requests, total, err := l.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	resp := leave.ListLeaveRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   make([]leave.LeaveRequestResponse, 0, len(requests)),
	}
	for _, r := range requests {
		resp.Requests = append(resp.Requests, leave.ToRequestResponse(r))
	}
	return resp, nil
}

// GetRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	request, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return leave.ToRequestResponse(request), nil
}

// CancelRequest withdraws the user's own pending request and releases its holds.
func (l *LeaveServiceImpl) CancelRequest(ctx context.Context, userID, requestID string) (leave.LeaveRequestResponse, error) {
	var cancelled leave.LeaveRequest
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := l.tx.Lock(txCtx, "leave:"+userID); err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}
		request, err := l.getRequestForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}
		if request.UserID != userID {
			return leave.ErrNotLeaveOwner
		}
		if request.Status != leave.StatusPending {
			return leave.ErrLeaveAlreadyProcessed
		}
		if err := l.requestService.Release(txCtx, request.ID); err != nil {
			return err
		}
		request.Status = leave.StatusCancelled
		if err := l.LeaveRequestRepository.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		cancelled = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.activity.Log(ctx, &userID, activity.ActionLeaveCancelled, "leave_request", cancelled.ID, "Leave request cancelled by employee")
	return leave.ToRequestResponse(cancelled), nil
}

// Review approves or rejects a pending request. Approval recomputes the
// allocation against capacity at review time and consumes it; the employee
// is told when the result differs from what they saw when applying.
func (l *LeaveServiceImpl) Review(ctx context.Context, reviewerID, requestID string, req leave.ReviewLeaveRequest) (leave.LeaveRequestResponse, error) {
	var (
		reviewed leave.LeaveRequest
		applied  leave.Allocation
	)
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := l.lockOwnedRequest(txCtx, requestID)
		if err != nil {
			return err
		}
		if request.Status != leave.StatusPending {
			return leave.ErrLeaveAlreadyProcessed
		}

		if err := l.requestService.Release(txCtx, request.ID); err != nil {
			return err
		}

		if req.Status == string(leave.StatusApproved) {
			leaveType, err := l.getLeaveType(txCtx, request.LeaveTypeID)
			if err != nil {
				return err
			}
			c, err := l.requestService.CapacityFor(txCtx, request.UserID, leaveType, request.StartDate, request.ID)
			if err != nil {
				return err
			}
			applied = request.Allocation
			request.Allocation = Allocate(request.TotalDays, c.compOff, c.paid)
			if err := l.requestService.Consume(txCtx, request, c); err != nil {
				return err
			}
			if err := l.markOnLeave(txCtx, request); err != nil {
				return err
			}
			request.Status = leave.StatusApproved
		} else {
			request.Status = leave.StatusRejected
		}

		now := l.now()
		request.ReviewedBy = &reviewerID
		request.ReviewedAt = &now
		if req.Remarks != "" {
			request.ReviewRemarks = appendRemark(request.ReviewRemarks, req.Remarks)
		}
		if err := l.LeaveRequestRepository.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		reviewed = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	action := activity.ActionLeaveRejected
	if reviewed.Status == leave.StatusApproved {
		action = activity.ActionLeaveApproved
	}
	l.activity.Log(ctx, &reviewerID, action, "leave_request", reviewed.ID,
		fmt.Sprintf("Leave request %s (comp-off %s, paid %s, lop %s)", reviewed.Status,
			reviewed.Allocation.CompOff, reviewed.Allocation.Paid, reviewed.Allocation.LOP))
	if reviewed.Status == leave.StatusApproved && !sameAllocation(applied, reviewed.Allocation) {
		l.notifyLeaveStatus(ctx, reviewed, req.Remarks, &applied)
	} else {
		l.notifyLeaveStatus(ctx, reviewed, req.Remarks, nil)
	}

	return leave.ToRequestResponse(reviewed), nil
}

// AdminUpdate edits dates, allocation or remarks. An approved request is
// fully restored and consumed again with the new allocation; a pending one
// has its holds replaced.
func (l *LeaveServiceImpl) AdminUpdate(ctx context.Context, actorID string, req leave.AdminUpdateLeaveRequest) (leave.LeaveRequestResponse, error) {
	var updated leave.LeaveRequest
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := l.lockOwnedRequest(txCtx, req.ID)
		if err != nil {
			return err
		}

		start, end := request.StartDate, request.EndDate
		if req.StartDate != nil {
			start, _ = time.Parse("2006-01-02", *req.StartDate)
		}
		if req.EndDate != nil {
			end, _ = time.Parse("2006-01-02", *req.EndDate)
		}
		if end.Before(start) {
			return leave.ErrInvalidDateRange
		}
		if request.IsHalfDay && !start.Equal(end) {
			return leave.ErrHalfDaySingleDate
		}
		datesChanged := !start.Equal(request.StartDate) || !end.Equal(request.EndDate)
		manual, hasManual := req.ManualAllocation()
		reallocate := datesChanged || hasManual

		if reallocate && request.Status != leave.StatusPending && request.Status != leave.StatusApproved {
			return leave.ErrLeaveAlreadyProcessed
		}

		if reallocate {
			if datesChanged {
				overlap, err := l.LeaveRequestRepository.HasOverlap(txCtx, request.UserID, start, end, request.ID)
				if err != nil {
					return fmt.Errorf("failed to check overlapping leave requests: %w", err)
				}
				if overlap {
					return leave.ErrOverlappingLeave
				}
			}

			total := RangeDays(start, end, request.IsHalfDay)
			if hasManual && !manual.Total().Equal(total) {
				return leave.ErrAllocationMismatch
			}

			wasApproved := request.Status == leave.StatusApproved
			if wasApproved {
				if _, err := l.requestService.RestoreAll(txCtx, request.ID); err != nil {
					return err
				}
				if err := l.clearOnLeave(txCtx, request); err != nil {
					return err
				}
			} else if err := l.requestService.Release(txCtx, request.ID); err != nil {
				return err
			}

			leaveType, err := l.getLeaveType(txCtx, request.LeaveTypeID)
			if err != nil {
				return err
			}
			c, err := l.requestService.CapacityFor(txCtx, request.UserID, leaveType, start, request.ID)
			if err != nil {
				return err
			}

			request.StartDate, request.EndDate, request.TotalDays = start, end, total
			if hasManual {
				request.Allocation = manual
			} else {
				request.Allocation = Allocate(total, c.compOff, c.paid)
			}

			if wasApproved {
				if err := l.requestService.Consume(txCtx, request, c); err != nil {
					return err
				}
				if err := l.markOnLeave(txCtx, request); err != nil {
					return err
				}
			} else if err := l.requestService.Hold(txCtx, request, c); err != nil {
				return err
			}
		}

		if req.Reason != nil {
			request.Reason = *req.Reason
		}
		if req.ReviewRemarks != nil {
			request.ReviewRemarks = *req.ReviewRemarks
		}
		if err := l.LeaveRequestRepository.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		updated = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.activity.Log(ctx, &actorID, activity.ActionLeaveEdited, "leave_request", updated.ID,
		fmt.Sprintf("Leave request edited: %s to %s (comp-off %s, paid %s, lop %s)",
			updated.StartDate.Format("2006-01-02"), updated.EndDate.Format("2006-01-02"),
			updated.Allocation.CompOff, updated.Allocation.Paid, updated.Allocation.LOP))
	return leave.ToRequestResponse(updated), nil
}

// markOnLeave creates or flips attendance rows without a punch to on_leave
// for every day of an approved request.
func (l *LeaveServiceImpl) markOnLeave(ctx context.Context, request leave.LeaveRequest) error {
	for day := request.StartDate; !day.After(request.EndDate); day = day.AddDate(0, 0, 1) {
		existing, err := l.attendanceRepo.GetByUserAndDateForUpdate(ctx, request.UserID, day)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		if existing == nil {
			if _, err := l.attendanceRepo.CreateIfMissing(ctx, attendance.Attendance{
				UserID: request.UserID,
				Date:   day,
				Status: attendance.StatusOnLeave,
			}); err != nil {
				return fmt.Errorf("failed to mark attendance on leave: %w", err)
			}
			continue
		}
		if existing.PunchIn != nil || existing.Status == attendance.StatusOnLeave {
			continue
		}
		existing.Status = attendance.StatusOnLeave
		if err := l.attendanceRepo.Update(ctx, *existing); err != nil {
			return fmt.Errorf("failed to mark attendance on leave: %w", err)
		}
	}
	return nil
}

// clearOnLeave removes placeholder on_leave rows for the request's days.
func (l *LeaveServiceImpl) clearOnLeave(ctx context.Context, request leave.LeaveRequest) error {
	for day := request.StartDate; !day.After(request.EndDate); day = day.AddDate(0, 0, 1) {
		if err := l.clearOnLeaveDay(ctx, request.UserID, day); err != nil {
			return err
		}
	}
	return nil
}

func (l *LeaveServiceImpl) clearOnLeaveDay(ctx context.Context, userID string, day time.Time) error {
	existing, err := l.attendanceRepo.GetByUserAndDateForUpdate(ctx, userID, day)
	if err != nil {
		return fmt.Errorf("failed to get attendance: %w", err)
	}
	if existing == nil || existing.PunchIn != nil || existing.Status != attendance.StatusOnLeave || existing.StatusOverride != nil {
		return nil
	}
	if err := l.attendanceRepo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to clear on-leave attendance: %w", err)
	}
	return nil
}
