package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
)

// notifyLeaveApplied tells every admin about a new request, in-app and by email
func (l *LeaveServiceImpl) notifyLeaveApplied(ctx context.Context, request leave.LeaveRequest) {
	admins, err := l.userRepo.ListAdmins(ctx)
	if err != nil {
		slog.Error("failed to list admins for leave notification", "error", err)
		return
	}
	applicant, err := l.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		slog.Error("failed to load applicant for leave notification", "user_id", request.UserID, "error", err)
		return
	}

	var recipients []string
	if l.notificationService != nil {
		reqs := make([]notification.CreateNotificationRequest, 0, len(admins))
		for _, a := range admins {
			reqs = append(reqs, notification.CreateNotificationRequest{
				RecipientID: a.ID,
				SenderID:    &request.UserID,
				Type:        notification.TypeLeaveApplied,
				Title:       "New leave request",
				Message: fmt.Sprintf("%s applied for %s from %s to %s", applicant.Name, request.LeaveTypeName,
					request.StartDate.Format("2006-01-02"), request.EndDate.Format("2006-01-02")),
				Subject: &notification.Subject{Kind: notification.SubjectLeaveRequest, ID: request.ID},
			})
		}
		_ = l.notificationService.NotifyMany(ctx, reqs)
	}
	for _, a := range admins {
		if a.Email != nil && *a.Email != "" && l.emailEnabled(ctx, a.ID, notification.TypeLeaveApplied) {
			recipients = append(recipients, *a.Email)
		}
	}

	if l.emailService == nil || len(recipients) == 0 {
		return
	}
	data := email.LeaveAppliedData{
		EmployeeName: applicant.Name,
		LeaveType:    request.LeaveTypeName,
		StartDate:    request.StartDate.Format("2006-01-02"),
		EndDate:      request.EndDate.Format("2006-01-02"),
		TotalDays:    request.TotalDays.String(),
		CompOffDays:  request.Allocation.CompOff.String(),
		PaidDays:     request.Allocation.Paid.String(),
		LOPDays:      request.Allocation.LOP.String(),
		Reason:       request.Reason,
	}
	go func() {
		if err := l.emailService.SendLeaveApplied(recipients, data); err != nil {
			slog.Error("failed to email leave application", "leave_request_id", request.ID, "error", err)
		}
	}()
}

// notifyLeaveStatus tells the employee about a review. applied is set when
// approval changed the breakdown shown at apply time.
func (l *LeaveServiceImpl) notifyLeaveStatus(ctx context.Context, request leave.LeaveRequest, remarks string, applied *leave.Allocation) {
	notifType := notification.TypeLeaveRejected
	if request.Status == leave.StatusApproved {
		notifType = notification.TypeLeaveApproved
	}
	dates := request.StartDate.Format("2006-01-02")
	if !request.EndDate.Equal(request.StartDate) {
		dates += " to " + request.EndDate.Format("2006-01-02")
	}
	message := fmt.Sprintf("Your leave for %s was %s", dates, request.Status)
	data := map[string]any{
		"comp_off_days": request.Allocation.CompOff.String(),
		"paid_days":     request.Allocation.Paid.String(),
		"lop_days":      request.Allocation.LOP.String(),
	}
	if applied != nil {
		message += fmt.Sprintf(". The breakdown changed since you applied: comp-off %s, paid %s, loss of pay %s (was %s, %s, %s)",
			request.Allocation.CompOff, request.Allocation.Paid, request.Allocation.LOP,
			applied.CompOff, applied.Paid, applied.LOP)
		data["allocation_changed"] = true
		data["applied_comp_off_days"] = applied.CompOff.String()
		data["applied_paid_days"] = applied.Paid.String()
		data["applied_lop_days"] = applied.LOP.String()
	}

	if l.notificationService != nil {
		_ = l.notificationService.Notify(ctx, notification.CreateNotificationRequest{
			RecipientID: request.UserID,
			SenderID:    request.ReviewedBy,
			Type:        notifType,
			Title:       fmt.Sprintf("Leave %s", request.Status),
			Message:     message,
			Subject:     &notification.Subject{Kind: notification.SubjectLeaveRequest, ID: request.ID},
			Data:        data,
		})
	}

	u, err := l.userRepo.GetByID(ctx, request.UserID)
	if err != nil || u.Email == nil || *u.Email == "" || l.emailService == nil {
		return
	}
	if !l.emailEnabled(ctx, u.ID, notifType) {
		return
	}
	to := *u.Email
	details := fmt.Sprintf("Comp-off: %s, paid: %s, loss of pay: %s",
		request.Allocation.CompOff, request.Allocation.Paid, request.Allocation.LOP)
	if applied != nil {
		details += fmt.Sprintf(" (at application: comp-off %s, paid %s, loss of pay %s)",
			applied.CompOff, applied.Paid, applied.LOP)
	}
	mail := email.StatusData{
		EmployeeName: u.Name,
		Subject:      "leave request",
		Date:         dates,
		Status:       string(request.Status),
		Remarks:      remarks,
		Details:      details,
	}
	go func() {
		if err := l.emailService.SendLeaveStatus(to, mail); err != nil {
			slog.Error("failed to email leave status", "leave_request_id", request.ID, "error", err)
		}
	}()
}

func (l *LeaveServiceImpl) notifyLeaveAdjusted(ctx context.Context, userID string, day time.Time, result leave.ReconcileResult) {
	if l.notificationService == nil {
		return
	}
	_ = l.notificationService.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: userID,
		Type:        notification.TypeLeaveAdjusted,
		Title:       "Leave adjusted",
		Message:     fmt.Sprintf("%s was removed from your approved leave", day.Format("2006-01-02")),
		Subject:     &notification.Subject{Kind: notification.SubjectLeaveRequest, ID: result.Request.ID},
		Data:        map[string]any{"action": result.Action},
	})
}

func (l *LeaveServiceImpl) emailEnabled(ctx context.Context, userID string, t notification.Type) bool {
	if l.notificationService == nil {
		return true
	}
	return l.notificationService.EmailEnabled(ctx, userID, t)
}
