package attendance

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
)

// notifier fans request events out to in-app notifications and email.
type notifier struct {
	userRepo            user.UserRepository
	notificationService notification.NotificationService
	emailService        email.EmailService
}

func (n notifier) toAdmins(ctx context.Context, senderID string, t notification.Type, title, message string, subject notification.Subject) {
	if n.notificationService == nil {
		return
	}
	admins, err := n.userRepo.ListAdmins(ctx)
	if err != nil {
		slog.Error("failed to list admins for notification", "type", t, "error", err)
		return
	}
	reqs := make([]notification.CreateNotificationRequest, 0, len(admins))
	for _, a := range admins {
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: a.ID,
			SenderID:    &senderID,
			Type:        t,
			Title:       title,
			Message:     message,
			Subject:     &subject,
		})
	}
	_ = n.notificationService.NotifyMany(ctx, reqs)
}

// reviewed notifies the requester in-app and mails them through send, a
// method expression such as email.EmailService.SendWFHStatus.
func (n notifier) reviewed(ctx context.Context, recipientID string, senderID *string, t notification.Type, title, message string, subject notification.Subject, status email.StatusData, send func(email.EmailService, string, email.StatusData) error) {
	if n.notificationService != nil {
		_ = n.notificationService.Notify(ctx, notification.CreateNotificationRequest{
			RecipientID: recipientID,
			SenderID:    senderID,
			Type:        t,
			Title:       title,
			Message:     message,
			Subject:     &subject,
		})
	}

	if n.emailService == nil || send == nil {
		return
	}
	u, err := n.userRepo.GetByID(ctx, recipientID)
	if err != nil || u.Email == nil || *u.Email == "" {
		return
	}
	if n.notificationService != nil && !n.notificationService.EmailEnabled(ctx, u.ID, t) {
		return
	}
	to := *u.Email
	status.EmployeeName = u.Name
	go func() {
		if err := send(n.emailService, to, status); err != nil {
			slog.Error("failed to email request status", "type", t, "user_id", recipientID, "error", err)
		}
	}()
}
