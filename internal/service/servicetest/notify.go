package servicetest

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
)

// Notifier records what services send. Methods it does not override panic.
type Notifier struct {
	notification.NotificationService

	mu   sync.Mutex
	Sent []notification.CreateNotificationRequest
}

func (n *Notifier) Notify(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, req)
	return nil
}

func (n *Notifier) NotifyMany(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, reqs...)
	return nil
}

func (n *Notifier) EmailEnabled(ctx context.Context, userID string, t notification.Type) bool {
	return true
}

// To returns the notifications addressed to recipientID.
func (n *Notifier) To(recipientID string) []notification.CreateNotificationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.CreateNotificationRequest
	for _, r := range n.Sent {
		if r.RecipientID == recipientID {
			out = append(out, r)
		}
	}
	return out
}
