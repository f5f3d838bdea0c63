package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
)

type NotificationService interface {
	// Notify stores and pushes a notification unless the recipient muted
	// the in-app channel for its type. Delivery is batched in the background.
	Notify(ctx context.Context, req CreateNotificationRequest) error
	NotifyMany(ctx context.Context, reqs []CreateNotificationRequest) error

	List(ctx context.Context, userID string, req ListNotificationsRequest) (ListNotificationsResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, req MarkReadRequest) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	ClearRead(ctx context.Context, userID string) (int64, error)

	// EmailEnabled reports whether userID accepts mail for t. Lookup
	// failures count as enabled.
	EmailEnabled(ctx context.Context, userID string, t Type) bool
	Preferences(ctx context.Context, userID string) ([]PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req UpdatePreferenceRequest) (PreferenceResponse, error)

	Subscribe(userID string) (<-chan sse.Event, func(), error)

	// Stop flushes pending notifications and waits for the dispatchers.
	Stop()
}
