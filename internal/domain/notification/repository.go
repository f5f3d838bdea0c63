package notification

import (
	"context"
	"time"
)

type NotificationRepository interface {
	Insert(ctx context.Context, notifications []Notification) error
	List(ctx context.Context, filter Filter) ([]Notification, int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	// MarkRead stamps read_at on the given unread rows of recipientID; nil ids means all of them.
	MarkRead(ctx context.Context, recipientID string, ids []string, at time.Time) (int64, error)
	Delete(ctx context.Context, recipientID, id string) error
	DeleteRead(ctx context.Context, recipientID string) (int64, error)

	ListPreferences(ctx context.Context, userID string) ([]Preference, error)
	GetPreference(ctx context.Context, userID string, t Type) (Preference, error)
	UpsertPreference(ctx context.Context, pref Preference) (Preference, error)
}
