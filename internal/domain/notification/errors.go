package notification

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidType          = errors.New("invalid notification type")
	ErrInvalidSubject       = errors.New("invalid notification subject")
	ErrEmptyPreference      = errors.New("email or in_app must be set")
	ErrShuttingDown         = errors.New("notification service is shutting down")
)
