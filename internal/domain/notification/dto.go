package notification

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// CreateNotificationRequest is built by other services, never decoded from a client.
type CreateNotificationRequest struct {
	RecipientID string
	SenderID    *string
	Type        Type
	Title       string
	Message     string
	Subject     *Subject
	Data        map[string]any
}

func (r *CreateNotificationRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.RecipientID == "" {
		errs.Add("recipient_id", "recipient_id is required")
	}
	if r.Title == "" {
		errs.Add("title", "title is required")
	}
	if r.Type != "" && !r.Type.IsValid() {
		errs.Add("type", ErrInvalidType.Error())
	}
	if r.Subject != nil && (r.Subject.Kind == "" || r.Subject.ID == "") {
		errs.Add("subject", ErrInvalidSubject.Error())
	}
	return errs.Err()
}

type ListNotificationsRequest struct {
	Page       int
	Limit      int
	UnreadOnly bool
	Type       string
}

func (r *ListNotificationsRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Type != "" && !Type(r.Type).IsValid() {
		errs.Add("type", ErrInvalidType.Error())
	}
	if r.Limit < 0 || r.Limit > 100 {
		errs.Add("limit", "limit must be between 1 and 100")
	}
	return errs.Err()
}

type MarkReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=200,dive,uuid"`
}

func (r *MarkReadRequest) Validate() error {
	return validator.Struct(r).Err()
}

// UpdatePreferenceRequest changes only the channels that are present.
type UpdatePreferenceRequest struct {
	Type  Type  `json:"type" validate:"required"`
	Email *bool `json:"email"`
	InApp *bool `json:"in_app"`
}

func (r *UpdatePreferenceRequest) Validate() error {
	errs := validator.Struct(r)
	if r.Type != "" && !r.Type.IsValid() {
		errs.Add("type", ErrInvalidType.Error())
	}
	if r.Email == nil && r.InApp == nil {
		errs.Add("email", ErrEmptyPreference.Error())
	}
	return errs.Err()
}

type NotificationResponse struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Subject    *Subject       `json:"subject,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	SenderID   *string        `json:"sender_id,omitempty"`
	SenderName *string        `json:"sender_name,omitempty"`
	IsRead     bool           `json:"is_read"`
	ReadAt     *time.Time     `json:"read_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func ToResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		Subject:    n.Subject,
		Data:       n.Data,
		SenderID:   n.SenderID,
		SenderName: n.SenderName,
		IsRead:     n.IsRead(),
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}

type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unread_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
}

type PreferenceResponse struct {
	Type  Type `json:"type"`
	Email bool `json:"email"`
	InApp bool `json:"in_app"`
}

func ToPreferenceResponse(p Preference) PreferenceResponse {
	return PreferenceResponse{Type: p.Type, Email: p.Email, InApp: p.InApp}
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
