package activity

import (
	"context"
	"time"
)

// Action names a state transition worth auditing.
type Action string

const (
	ActionLogin                  Action = "login"
	ActionPunchIn                Action = "punch_in"
	ActionPunchOut               Action = "punch_out"
	ActionAutoPunchOut           Action = "auto_punch_out"
	ActionAttendanceEdited       Action = "attendance_edited"
	ActionLeaveApplied           Action = "leave_applied"
	ActionLeaveApproved          Action = "leave_approved"
	ActionLeaveRejected          Action = "leave_rejected"
	ActionLeaveCancelled         Action = "leave_cancelled"
	ActionLeaveAdjusted          Action = "leave_adjusted"
	ActionLeaveEdited            Action = "leave_edited"
	ActionRegularizationApplied  Action = "regularization_applied"
	ActionRegularizationReviewed Action = "regularization_reviewed"
	ActionWFHApplied             Action = "wfh_applied"
	ActionWFHReviewed            Action = "wfh_reviewed"
	ActionCompOffGranted         Action = "comp_off_granted"
	ActionCompOffCancelled       Action = "comp_off_cancelled"
	ActionEmployeeCreated        Action = "employee_created"
	ActionEmployeeUpdated        Action = "employee_updated"
	ActionBatchRun               Action = "batch_run"
	ActionProfileUpdateRequested Action = "profile_update_requested"
	ActionProfileUpdateReviewed  Action = "profile_update_reviewed"
)

type Entry struct {
	ID          string
	ActorID     *string
	Action      Action
	EntityType  string
	EntityID    string
	Description string
	IPAddress   *string
	CreatedAt   time.Time

	// Join
	ActorName *string
}

type Filter struct {
	ActorID    *string
	Action     *Action
	EntityType *string
	Page       int
	Limit      int
}

type EntryResponse struct {
	ID          string    `json:"id"`
	ActorID     *string   `json:"actor_id,omitempty"`
	ActorName   *string   `json:"actor_name,omitempty"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Description string    `json:"description"`
	IPAddress   *string   `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Entries    []EntryResponse `json:"entries"`
}

type Repository interface {
	Create(ctx context.Context, e Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, int64, error)
}

// Logger records audit entries. Failures are logged, never returned.
type Logger interface {
	Log(ctx context.Context, actorID *string, action Action, entityType, entityID, description string)
	List(ctx context.Context, filter Filter) (ListResponse, error)
}

type ctxKey struct{}

// WithIP stores the client address that Logger attaches to entries.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ip)
}

// IPFrom returns the address stored by WithIP, or nil.
func IPFrom(ctx context.Context) *string {
	ip, ok := ctx.Value(ctxKey{}).(string)
	if !ok || ip == "" {
		return nil
	}
	return &ip
}
