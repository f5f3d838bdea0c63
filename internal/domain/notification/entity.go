package notification

import "time"

type Type string

const (
	TypeSystem                 Type = "system"
	TypeLeaveApplied           Type = "leave_applied"
	TypeLeaveApproved          Type = "leave_approved"
	TypeLeaveRejected          Type = "leave_rejected"
	TypeLeaveAdjusted          Type = "leave_adjusted"
	TypeRegularizationApplied  Type = "regularization_applied"
	TypeRegularizationApproved Type = "regularization_approved"
	TypeRegularizationRejected Type = "regularization_rejected"
	TypeWFHApplied             Type = "wfh_applied"
	TypeWFHApproved            Type = "wfh_approved"
	TypeWFHRejected            Type = "wfh_rejected"
	TypeAutoPunchOut           Type = "auto_punch_out"
	TypeCompOffEarned          Type = "comp_off_earned"
	TypeProfileUpdateApplied   Type = "profile_update_applied"
	TypeProfileUpdateApproved  Type = "profile_update_approved"
	TypeProfileUpdateRejected  Type = "profile_update_rejected"
)

var allTypes = []Type{
	TypeSystem,
	TypeLeaveApplied,
	TypeLeaveApproved,
	TypeLeaveRejected,
	TypeLeaveAdjusted,
	TypeRegularizationApplied,
	TypeRegularizationApproved,
	TypeRegularizationRejected,
	TypeWFHApplied,
	TypeWFHApproved,
	TypeWFHRejected,
	TypeAutoPunchOut,
	TypeCompOffEarned,
	TypeProfileUpdateApplied,
	TypeProfileUpdateApproved,
	TypeProfileUpdateRejected,
}

// AllTypes returns every type a user can hold a preference for.
func AllTypes() []Type {
	return append([]Type(nil), allTypes...)
}

func (t Type) IsValid() bool {
	for _, known := range allTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Subject kinds a notification can point at.
const (
	SubjectLeaveRequest   = "leave_request"
	SubjectRegularization = "regularization"
	SubjectWFHRequest     = "wfh_request"
	SubjectCompOff        = "comp_off"
	SubjectAttendance     = "attendance"
	SubjectProfileUpdate  = "profile_update"
)

// Subject links a notification to the record it is about, so clients can deep link.
type Subject struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	SenderName  *string
	Type        Type
	Title       string
	Message     string
	Subject     *Subject
	Data        map[string]any
	ReadAt      *time.Time
	CreatedAt   time.Time
}

func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}

// Preference holds the per-channel switches of one user for one type.
// Users without a stored row get DefaultPreference.
type Preference struct {
	UserID    string
	Type      Type
	Email     bool
	InApp     bool
	UpdatedAt time.Time
}

func DefaultPreference(userID string, t Type) Preference {
	return Preference{UserID: userID, Type: t, Email: true, InApp: true}
}

type Filter struct {
	RecipientID string
	UnreadOnly  bool
	Type        *Type
	Subject     *Subject
	Page        int
	Limit       int
}
