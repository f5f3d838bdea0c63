package compoff

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusEarned    Status = "earned"
	StatusUsed      Status = "used"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Source identifies what produced a credit. (UserID, Source, SourceKey) is unique.
type Source string

const (
	SourceOffDayWork    Source = "off_day_work"
	SourceMonthEndSick  Source = "month_end_sick_leave"
	SourceManual        Source = "manual"
	SourceSplitRemnant  Source = "split_remainder"
	SourceRestoreRemain Source = "restore_remainder"
)

type CompOff struct {
	ID           string
	UserID       string
	EarnedDate   time.Time
	EarnedHours  decimal.Decimal
	CreditDays   decimal.Decimal
	Status       Status
	ExpiresOn    time.Time
	UsedDate     *time.Time
	Reason       string
	Source       Source
	SourceKey    string
	ParentID     *string
	AttendanceID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	UserName string
}

// UsableOn reports whether the credit can still be drawn on day.
func (c CompOff) UsableOn(day time.Time) bool {
	return c.Status == StatusEarned && !c.ExpiresOn.Before(day)
}
