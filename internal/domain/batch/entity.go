package batch

import (
	"time"

	"github.com/shopspring/decimal"
)

type Job string

const (
	JobMonthEnd       Job = "month-end"
	JobYearEnd        Job = "year-end"
	JobAutoPunchOut   Job = "auto-punch-out"
	JobExpireCompOffs Job = "expire-comp-offs"
	JobMarkAbsent     Job = "mark-absent"
)

func AllJobs() []Job {
	return []Job{JobMonthEnd, JobYearEnd, JobAutoPunchOut, JobExpireCompOffs, JobMarkAbsent}
}

func ParseJob(s string) (Job, error) {
	for _, j := range AllJobs() {
		if string(j) == s {
			return j, nil
		}
	}
	return "", ErrUnknownJob
}

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one execution of a job for a period ("2024-03", "2025", "2024-03-15").
type Run struct {
	ID          string
	Job         Job
	Period      string
	Status      RunStatus
	Processed   int
	Skipped     int
	Failed      int
	DryRun      bool
	TriggeredBy string
	Error       *string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Outcome is the per-employee result of a job.
type Outcome struct {
	UserID          string          `json:"user_id"`
	UserName        string          `json:"user_name"`
	Status          string          `json:"status"` // processed, skipped, failed
	AbsentDays      int             `json:"absent_days,omitempty"`
	DeductedDays    decimal.Decimal `json:"deducted_days"`
	LOPDays         decimal.Decimal `json:"lop_days"`
	CompOffCredited decimal.Decimal `json:"comp_off_credited"`
	CarryForward    decimal.Decimal `json:"carry_forward"`
	Error           string          `json:"error,omitempty"`
}

const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)
