package batch

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// TriggerRequest is accepted by the cron and admin endpoints. Period is
// YYYY-MM for month-end, YYYY for year-end and YYYY-MM-DD for daily jobs;
// empty means the job's default period.
type TriggerRequest struct {
	Period string `json:"period"`
	DryRun bool   `json:"dry_run"`
	Secret string `json:"secret,omitempty"`
	// Force skips the hour gate of daily jobs.
	Force bool `json:"force"`
}

func (r *TriggerRequest) Validate(job Job) error {
	if r.Period == "" {
		return nil
	}
	var errs validator.ValidationErrors
	layout := PeriodLayout(job)
	if _, err := time.Parse(layout, r.Period); err != nil {
		errs.Add("period", "period must match "+layout)
	}
	return errs.Err()
}

// PeriodLayout returns the time layout of job's period key.
func PeriodLayout(job Job) string {
	switch job {
	case JobMonthEnd:
		return "2006-01"
	case JobYearEnd:
		return "2006"
	default:
		return "2006-01-02"
	}
}

type RunResponse struct {
	ID          string     `json:"id"`
	Job         string     `json:"job"`
	Period      string     `json:"period"`
	Status      string     `json:"status"`
	Processed   int        `json:"processed"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	DryRun      bool       `json:"dry_run"`
	TriggeredBy string     `json:"triggered_by"`
	Error       *string    `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Outcomes    []Outcome  `json:"outcomes,omitempty"`
}

func ToRunResponse(r Run, outcomes []Outcome) RunResponse {
	return RunResponse{
		ID:          r.ID,
		Job:         string(r.Job),
		Period:      r.Period,
		Status:      string(r.Status),
		Processed:   r.Processed,
		Skipped:     r.Skipped,
		Failed:      r.Failed,
		DryRun:      r.DryRun,
		TriggeredBy: r.TriggeredBy,
		Error:       r.Error,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Outcomes:    outcomes,
	}
}
