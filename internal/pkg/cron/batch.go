package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
)

const triggeredBy = "scheduler"

// BatchJobs fires the batch jobs from an hourly tick.
type BatchJobs struct {
	runner batch.Service
	policy config.PolicyConfig
	loc    *time.Location
	now    func() time.Time
}

func NewBatchJobs(runner batch.Service, policy config.PolicyConfig, loc *time.Location) *BatchJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &BatchJobs{runner: runner, policy: policy, loc: loc, now: time.Now}
}

func (j *BatchJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("batch_jobs", time.Hour, j.Tick)
}

// Due lists the jobs whose hour it is at t, in the order they must run:
// absences are marked before month-end counts them and month-end closes
// December before year-end carries it forward.
func (j *BatchJobs) Due(t time.Time) []batch.Job {
	t = t.In(j.loc)
	hour := t.Hour()

	var due []batch.Job
	if hour == j.policy.CompOffExpiryHour {
		due = append(due, batch.JobExpireCompOffs)
	}
	if hour == j.policy.AbsentMarkingHour {
		due = append(due, batch.JobMarkAbsent)
		if t.Day() == j.policy.MonthEndDayOfMonth {
			due = append(due, batch.JobMonthEnd)
			if t.Month() == j.policy.YearEndMonthOfYear {
				due = append(due, batch.JobYearEnd)
			}
		}
	}
	if hour == j.policy.AutoPunchOutHour {
		due = append(due, batch.JobAutoPunchOut)
	}
	return due
}

// Tick runs every due job for its default period. A run already held by
// another runner is not an error.
func (j *BatchJobs) Tick(ctx context.Context) error {
	var errs []error
	for _, job := range j.Due(j.now()) {
		resp, err := j.runner.Run(ctx, job, batch.TriggerRequest{}, triggeredBy)
		switch {
		case errors.Is(err, batch.ErrJobRunning):
			slog.Info("Cron: batch job already running", "job", job)
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", job, err))
		default:
			slog.Info("Cron: batch job done", "job", job, "period", resp.Period, "status", resp.Status,
				"processed", resp.Processed, "skipped", resp.Skipped, "failed", resp.Failed)
		}
	}
	return errors.Join(errs...)
}
