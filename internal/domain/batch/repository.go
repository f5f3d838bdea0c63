package batch

import "context"

type Repository interface {
	StartRun(ctx context.Context, run Run) (Run, error)
	FinishRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, job *Job, limit int) ([]Run, error)
	// LatestCompleted returns the newest completed, non dry-run run of job for period.
	LatestCompleted(ctx context.Context, job Job, period string) (Run, error)
	// MarkItem records (job, period, user) as done. It returns false when the marker already existed.
	MarkItem(ctx context.Context, job Job, period, userID string) (bool, error)
}
