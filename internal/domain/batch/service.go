package batch

import "context"

type Service interface {
	// Run executes job for period (empty for the default period) and records a batch_runs row.
	Run(ctx context.Context, job Job, req TriggerRequest, triggeredBy string) (RunResponse, error)
	ListRuns(ctx context.Context, job *Job, limit int) ([]RunResponse, error)
}
