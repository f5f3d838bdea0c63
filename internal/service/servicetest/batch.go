package servicetest

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BatchRuns struct {
	mu    sync.Mutex
	Runs  map[string]*batch.Run
	Items map[string]bool
}

func NewBatchRuns() *BatchRuns {
	return &BatchRuns{Runs: map[string]*batch.Run{}, Items: map[string]bool{}}
}

func (s *BatchRuns) StartRun(ctx context.Context, run batch.Run) (batch.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = uuid.NewString()
	s.Runs[run.ID] = &run
	return run, nil
}

func (s *BatchRuns) FinishRun(ctx context.Context, run batch.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Runs[run.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.Runs[run.ID] = &run
	return nil
}

func (s *BatchRuns) ListRuns(ctx context.Context, job *batch.Job, limit int) ([]batch.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []batch.Run
	for _, r := range s.Runs {
		if job == nil || r.Job == *job {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *BatchRuns) LatestCompleted(ctx context.Context, job batch.Job, period string) (batch.Run, error) {
	runs, _ := s.ListRuns(ctx, &job, len(s.Runs)+1)
	for _, r := range runs {
		if r.Period == period && r.Status == batch.RunCompleted && !r.DryRun {
			return r, nil
		}
	}
	return batch.Run{}, pgx.ErrNoRows
}

// MarkItem does not roll back with a failed transaction; tests that need
// that behaviour inspect Items directly.
func (s *BatchRuns) MarkItem(ctx context.Context, job batch.Job, period, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(job) + "|" + period + "|" + userID
	if s.Items[key] {
		return false, nil
	}
	s.Items[key] = true
	return true, nil
}
