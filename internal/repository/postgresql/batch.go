package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

const batchRunColumns = `id, job, period, status, processed, skipped, failed, dry_run, triggered_by, error, started_at, finished_at`

type batchRepositoryImpl struct {
	db *database.DB
}

func NewBatchRepository(db *database.DB) batch.Repository {
	return &batchRepositoryImpl{db: db}
}

func scanRun(row scanner) (batch.Run, error) {
	var r batch.Run
	err := row.Scan(&r.ID, &r.Job, &r.Period, &r.Status, &r.Processed, &r.Skipped, &r.Failed,
		&r.DryRun, &r.TriggeredBy, &r.Error, &r.StartedAt, &r.FinishedAt)
	return r, err
}

func (r *batchRepositoryImpl) StartRun(ctx context.Context, run batch.Run) (batch.Run, error) {
	q := GetQuerier(ctx, r.db)
	started, err := scanRun(q.QueryRow(ctx, `
		INSERT INTO batch_runs (job, period, status, dry_run, triggered_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+batchRunColumns, run.Job, run.Period, batch.RunRunning, run.DryRun, run.TriggeredBy))
	if err != nil {
		return batch.Run{}, fmt.Errorf("failed to start batch run: %w", err)
	}
	return started, nil
}

func (r *batchRepositoryImpl) FinishRun(ctx context.Context, run batch.Run) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		UPDATE batch_runs SET status = $1, processed = $2, skipped = $3, failed = $4, error = $5, finished_at = NOW()
		WHERE id = $6`, run.Status, run.Processed, run.Skipped, run.Failed, run.Error, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish batch run: %w", err)
	}
	return nil
}

func (r *batchRepositoryImpl) ListRuns(ctx context.Context, job *batch.Job, limit int) ([]batch.Run, error) {
	q := GetQuerier(ctx, r.db)
	if limit < 1 {
		limit = 50
	}
	rows, err := q.Query(ctx, `
		SELECT `+batchRunColumns+` FROM batch_runs
		WHERE ($1::text IS NULL OR job = $1)
		ORDER BY started_at DESC
		LIMIT $2`, job, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch runs: %w", err)
	}
	defer rows.Close()

	var out []batch.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *batchRepositoryImpl) LatestCompleted(ctx context.Context, job batch.Job, period string) (batch.Run, error) {
	q := GetQuerier(ctx, r.db)
	return scanRun(q.QueryRow(ctx, `
		SELECT `+batchRunColumns+` FROM batch_runs
		WHERE job = $1 AND period = $2 AND status = 'completed' AND NOT dry_run
		ORDER BY started_at DESC
		LIMIT 1`, job, period))
}

func (r *batchRepositoryImpl) MarkItem(ctx context.Context, job batch.Job, period, userID string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		INSERT INTO batch_run_items (job, period, user_id) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`, job, period, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark batch item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
