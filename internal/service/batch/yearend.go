package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// yearEnd opens January of year+1 for every employee with the capped
// carry forward of each carry-forward type.
func (s *BatchServiceImpl) yearEnd(ctx context.Context, period string, year int, dryRun bool) ([]batch.Outcome, error) {
	types, err := s.leaveTypeRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	cutoff := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

	return s.forEachEmployee(ctx, cutoff, func(ctx context.Context, u user.User) batch.Outcome {
		outcome := zeroOutcome(batch.OutcomeProcessed)
		err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			fresh, err := s.Repository.MarkItem(txCtx, batch.JobYearEnd, period, u.ID)
			if err != nil {
				return fmt.Errorf("failed to mark year-end item: %w", err)
			}
			if !fresh {
				outcome.Status = batch.OutcomeSkipped
				return nil
			}

			total := decimal.Zero
			for _, t := range types {
				carried, err := s.balanceService.CarryForward(txCtx, u.ID, t, year+1)
				if err != nil {
					return err
				}
				total = total.Add(carried)
			}
			outcome.CarryForward = total
			if dryRun {
				return batch.ErrDryRunRollback
			}
			return nil
		})
		if err != nil && !errors.Is(err, batch.ErrDryRunRollback) {
			return failed(err)
		}
		return outcome
	})
}
