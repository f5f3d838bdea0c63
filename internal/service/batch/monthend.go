package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const lopNote = "LOP - no leave balance"

// monthEnd settles sick leave for every employee: absences are deducted
// from the month's sick balance, the excess becomes loss of pay and any
// unused sick leave is converted to a comp-off dated the last day of the month.
func (s *BatchServiceImpl) monthEnd(ctx context.Context, period string, start, end time.Time, dryRun bool) ([]batch.Outcome, error) {
	sick, err := s.leaveTypeRepo.GetByCode(ctx, s.policy.SickLeaveCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, leave.ErrLeaveTypeNotFound
		}
		return nil, fmt.Errorf("failed to get sick leave type: %w", err)
	}

	return s.forEachEmployee(ctx, end, func(ctx context.Context, u user.User) batch.Outcome {
		var outcome batch.Outcome
		err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			var err error
			outcome, err = s.monthEndOne(txCtx, u, sick, period, start, end)
			if err != nil {
				return err
			}
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

func (s *BatchServiceImpl) monthEndOne(ctx context.Context, u user.User, sick leave.LeaveType, period string, start, end time.Time) (batch.Outcome, error) {
	fresh, err := s.Repository.MarkItem(ctx, batch.JobMonthEnd, period, u.ID)
	if err != nil {
		return batch.Outcome{}, fmt.Errorf("failed to mark month-end item: %w", err)
	}
	if !fresh {
		return zeroOutcome(batch.OutcomeSkipped), nil
	}

	absents, err := s.attendanceRepo.ListByEffectiveStatus(ctx, u.ID, start, end, attendance.StatusAbsent)
	if err != nil {
		return batch.Outcome{}, fmt.Errorf("failed to list absences: %w", err)
	}
	if _, _, err := s.balanceService.EnsureBalance(ctx, u.ID, sick, start.Year(), int(start.Month())); err != nil {
		return batch.Outcome{}, err
	}
	balance, err := s.balanceRepo.GetForUpdate(ctx, u.ID, sick.ID, start.Year(), int(start.Month()))
	if err != nil {
		return batch.Outcome{}, fmt.Errorf("failed to lock sick leave balance: %w", err)
	}

	available := decimal.Max(decimal.Zero, balance.Remaining())
	absentDays := decimal.NewFromInt(int64(len(absents)))
	deducted := decimal.Min(absentDays, available)
	lop := absentDays.Sub(deducted)
	unused := available.Sub(deducted)

	for i, a := range absents {
		if !decimal.NewFromInt(int64(i + 1)).GreaterThan(deducted) || strings.Contains(a.Notes, "LOP") {
			continue
		}
		a.Notes = strings.TrimSpace(lopNote + ". " + a.Notes)
		if err := s.attendanceRepo.Update(ctx, a); err != nil {
			return batch.Outcome{}, fmt.Errorf("failed to note loss of pay: %w", err)
		}
	}

	credited := decimal.Zero
	if unused.IsPositive() {
		_, created, err := s.compOffService.Earn(ctx, compoff.CompOff{
			UserID:      u.ID,
			EarnedDate:  end,
			EarnedHours: unused.Mul(s.policy.HoursPerDay),
			CreditDays:  unused,
			Reason:      fmt.Sprintf("Unused sick leave for %s", period),
			Source:      compoff.SourceMonthEndSick,
			SourceKey:   period,
		})
		if err != nil {
			return batch.Outcome{}, err
		}
		if created {
			credited = unused
		}
	}

	balance.UsedLeaves = balance.UsedLeaves.Add(deducted)
	balance.LOPDays = balance.LOPDays.Add(lop)
	balance.ConvertedDays = balance.ConvertedDays.Add(credited)
	if err := s.balanceRepo.Update(ctx, balance); err != nil {
		return batch.Outcome{}, fmt.Errorf("failed to update sick leave balance: %w", err)
	}
	if err := s.balanceService.RefreshRollover(ctx, balance); err != nil {
		return batch.Outcome{}, err
	}

	return batch.Outcome{
		Status:          batch.OutcomeProcessed,
		AbsentDays:      len(absents),
		DeductedDays:    deducted,
		LOPDays:         lop,
		CompOffCredited: credited,
		CarryForward:    decimal.Zero,
	}, nil
}
