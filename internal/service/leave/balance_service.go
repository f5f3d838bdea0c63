package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceService owns the monthly balance rows and their paid capacity.
type BalanceService struct {
	leave.LeaveTypeRepository
	leave.LeaveBalanceRepository
	leave.AllocationRepository
}

func NewBalanceService(leaveTypeRepository leave.LeaveTypeRepository, leaveBalanceRepository leave.LeaveBalanceRepository, allocationRepository leave.AllocationRepository) *BalanceService {
	return &BalanceService{
		LeaveTypeRepository:    leaveTypeRepository,
		LeaveBalanceRepository: leaveBalanceRepository,
		AllocationRepository:   allocationRepository,
	}
}

// EnsureBalance returns the (user, type, year, month) row, creating it with
// the monthly quota when missing. A new row carries the unused part of the
// previous month; January takes December's remainder capped per type.
func (b *BalanceService) EnsureBalance(ctx context.Context, userID string, leaveType leave.LeaveType, year, month int) (leave.LeaveBalance, bool, error) {
	var (
		carried decimal.Decimal
		err     error
	)
	if month == 1 {
		carried = decimal.Zero
		if leaveType.IsCarryForward {
			carried, err = b.carryForwardFrom(ctx, userID, leaveType, year-1)
		}
	} else {
		carried, err = b.rolloverFrom(ctx, userID, leaveType.ID, year, month-1)
	}
	if err != nil {
		return leave.LeaveBalance{}, false, err
	}

	balance, created, err := b.LeaveBalanceRepository.CreateIfMissing(ctx, leave.LeaveBalance{
		UserID:         userID,
		LeaveTypeID:    leaveType.ID,
		Year:           year,
		Month:          month,
		TotalLeaves:    leaveType.MonthlyQuota,
		UsedLeaves:     decimal.Zero,
		CarriedForward: carried,
		LOPDays:        decimal.Zero,
		ConvertedDays:  decimal.Zero,
	})
	if err != nil {
		return leave.LeaveBalance{}, false, fmt.Errorf("failed to create leave balance: %w", err)
	}
	if created {
		slog.Debug("Leave balance created", "user_id", userID, "leave_type", leaveType.Code, "year", year, "month", month)
	}
	return balance, created, nil
}

// EnsureMonth creates every active type's row for the month.
func (b *BalanceService) EnsureMonth(ctx context.Context, userID string, year, month int) ([]leave.LeaveBalance, int, error) {
	types, err := b.LeaveTypeRepository.List(ctx, true)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave types: %w", err)
	}

	created := 0
	balances := make([]leave.LeaveBalance, 0, len(types))
	for _, t := range types {
		balance, isNew, err := b.EnsureBalance(ctx, userID, t, year, month)
		if err != nil {
			return nil, created, err
		}
		if isNew {
			created++
		}
		balance.LeaveTypeCode = t.Code
		balance.LeaveTypeName = t.Name
		balances = append(balances, balance)
	}
	return balances, created, nil
}

// CarryForward writes the January carry forward for year from the December
// of the previous year and returns the amount.
func (b *BalanceService) CarryForward(ctx context.Context, userID string, leaveType leave.LeaveType, year int) (decimal.Decimal, error) {
	carried := decimal.Zero
	if leaveType.IsCarryForward {
		cf, err := b.carryForwardFrom(ctx, userID, leaveType, year-1)
		if err != nil {
			return decimal.Zero, err
		}
		carried = cf
	}

	january, _, err := b.LeaveBalanceRepository.CreateIfMissing(ctx, leave.LeaveBalance{
		UserID:         userID,
		LeaveTypeID:    leaveType.ID,
		Year:           year,
		Month:          1,
		TotalLeaves:    leaveType.MonthlyQuota,
		UsedLeaves:     decimal.Zero,
		CarriedForward: carried,
		LOPDays:        decimal.Zero,
		ConvertedDays:  decimal.Zero,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create january balance: %w", err)
	}
	if !january.CarriedForward.Equal(carried) {
		january.CarriedForward = carried
		if _, err := b.LeaveBalanceRepository.Upsert(ctx, january); err != nil {
			return decimal.Zero, fmt.Errorf("failed to update carry forward: %w", err)
		}
	}
	return carried, nil
}

// RefreshRollover rewrites the carry of the month after current when that
// row already exists, so later changes to current (month-end conversion,
// admin edits) reach it. December rolls over through CarryForward instead.
func (b *BalanceService) RefreshRollover(ctx context.Context, current leave.LeaveBalance) error {
	if current.Month == 12 {
		return nil
	}
	next, err := b.LeaveBalanceRepository.Get(ctx, current.UserID, current.LeaveTypeID, current.Year, current.Month+1)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get next month balance: %w", err)
	}
	carried := decimal.Max(decimal.Zero, current.Remaining())
	if next.CarriedForward.Equal(carried) {
		return nil
	}
	next.CarriedForward = carried
	if _, err := b.LeaveBalanceRepository.Upsert(ctx, next); err != nil {
		return fmt.Errorf("failed to update rollover: %w", err)
	}
	slog.Debug("Leave rollover refreshed", "user_id", current.UserID, "leave_type_id", current.LeaveTypeID,
		"year", next.Year, "month", next.Month, "carried_forward", carried)
	return nil
}

// rolloverFrom is the unused part of an earlier month in the same year, zero when that row does not exist.
func (b *BalanceService) rolloverFrom(ctx context.Context, userID, leaveTypeID string, year, month int) (decimal.Decimal, error) {
	prev, err := b.LeaveBalanceRepository.Get(ctx, userID, leaveTypeID, year, month)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get previous month balance: %w", err)
	}
	return decimal.Max(decimal.Zero, prev.Remaining()), nil
}

func (b *BalanceService) carryForwardFrom(ctx context.Context, userID string, leaveType leave.LeaveType, year int) (decimal.Decimal, error) {
	december, err := b.LeaveBalanceRepository.Get(ctx, userID, leaveType.ID, year, 12)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get december balance: %w", err)
	}
	return leaveType.CarryForward(december.Remaining()), nil
}

// PaidCapacity is what remains on balance after holds of other pending requests, floored at zero.
func (b *BalanceService) PaidCapacity(ctx context.Context, balance leave.LeaveBalance, excludeRequestID string) (decimal.Decimal, error) {
	held, err := b.AllocationRepository.HeldPaid(ctx, balance.ID, excludeRequestID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum held paid days: %w", err)
	}
	return decimal.Max(decimal.Zero, balance.Remaining().Sub(held)), nil
}
