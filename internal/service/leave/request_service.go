package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// RequestService moves capacity between comp-off rows, balance rows and the
// allocation ledger. Every method expects to run inside a transaction that
// already holds the user's lock.
type RequestService struct {
	leave.LeaveBalanceRepository
	leave.AllocationRepository
	compOffService compoff.CompOffService
	balanceService *BalanceService
}

func NewRequestService(leaveBalanceRepository leave.LeaveBalanceRepository, allocationRepository leave.AllocationRepository, compOffService compoff.CompOffService, balanceService *BalanceService) *RequestService {
	return &RequestService{
		LeaveBalanceRepository: leaveBalanceRepository,
		AllocationRepository:   allocationRepository,
		compOffService:         compOffService,
		balanceService:         balanceService,
	}
}

// Capacity is what a request may draw from at a point in time.
type Capacity struct {
	slots   []compOffSlot
	compOff decimal.Decimal
	balance leave.LeaveBalance
	paid    decimal.Decimal
}

// CapacityFor computes comp-off and paid capacity for a request of leaveType
// starting on start, ignoring holds of excludeRequestID.
func (r *RequestService) CapacityFor(ctx context.Context, userID string, leaveType leave.LeaveType, start time.Time, excludeRequestID string) (Capacity, error) {
	usable, err := r.compOffService.Usable(ctx, userID, start)
	if err != nil {
		return Capacity{}, err
	}
	held, err := r.AllocationRepository.HeldCompOff(ctx, userID, excludeRequestID)
	if err != nil {
		return Capacity{}, fmt.Errorf("failed to sum held comp-off: %w", err)
	}
	slots, compOffTotal := compOffSlots(usable, held)

	balance, _, err := r.balanceService.EnsureBalance(ctx, userID, leaveType, start.Year(), int(start.Month()))
	if err != nil {
		return Capacity{}, err
	}
	balance, err = r.LeaveBalanceRepository.GetByIDForUpdate(ctx, balance.ID)
	if err != nil {
		return Capacity{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}

	paid := decimal.Zero
	if leaveType.IsPaid {
		paid, err = r.balanceService.PaidCapacity(ctx, balance, excludeRequestID)
		if err != nil {
			return Capacity{}, err
		}
	}

	return Capacity{slots: slots, compOff: compOffTotal, balance: balance, paid: paid}, nil
}

// Hold writes held ledger rows for request.Allocation.
func (r *RequestService) Hold(ctx context.Context, request leave.LeaveRequest, c Capacity) error {
	if request.Allocation.CompOff.GreaterThan(c.compOff) {
		return leave.ErrInsufficientCompOffHeld
	}
	for _, draw := range drawSlots(c.slots, request.Allocation.CompOff) {
		if err := r.addEntry(ctx, request, leave.SourceCompOff, &draw.CompOffID, nil, draw.Days, leave.StateHeld); err != nil {
			return err
		}
	}
	return r.addBalanceEntries(ctx, request, c.balance.ID, leave.StateHeld)
}

// Consume draws comp-off rows and books paid and lop days on the balance row.
func (r *RequestService) Consume(ctx context.Context, request leave.LeaveRequest, c Capacity) error {
	if request.Allocation.CompOff.GreaterThan(c.compOff) {
		return leave.ErrInsufficientCompOffHeld
	}
	for _, draw := range drawSlots(c.slots, request.Allocation.CompOff) {
		rest, err := r.compOffService.Consume(ctx, draw, request.StartDate)
		if err != nil {
			return err
		}
		// other requests' holds follow the unused credit to its new row
		if rest != nil {
			if err := r.AllocationRepository.MoveHeldCompOff(ctx, draw.CompOffID, rest.ID); err != nil {
				return fmt.Errorf("failed to move comp-off holds: %w", err)
			}
		}
		if err := r.addEntry(ctx, request, leave.SourceCompOff, &draw.CompOffID, nil, draw.Days, leave.StateConsumed); err != nil {
			return err
		}
	}

	if request.Allocation.Paid.IsPositive() || request.Allocation.LOP.IsPositive() {
		if err := r.LeaveBalanceRepository.AddUsage(ctx, c.balance.ID, request.Allocation.Paid, request.Allocation.LOP); err != nil {
			return fmt.Errorf("failed to book leave usage: %w", err)
		}
	}
	return r.addBalanceEntries(ctx, request, c.balance.ID, leave.StateConsumed)
}

// Release drops every hold of requestID.
func (r *RequestService) Release(ctx context.Context, requestID string) error {
	if err := r.AllocationRepository.ReleaseHeld(ctx, requestID); err != nil {
		return fmt.Errorf("failed to release holds: %w", err)
	}
	return nil
}

// RestoreAll gives back everything requestID consumed and returns the amounts.
func (r *RequestService) RestoreAll(ctx context.Context, requestID string) (leave.Allocation, error) {
	entries, err := r.AllocationRepository.ListByRequest(ctx, requestID, leave.StateConsumed)
	if err != nil {
		return leave.Allocation{}, fmt.Errorf("failed to list consumed allocations: %w", err)
	}
	restored := zeroAllocation()
	for _, e := range entries {
		if err := r.giveBack(ctx, e, e.Days); err != nil {
			return leave.Allocation{}, err
		}
		if err := r.AllocationRepository.UpdateDays(ctx, e.ID, decimal.Zero, leave.StateReleased); err != nil {
			return leave.Allocation{}, fmt.Errorf("failed to release allocation: %w", err)
		}
		restored = addToAllocation(restored, e.Source, e.Days)
	}
	return restored, nil
}

// Reapportion cuts the consumed rows of request into the kept segment, an
// optional tail request and the restored surplus, per plan.
func (r *RequestService) Reapportion(ctx context.Context, request leave.LeaveRequest, plan SplitPlan, tail *leave.LeaveRequest) (leave.Allocation, error) {
	entries, err := r.AllocationRepository.ListByRequest(ctx, request.ID, leave.StateConsumed)
	if err != nil {
		return leave.Allocation{}, fmt.Errorf("failed to list consumed allocations: %w", err)
	}

	keep, tailAlloc := zeroAllocation(), zeroAllocation()
	if plan.Keep != nil {
		keep = plan.Keep.Allocation
	}
	if plan.Tail != nil {
		tailAlloc = plan.Tail.Allocation
	}

	restored := zeroAllocation()
	for _, source := range []leave.AllocationSource{leave.SourceCompOff, leave.SourcePaid, leave.SourceLOP} {
		var group []leave.AllocationEntry
		for _, e := range entries {
			if e.Source == source {
				group = append(group, e)
			}
		}
		if len(group) == 0 {
			continue
		}

		buckets := partitionEntries(group, pick(keep, source), pick(tailAlloc, source))
		kept := map[string]decimal.Decimal{}
		for _, p := range buckets[0] {
			kept[p.Entry.ID] = kept[p.Entry.ID].Add(p.Days)
		}
		if tail != nil {
			for _, p := range buckets[1] {
				if err := r.addEntry(ctx, *tail, source, p.Entry.CompOffID, p.Entry.LeaveBalanceID, p.Days, leave.StateConsumed); err != nil {
					return leave.Allocation{}, err
				}
			}
		}
		for _, p := range buckets[2] {
			if err := r.giveBack(ctx, p.Entry, p.Days); err != nil {
				return leave.Allocation{}, err
			}
			restored = addToAllocation(restored, source, p.Days)
		}

		for _, e := range group {
			days := kept[e.ID]
			state := leave.StateConsumed
			if !days.IsPositive() {
				state = leave.StateReleased
			}
			if days.Equal(e.Days) && state == e.State {
				continue
			}
			if err := r.AllocationRepository.UpdateDays(ctx, e.ID, days, state); err != nil {
				return leave.Allocation{}, fmt.Errorf("failed to update allocation: %w", err)
			}
		}
	}
	return restored, nil
}

// giveBack returns days of a consumed entry to its source.
func (r *RequestService) giveBack(ctx context.Context, e leave.AllocationEntry, days decimal.Decimal) error {
	if !days.IsPositive() {
		return nil
	}
	switch e.Source {
	case leave.SourceCompOff:
		if e.CompOffID == nil {
			return fmt.Errorf("comp-off allocation %s has no comp-off row", e.ID)
		}
		return r.compOffService.Restore(ctx, compoff.Draw{CompOffID: *e.CompOffID, Days: days})
	case leave.SourcePaid, leave.SourceLOP:
		if e.LeaveBalanceID == nil {
			return fmt.Errorf("allocation %s has no balance row", e.ID)
		}
		used, lop := decimal.Zero, decimal.Zero
		if e.Source == leave.SourcePaid {
			used = days.Neg()
		} else {
			lop = days.Neg()
		}
		if err := r.LeaveBalanceRepository.AddUsage(ctx, *e.LeaveBalanceID, used, lop); err != nil {
			return fmt.Errorf("failed to restore leave balance: %w", err)
		}
	}
	return nil
}

func (r *RequestService) addBalanceEntries(ctx context.Context, request leave.LeaveRequest, balanceID string, state leave.AllocationState) error {
	if err := r.addEntry(ctx, request, leave.SourcePaid, nil, &balanceID, request.Allocation.Paid, state); err != nil {
		return err
	}
	return r.addEntry(ctx, request, leave.SourceLOP, nil, &balanceID, request.Allocation.LOP, state)
}

func (r *RequestService) addEntry(ctx context.Context, request leave.LeaveRequest, source leave.AllocationSource, compOffID, balanceID *string, days decimal.Decimal, state leave.AllocationState) error {
	if !days.IsPositive() {
		return nil
	}
	_, err := r.AllocationRepository.Create(ctx, leave.AllocationEntry{
		LeaveRequestID: request.ID,
		UserID:         request.UserID,
		Source:         source,
		CompOffID:      compOffID,
		LeaveBalanceID: balanceID,
		Days:           days,
		State:          state,
	})
	if err != nil {
		return fmt.Errorf("failed to record %s allocation: %w", source, err)
	}
	return nil
}

func zeroAllocation() leave.Allocation {
	return leave.Allocation{CompOff: decimal.Zero, Paid: decimal.Zero, LOP: decimal.Zero}
}

func pick(a leave.Allocation, source leave.AllocationSource) decimal.Decimal {
	switch source {
	case leave.SourceCompOff:
		return a.CompOff
	case leave.SourcePaid:
		return a.Paid
	default:
		return a.LOP
	}
}

func addToAllocation(a leave.Allocation, source leave.AllocationSource, days decimal.Decimal) leave.Allocation {
	switch source {
	case leave.SourceCompOff:
		a.CompOff = a.CompOff.Add(days)
	case leave.SourcePaid:
		a.Paid = a.Paid.Add(days)
	default:
		a.LOP = a.LOP.Add(days)
	}
	return a
}
