package leave

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

var halfDay = decimal.NewFromFloat(0.5)

// Allocate drains comp-off capacity first, then paid capacity, and books the
// remainder as loss of pay. Negative capacities count as zero.
func Allocate(total, availableCompOff, availablePaid decimal.Decimal) leave.Allocation {
	if !total.IsPositive() {
		return leave.Allocation{CompOff: decimal.Zero, Paid: decimal.Zero, LOP: decimal.Zero}
	}
	remaining := total

	compOff := decimal.Min(remaining, decimal.Max(availableCompOff, decimal.Zero))
	remaining = remaining.Sub(compOff)

	paid := decimal.Min(remaining, decimal.Max(availablePaid, decimal.Zero))
	remaining = remaining.Sub(paid)

	return leave.Allocation{CompOff: compOff, Paid: paid, LOP: remaining}
}

// RangeDays counts calendar days in [start, end]. A half-day request is always 0.5.
func RangeDays(start, end time.Time, isHalfDay bool) decimal.Decimal {
	if isHalfDay {
		return halfDay
	}
	if end.Before(start) {
		return decimal.Zero
	}
	days := int64(dateOnly(end).Sub(dateOnly(start)).Hours()/24) + 1
	return decimal.NewFromInt(days)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// compOffSlot is the drawable part of one earned comp-off row.
type compOffSlot struct {
	ID        string
	ExpiresOn time.Time
	Available decimal.Decimal
}

// compOffSlots subtracts other requests' holds from usable rows and orders
// them soonest expiry first.
func compOffSlots(usable []compoff.CompOff, held map[string]decimal.Decimal) ([]compOffSlot, decimal.Decimal) {
	slots := make([]compOffSlot, 0, len(usable))
	total := decimal.Zero
	for _, c := range usable {
		available := c.CreditDays.Sub(held[c.ID])
		if !available.IsPositive() {
			continue
		}
		slots = append(slots, compOffSlot{ID: c.ID, ExpiresOn: c.ExpiresOn, Available: available})
		total = total.Add(available)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].ExpiresOn.Equal(slots[j].ExpiresOn) {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].ExpiresOn.Before(slots[j].ExpiresOn)
	})
	return slots, total
}

// drawSlots takes need days from slots in order.
func drawSlots(slots []compOffSlot, need decimal.Decimal) []compoff.Draw {
	var draws []compoff.Draw
	for _, s := range slots {
		if !need.IsPositive() {
			break
		}
		take := decimal.Min(need, s.Available)
		draws = append(draws, compoff.Draw{CompOffID: s.ID, Days: take})
		need = need.Sub(take)
	}
	return draws
}

// portion is part of one ledger entry.
type portion struct {
	Entry leave.AllocationEntry
	Days  decimal.Decimal
}

// partitionEntries walks entries soonest expiry first and cuts them into
// consecutive buckets of the given sizes. Whatever is left over lands in the
// final bucket, so the latest-expiring credit is the first to be returned.
func partitionEntries(entries []leave.AllocationEntry, sizes ...decimal.Decimal) [][]portion {
	ordered := make([]leave.AllocationEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].CompOffExpiresOn, ordered[j].CompOffExpiresOn
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})

	buckets := make([][]portion, len(sizes)+1)
	bucket := 0
	want := decimal.Zero
	if len(sizes) > 0 {
		want = sizes[0]
	}
	for _, e := range ordered {
		left := e.Days
		for left.IsPositive() {
			if bucket == len(sizes) {
				buckets[bucket] = append(buckets[bucket], portion{Entry: e, Days: left})
				break
			}
			if !want.IsPositive() {
				bucket++
				if bucket < len(sizes) {
					want = sizes[bucket]
				}
				continue
			}
			take := decimal.Min(left, want)
			buckets[bucket] = append(buckets[bucket], portion{Entry: e, Days: take})
			left = left.Sub(take)
			want = want.Sub(take)
		}
	}
	return buckets
}

func sumPortions(ps []portion) decimal.Decimal {
	total := decimal.Zero
	for _, p := range ps {
		total = total.Add(p.Days)
	}
	return total
}

func subAllocation(a, b leave.Allocation) leave.Allocation {
	return leave.Allocation{
		CompOff: a.CompOff.Sub(b.CompOff),
		Paid:    a.Paid.Sub(b.Paid),
		LOP:     a.LOP.Sub(b.LOP),
	}
}
