package leave

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name                           string
		total, compOff, paid           float64
		wantCompOff, wantPaid, wantLOP float64
	}{
		{"sick quota one no comp-off", 3, 0, 1, 0, 1, 2},
		{"comp-off covers everything", 2, 5, 5, 2, 0, 0},
		{"comp-off then paid", 3, 1, 1.5, 1, 1.5, 0.5},
		{"nothing available", 2, 0, 0, 0, 0, 2},
		{"negative paid treated as zero", 1, 0, -2, 0, 0, 1},
		{"half day from paid", 0.5, 0, 1, 0, 0.5, 0},
		{"half day from half comp-off", 0.5, 0.5, 0, 0.5, 0, 0},
		{"zero total", 0, 3, 3, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allocate(d(tt.total), d(tt.compOff), d(tt.paid))
			if !got.CompOff.Equal(d(tt.wantCompOff)) || !got.Paid.Equal(d(tt.wantPaid)) || !got.LOP.Equal(d(tt.wantLOP)) {
				t.Errorf("Allocate(%v, %v, %v) = (%s, %s, %s), want (%v, %v, %v)",
					tt.total, tt.compOff, tt.paid, got.CompOff, got.Paid, got.LOP,
					tt.wantCompOff, tt.wantPaid, tt.wantLOP)
			}
		})
	}
}

func TestAllocate_SumsToTotal(t *testing.T) {
	for total := 0.5; total <= 10; total += 0.5 {
		for compOff := 0.0; compOff <= 4; compOff += 0.5 {
			for paid := -1.0; paid <= 4; paid += 0.5 {
				got := Allocate(d(total), d(compOff), d(paid))
				assert.True(t, got.Total().Equal(d(total)), "sum for %v/%v/%v", total, compOff, paid)
				assert.False(t, got.CompOff.IsNegative())
				assert.False(t, got.Paid.IsNegative())
				assert.False(t, got.LOP.IsNegative())
			}
		}
	}
}

func TestRangeDays(t *testing.T) {
	assert.True(t, RangeDays(date("2024-03-01"), date("2024-03-01"), false).Equal(d(1)))
	assert.True(t, RangeDays(date("2024-02-28"), date("2024-03-01"), false).Equal(d(3)))
	assert.True(t, RangeDays(date("2024-03-01"), date("2024-03-01"), true).Equal(d(0.5)))
	assert.True(t, RangeDays(date("2024-03-02"), date("2024-03-01"), false).IsZero())
}

func TestCompOffSlots_SoonestExpiryFirst(t *testing.T) {
	usable := []compoff.CompOff{
		{ID: "late", CreditDays: d(1), ExpiresOn: date("2024-06-01")},
		{ID: "early", CreditDays: d(1), ExpiresOn: date("2024-04-01")},
		{ID: "held", CreditDays: d(1), ExpiresOn: date("2024-03-01")},
	}
	slots, total := compOffSlots(usable, map[string]decimal.Decimal{"held": d(1), "late": d(0.5)})

	assert.True(t, total.Equal(d(1.5)))
	if assert.Len(t, slots, 2) {
		assert.Equal(t, "early", slots[0].ID)
		assert.Equal(t, "late", slots[1].ID)
		assert.True(t, slots[1].Available.Equal(d(0.5)))
	}

	draws := drawSlots(slots, d(1))
	assert.Equal(t, []compoff.Draw{{CompOffID: "early", Days: d(1)}}, draws)
}

func TestPartitionEntries(t *testing.T) {
	early, late := date("2024-04-01"), date("2024-06-01")
	entries := []leave.AllocationEntry{
		{ID: "b", Days: d(1), CompOffExpiresOn: &late},
		{ID: "a", Days: d(1.5), CompOffExpiresOn: &early},
	}

	buckets := partitionEntries(entries, d(1), d(1))

	if assert.Len(t, buckets, 3) {
		assert.Equal(t, "a", buckets[0][0].Entry.ID)
		assert.True(t, sumPortions(buckets[0]).Equal(d(1)))
		assert.True(t, sumPortions(buckets[1]).Equal(d(1)))
		assert.True(t, sumPortions(buckets[2]).Equal(d(0.5)))
		// the returned half day comes from the latest-expiring row
		assert.Equal(t, "b", buckets[2][0].Entry.ID)
	}
}

func TestPartitionEntries_ZeroKeep(t *testing.T) {
	exp := date("2024-04-01")
	entries := []leave.AllocationEntry{{ID: "a", Days: d(2), CompOffExpiresOn: &exp}}

	buckets := partitionEntries(entries, decimal.Zero)

	assert.Empty(t, buckets[0])
	assert.True(t, sumPortions(buckets[1]).Equal(d(2)))
}
