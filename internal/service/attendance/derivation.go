package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var secondsPerHour = decimal.NewFromInt(3600)

// Rules turns punches into working hours and a computed status.
type Rules struct {
	PresentHours   decimal.Decimal
	HalfDayHours   decimal.Decimal
	ShortDayStatus attendance.Status
	DefaultShift   attendance.Shift
	Loc            *time.Location
}

func NewRules(p config.PolicyConfig, loc *time.Location) Rules {
	if loc == nil {
		loc = time.UTC
	}
	shift := attendance.Shift{Name: "Default", GraceMinutes: p.LateGraceMinutes, IsActive: true}
	shift.StartTime, _ = validator.IsValidClock(p.DefaultShiftStart)
	shift.EndTime, _ = validator.IsValidClock(p.DefaultShiftEnd)
	if bs, ok := validator.IsValidClock(p.DefaultBreakStart); ok {
		if be, ok := validator.IsValidClock(p.DefaultBreakEnd); ok {
			shift.BreakStart, shift.BreakEnd = &bs, &be
		}
	}
	short := attendance.Status(p.ShortDayStatus)
	if short != attendance.StatusAbsent {
		short = attendance.StatusHalfDay
	}
	return Rules{
		PresentHours:   p.PresentHours,
		HalfDayHours:   p.HalfDayHours,
		ShortDayStatus: short,
		DefaultShift:   shift,
		Loc:            loc,
	}
}

// WorkingHours is out - in minus the part of [in, out] inside the break,
// in hours rounded to 2 places and never negative.
func WorkingHours(in, out time.Time, breakStart, breakEnd *time.Time) decimal.Decimal {
	if !out.After(in) {
		return decimal.Zero
	}
	worked := out.Sub(in)
	if breakStart != nil && breakEnd != nil {
		worked -= overlap(in, out, *breakStart, *breakEnd)
	}
	if worked < 0 {
		worked = 0
	}
	return decimal.NewFromInt(int64(worked / time.Second)).Div(secondsPerHour).Round(2)
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start, end := aStart, aEnd
	if bStart.After(start) {
		start = bStart
	}
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// Status maps hours to present, half_day or the configured short-day status.
func (r Rules) Status(hours decimal.Decimal) attendance.Status {
	switch {
	case hours.GreaterThanOrEqual(r.PresentHours):
		return attendance.StatusPresent
	case hours.GreaterThanOrEqual(r.HalfDayHours):
		return attendance.StatusHalfDay
	default:
		return r.ShortDayStatus
	}
}

// CompOffCredit is what an off-day session of hours earns.
func (r Rules) CompOffCredit(hours decimal.Decimal) decimal.Decimal {
	switch {
	case hours.GreaterThanOrEqual(r.PresentHours):
		return decimal.NewFromInt(1)
	case hours.GreaterThanOrEqual(r.HalfDayHours):
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.Zero
	}
}

// ShiftOrDefault returns s, or the configured shift when s is nil.
func (r Rules) ShiftOrDefault(s *attendance.Shift) attendance.Shift {
	if s == nil {
		return r.DefaultShift
	}
	return *s
}

// At places an offset from midnight on the local calendar day.
func (r Rules) At(day time.Time, offset time.Duration) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, r.Loc).Add(offset)
}

// Derive fills WorkingHours and Status of a closed session.
func (r Rules) Derive(a *attendance.Attendance, shift attendance.Shift) {
	if a.PunchIn == nil || a.PunchOut == nil {
		return
	}
	var bs, be *time.Time
	if shift.BreakStart != nil && shift.BreakEnd != nil {
		s, e := r.At(a.Date, *shift.BreakStart), r.At(a.Date, *shift.BreakEnd)
		bs, be = &s, &e
	}
	a.WorkingHours = WorkingHours(*a.PunchIn, *a.PunchOut, bs, be)
	a.Status = r.Status(a.WorkingHours)
}

// IsLate reports a punch after shift start plus grace.
func (r Rules) IsLate(day, punchIn time.Time, shift attendance.Shift) bool {
	limit := r.At(day, shift.StartTime).Add(time.Duration(shift.GraceMinutes) * time.Minute)
	return punchIn.After(limit)
}
