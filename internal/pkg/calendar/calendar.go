// Package calendar decides which dates are working days for an employee:
// every weekday works except the employee's weekly off and company holidays.
package calendar

import (
	"time"

	"github.com/rickar/cal/v2"
)

// Holiday is one dated company holiday.
type Holiday struct {
	Name string
	Date time.Time
}

type Calendar struct {
	bc *cal.BusinessCalendar
}

// New builds a calendar over the given holidays.
func New(holidays ...Holiday) *Calendar {
	bc := cal.NewBusinessCalendar()
	bc.Name = "company"
	for d := time.Sunday; d <= time.Saturday; d++ {
		bc.SetWorkday(d, true)
	}
	for _, h := range holidays {
		bc.AddHoliday(&cal.Holiday{
			Name:      h.Name,
			Type:      cal.ObservancePublic,
			Month:     h.Date.Month(),
			Day:       h.Date.Day(),
			StartYear: h.Date.Year(),
			EndYear:   h.Date.Year(),
			Func:      cal.CalcDayOfMonth,
		})
	}
	return &Calendar{bc: bc}
}

// Holiday returns the holiday name on day.
func (c *Calendar) Holiday(day time.Time) (string, bool) {
	actual, _, h := c.bc.IsHoliday(day)
	if !actual || h == nil {
		return "", false
	}
	return h.Name, true
}

// IsOffDay reports whether day is weeklyOff or a holiday.
func (c *Calendar) IsOffDay(day time.Time, weeklyOff time.Weekday) bool {
	if day.Weekday() == weeklyOff {
		return true
	}
	return !c.bc.IsWorkday(day)
}

// Workdays lists the working days in [start, end].
func (c *Calendar) Workdays(start, end time.Time, weeklyOff time.Weekday) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !c.IsOffDay(d, weeklyOff) {
			out = append(out, d)
		}
	}
	return out
}
