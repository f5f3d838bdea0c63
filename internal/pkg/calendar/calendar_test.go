package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestCalendar_IsOffDay(t *testing.T) {
	c := New(Holiday{Name: "Holi", Date: date("2026-03-04")})

	tests := []struct {
		day       string
		weeklyOff time.Weekday
		want      bool
	}{
		{"2026-03-01", time.Sunday, true},     // weekly off
		{"2026-03-07", time.Sunday, false},    // saturday is a workday
		{"2026-03-07", time.Saturday, true},   // unless it is the weekly off
		{"2026-03-04", time.Sunday, true},     // holiday
		{"2027-03-04", time.Sunday, false},    // same date next year
		{"2026-03-05", time.Wednesday, false}, // thursday
	}

	for _, tt := range tests {
		if got := c.IsOffDay(date(tt.day), tt.weeklyOff); got != tt.want {
			t.Errorf("IsOffDay(%s, %s) = %v, want %v", tt.day, tt.weeklyOff, got, tt.want)
		}
	}
}

func TestCalendar_Holiday(t *testing.T) {
	c := New(Holiday{Name: "Holi", Date: date("2026-03-04")})

	name, ok := c.Holiday(date("2026-03-04"))
	assert.True(t, ok)
	assert.Equal(t, "Holi", name)

	_, ok = c.Holiday(date("2026-03-05"))
	assert.False(t, ok)
}

func TestCalendar_Workdays(t *testing.T) {
	c := New(Holiday{Name: "Holi", Date: date("2026-03-04")})

	days := c.Workdays(date("2026-03-01"), date("2026-03-07"), time.Sunday)

	assert.Len(t, days, 5)
	assert.Equal(t, date("2026-03-02"), days[0])
	assert.NotContains(t, days, date("2026-03-04"))
}
