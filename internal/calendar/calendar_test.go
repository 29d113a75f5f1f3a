package calendar_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-checklist/internal/calendar"
)

var bogota = time.FixedZone("UTC-5", -5*60*60)

func TestTodayUsesCanonicalZone(t *testing.T) {
	// 02:00 UTC on the 15th is still the 14th in UTC-5.
	now := time.Date(2025, 3, 15, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, civil.Date{Year: 2025, Month: 3, Day: 14}, calendar.Today(now, bogota))
	assert.Equal(t, civil.Date{Year: 2025, Month: 3, Day: 15}, calendar.Today(now, time.UTC))
}

func TestDayBounds(t *testing.T) {
	start, end := calendar.DayBounds(civil.Date{Year: 2025, Month: 3, Day: 14}, bogota)
	assert.Equal(t, time.Date(2025, 3, 14, 5, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2025, 3, 15, 5, 0, 0, 0, time.UTC), end.UTC())
}

func TestMonthsBetweenIgnoresDayOfMonth(t *testing.T) {
	tests := []struct {
		name string
		from civil.Date
		to   civil.Date
		want int
	}{
		{"same month", civil.Date{Year: 2025, Month: 5, Day: 1}, civil.Date{Year: 2025, Month: 5, Day: 31}, 0},
		{"end to start of next month", civil.Date{Year: 2025, Month: 1, Day: 31}, civil.Date{Year: 2025, Month: 2, Day: 1}, 1},
		{"across years", civil.Date{Year: 2023, Month: 11, Day: 20}, civil.Date{Year: 2025, Month: 2, Day: 3}, 15},
		{"backwards", civil.Date{Year: 2025, Month: 3, Day: 1}, civil.Date{Year: 2025, Month: 1, Day: 1}, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.MonthsBetween(tt.from, tt.to))
		})
	}
}

func TestStartOfWeekIsSunday(t *testing.T) {
	// 2025-03-12 is a Wednesday.
	got := calendar.StartOfWeek(civil.Date{Year: 2025, Month: 3, Day: 12}, bogota)
	assert.Equal(t, civil.Date{Year: 2025, Month: 3, Day: 9}, got)

	sunday := civil.Date{Year: 2025, Month: 3, Day: 9}
	assert.Equal(t, sunday, calendar.StartOfWeek(sunday, bogota))
}

func TestIsWeekend(t *testing.T) {
	// Saturday 03:00 UTC is Friday 22:00 in UTC-5.
	saturdayUTC := time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC)
	assert.False(t, calendar.IsWeekend(saturdayUTC, bogota))
	assert.True(t, calendar.IsWeekend(saturdayUTC, time.UTC))
}

func TestNextMonthlyOccurrence(t *testing.T) {
	today := civil.Date{Year: 2025, Month: 1, Day: 20}
	assert.Equal(t, civil.Date{Year: 2025, Month: 1, Day: 25}, calendar.NextMonthlyOccurrence(today, 25))
	assert.Equal(t, today, calendar.NextMonthlyOccurrence(today, 20))
	assert.Equal(t, civil.Date{Year: 2025, Month: 2, Day: 10}, calendar.NextMonthlyOccurrence(today, 10))
	// February has no 31st.
	assert.Equal(t, civil.Date{Year: 2025, Month: 2, Day: 28},
		calendar.NextMonthlyOccurrence(civil.Date{Year: 2025, Month: 2, Day: 1}, 31))
}

func TestParse(t *testing.T) {
	d, err := calendar.Parse("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = calendar.Parse("2024-13-01")
	assert.Error(t, err)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, calendar.DaysInMonth(2024, time.February))
	assert.Equal(t, 28, calendar.DaysInMonth(2025, time.February))
	assert.Equal(t, 31, calendar.DaysInMonth(2025, time.December))
}
