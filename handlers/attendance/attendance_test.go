package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frsm-backend/models"
)

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2026-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", start.Format("2006-01-02"))
	assert.Equal(t, "2026-02-28", end.Format("2006-01-02"))

	start, end, err = MonthRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", end.Format("2006-01-02"), "leap year")

	start, end, err = MonthRange("2026-12")
	require.NoError(t, err)
	assert.Equal(t, "2026-12-01", start.Format("2006-01-02"))
	assert.Equal(t, "2026-12-31", end.Format("2006-01-02"))
}

func TestMonthRangeDefaultsToCurrentMonth(t *testing.T) {
	start, end, err := MonthRange("")
	require.NoError(t, err)
	now := time.Now()
	assert.Equal(t, now.Year(), start.Year())
	assert.Equal(t, now.Month(), start.Month())
	assert.Equal(t, 1, start.Day())
	assert.Equal(t, start.Month(), end.Month())
}

func TestMonthRangeRejectsBadInput(t *testing.T) {
	_, _, err := MonthRange("2026-13")
	assert.Error(t, err)
	_, _, err = MonthRange("February 2026")
	assert.Error(t, err)
}

func TestBuildCalendarLastRecordWins(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}
	logs := []models.AttendanceLog{
		{ShiftDate: day(3), AttendanceStatus: models.AttendancePresent},
		{ShiftDate: day(5), AttendanceStatus: models.AttendanceLate},
		{ShiftDate: day(5), AttendanceStatus: models.AttendancePresent},
		{ShiftDate: day(9), AttendanceStatus: models.AttendanceAbsent},
	}

	days := BuildCalendar(logs)
	assert.Len(t, days, 3)
	assert.Equal(t, models.AttendancePresent, days[3])
	assert.Equal(t, models.AttendancePresent, days[5], "later record overrides the earlier one")
	assert.Equal(t, models.AttendanceAbsent, days[9])
}

func TestBuildCalendarEmpty(t *testing.T) {
	assert.Empty(t, BuildCalendar(nil))
}
