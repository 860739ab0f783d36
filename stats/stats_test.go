package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendanceRate(t *testing.T) {
	s := AttendanceSummary{TotalShifts: 10, PresentCount: 8, LateCount: 2}
	rate, ok := s.Rate()
	assert.True(t, ok)
	assert.InDelta(t, 100.0, rate, 0.001)
	assert.Equal(t, "100.0%", s.RateLabel())

	s = AttendanceSummary{TotalShifts: 8, PresentCount: 5, LateCount: 1, AbsentCount: 2}
	rate, ok = s.Rate()
	assert.True(t, ok)
	assert.InDelta(t, 75.0, rate, 0.001)
	assert.Equal(t, "75.0%", s.RateLabel())
}

func TestAttendanceRateUndefinedWithoutShifts(t *testing.T) {
	var s AttendanceSummary
	_, ok := s.Rate()
	assert.False(t, ok)
	assert.Equal(t, "N/A", s.RateLabel())
}

func TestAttendanceRateOnlyLate(t *testing.T) {
	s := AttendanceSummary{TotalShifts: 4, LateCount: 4}
	rate, ok := s.Rate()
	assert.True(t, ok)
	assert.InDelta(t, 100.0, rate, 0.001)
}
