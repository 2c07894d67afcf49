package pass

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = Limits{MaxDailyWindow: 6 * time.Hour, MaxPassDays: 30}

func TestParseClock(t *testing.T) {
	min, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, min)

	_, err = ParseClock("25:00")
	require.ErrorIs(t, err, ErrInvalidWindow)
	_, err = ParseClock("nine")
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestValidateDailyWindowAtCeiling(t *testing.T) {
	hours, err := testLimits.ValidateDailyWindow("09:00", "15:00")
	require.NoError(t, err)
	assert.Equal(t, 6.0, hours)
}

func TestValidateDailyWindowOverCeiling(t *testing.T) {
	_, err := testLimits.ValidateDailyWindow("09:00", "15:01")
	require.ErrorIs(t, err, ErrWindowTooLong)
}

func TestValidateDailyWindowRejectsInverted(t *testing.T) {
	_, err := testLimits.ValidateDailyWindow("15:00", "09:00")
	require.ErrorIs(t, err, ErrInvalidWindow)

	_, err = testLimits.ValidateDailyWindow("09:00", "09:00")
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestValidateDateRangeAtCeiling(t *testing.T) {
	days, err := testLimits.ValidateDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, 30, days)
}

func TestValidateDateRangeOverCeiling(t *testing.T) {
	_, err := testLimits.ValidateDateRange("2024-01-01", "2024-02-01")
	require.ErrorIs(t, err, ErrRangeTooLong)
}

func TestValidateDateRangeInverted(t *testing.T) {
	_, err := testLimits.ValidateDateRange("2024-01-31", "2024-01-01")
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestValidateDateRangeSameDay(t *testing.T) {
	days, err := testLimits.ValidateDateRange("2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 0, days)
}

func TestWindowHoursRollover(t *testing.T) {
	// 22:00 to 02:00 crosses midnight under the next-day policy.
	hours, err := WindowHours("22:00", "02:00", RolloverNextDay)
	require.NoError(t, err)
	assert.Equal(t, 4.0, hours)

	// The same window is an error under the reject policy.
	_, err = WindowHours("22:00", "02:00", RolloverReject)
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestWindowHoursEqualEndpoints(t *testing.T) {
	// Identical start and end rolls a full day forward.
	hours, err := WindowHours("10:00", "10:00", RolloverNextDay)
	require.NoError(t, err)
	assert.Equal(t, 24.0, hours)
}

func TestWindowHoursPlain(t *testing.T) {
	hours, err := WindowHours("09:15", "11:45", RolloverNextDay)
	require.NoError(t, err)
	assert.Equal(t, 2.5, hours)
}
