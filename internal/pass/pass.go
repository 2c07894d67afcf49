// Package pass holds the pure duration rules for reservation tiers.
// Nothing here touches spot or reservation state.
package pass

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidWindow = errors.New("end time must be after start time")
	ErrWindowTooLong = errors.New("daily window exceeds the maximum")
	ErrInvalidRange  = errors.New("end date cannot be before start date")
	ErrRangeTooLong  = errors.New("pass duration exceeds the maximum")
)

const (
	clockLayout   = "15:04"
	dateLayout    = "2006-01-02"
	minutesPerDay = 24 * 60
)

// Limits are the tier ceilings. They are policy, not constants in code:
// the config layer owns the values.
type Limits struct {
	MaxDailyWindow time.Duration
	MaxPassDays    int
}

// ParseClock parses an "HH:MM" time of day into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad time %q", ErrInvalidWindow, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidateDailyWindow checks a same-day recurring window. The end must be
// strictly after the start; midnight rollover is never allowed here (the
// single-session tier handles rollover itself, see WindowHours). Returns
// the window length in hours.
func (l Limits) ValidateDailyWindow(start, end string) (float64, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if endMin <= startMin {
		return 0, fmt.Errorf("%w: %s to %s", ErrInvalidWindow, start, end)
	}
	hours := float64(endMin-startMin) / 60
	max := l.MaxDailyWindow.Hours()
	if hours > max {
		return 0, fmt.Errorf("%w of %.0f hours: requested %.1f", ErrWindowTooLong, max, hours)
	}
	return hours, nil
}

// ValidateDateRange checks a multi-day span and returns its length in
// days. The ceiling is inclusive: a range of exactly MaxPassDays passes.
func (l Limits) ValidateDateRange(startDate, endDate string) (int, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return 0, fmt.Errorf("%w: bad date %q", ErrInvalidRange, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return 0, fmt.Errorf("%w: bad date %q", ErrInvalidRange, endDate)
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: %s to %s", ErrInvalidRange, startDate, endDate)
	}
	days := int(end.Sub(start).Hours() / 24)
	if days > l.MaxPassDays {
		return 0, fmt.Errorf("%w of %d days: requested %d", ErrRangeTooLong, l.MaxPassDays, days)
	}
	return days, nil
}

// RolloverPolicy names what a tier does with a window whose end is at or
// before its start.
type RolloverPolicy int

const (
	// RolloverNextDay treats end <= start as crossing midnight and adds a
	// day before computing the duration.
	RolloverNextDay RolloverPolicy = iota
	// RolloverReject treats end <= start as an invalid same-day window.
	RolloverReject
)

// WindowHours computes the duration of a time-of-day window in hours
// under the given rollover policy.
func WindowHours(start, end string, policy RolloverPolicy) (float64, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if endMin <= startMin {
		if policy == RolloverReject {
			return 0, fmt.Errorf("%w: %s to %s", ErrInvalidWindow, start, end)
		}
		endMin += minutesPerDay
	}
	return float64(endMin-startMin) / 60, nil
}
