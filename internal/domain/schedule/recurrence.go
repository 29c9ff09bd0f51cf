// internal/domain/schedule/recurrence.go
package schedule

import "time"

// IsDue reports whether s matches now to the second.
//
// The anchor is converted into now's location before any wall-clock field is
// compared, so callers choose the evaluation timezone through now. IsDue does
// not look at Remind; that gate belongs to the notifier.
func IsDue(s Schedule, now time.Time) bool {
	anchor := s.Anchor.In(now.Location())

	if !isLive(s.Repeat, anchor, now) {
		return false
	}

	clockMatches := anchor.Hour() == now.Hour() &&
		anchor.Minute() == now.Minute() &&
		anchor.Second() == now.Second()

	switch s.Repeat {
	case RepeatOnce:
		return clockMatches && anchor.Unix() == now.Unix()
	case RepeatDaily:
		return clockMatches
	case RepeatWeekly:
		return clockMatches && anchor.Weekday() == now.Weekday()
	case RepeatMonthly:
		return clockMatches && anchor.Day() == now.Day()
	case RepeatYearly:
		return clockMatches && anchor.Month() == now.Month() && anchor.Day() == now.Day()
	default:
		return false
	}
}

// isLive is the calendar validity gate applied before any time-of-day check.
func isLive(r Repeat, anchor, now time.Time) bool {
	switch r {
	case RepeatOnce:
		// An elapsed one-shot never fires again.
		return anchor.Unix() >= now.Unix()
	case RepeatDaily, RepeatWeekly:
		return true
	case RepeatMonthly:
		return anchor.Day() <= DaysInMonth(now.Year(), now.Month())
	case RepeatYearly:
		return anchor.Day() <= DaysInMonth(now.Year(), anchor.Month())
	default:
		return false
	}
}

// IsLeapYear applies the proleptic Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
