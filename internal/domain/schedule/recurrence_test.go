package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

func sched(repeat Repeat, anchor time.Time) Schedule {
	return Schedule{ID: 1, Anchor: anchor, Remind: true, Repeat: repeat}
}

func TestIsDue_OnceFiresOnlyAtAnchor(t *testing.T) {
	anchor := at(2025, time.March, 10, 8, 15, 0)
	s := sched(RepeatOnce, anchor)

	assert.True(t, IsDue(s, anchor))
	assert.False(t, IsDue(s, anchor.Add(time.Second)))
	assert.False(t, IsDue(s, anchor.Add(-time.Second)))
	// Same clock time on later days must not fire.
	for days := 1; days <= 400; days += 37 {
		assert.False(t, IsDue(s, anchor.AddDate(0, 0, days)), "days after anchor: %d", days)
	}
	// Same clock time on an earlier day: still live but the date differs.
	assert.False(t, IsDue(s, anchor.AddDate(0, 0, -1)))
}

func TestIsDue_OnceIgnoresSubSecondPart(t *testing.T) {
	anchor := at(2025, time.March, 10, 8, 15, 0)
	s := sched(RepeatOnce, anchor)

	assert.True(t, IsDue(s, anchor.Add(350*time.Millisecond)))
}

func TestIsDue_Daily(t *testing.T) {
	s := sched(RepeatDaily, at(2020, time.June, 1, 14, 30, 0))

	assert.True(t, IsDue(s, at(2026, time.October, 19, 14, 30, 0)))
	assert.True(t, IsDue(s, at(2019, time.January, 1, 14, 30, 0)), "daily schedules do not expire and have no start")
	assert.False(t, IsDue(s, at(2026, time.October, 19, 14, 30, 1)))
	assert.False(t, IsDue(s, at(2026, time.October, 19, 14, 31, 0)))
	assert.False(t, IsDue(s, at(2026, time.October, 19, 15, 30, 0)))
}

func TestIsDue_WeeklyAlignment(t *testing.T) {
	// 2024-01-01 is a Monday.
	s := sched(RepeatWeekly, at(2024, time.January, 1, 9, 0, 0))

	start := at(2026, time.October, 1, 9, 0, 0)
	for i := 0; i < 60; i++ {
		now := start.AddDate(0, 0, i)
		assert.Equal(t, now.Weekday() == time.Monday, IsDue(s, now), "now: %s", now)
	}
	// 2026-10-19 is a Monday.
	assert.False(t, IsDue(s, at(2026, time.October, 19, 9, 0, 1)))
	assert.False(t, IsDue(s, at(2026, time.October, 19, 10, 0, 0)))
}

func TestIsDue_MonthlyMatchesDayOfMonth(t *testing.T) {
	s := sched(RepeatMonthly, at(2025, time.January, 15, 7, 45, 30))

	assert.True(t, IsDue(s, at(2025, time.February, 15, 7, 45, 30)))
	assert.True(t, IsDue(s, at(2026, time.November, 15, 7, 45, 30)))
	assert.False(t, IsDue(s, at(2025, time.February, 16, 7, 45, 30)))
	assert.False(t, IsDue(s, at(2025, time.February, 15, 7, 45, 31)))
}

func TestIsDue_MonthlyShortMonthGuard(t *testing.T) {
	s := sched(RepeatMonthly, at(2025, time.January, 31, 12, 0, 0))

	shortMonths := []struct {
		year  int
		month time.Month
	}{
		{2025, time.February},
		{2024, time.February},
		{2025, time.April},
		{2025, time.June},
		{2025, time.September},
		{2025, time.November},
	}
	for _, m := range shortMonths {
		for day := 1; day <= DaysInMonth(m.year, m.month); day++ {
			for _, clock := range [][3]int{{12, 0, 0}, {0, 0, 0}, {23, 59, 59}} {
				now := at(m.year, m.month, day, clock[0], clock[1], clock[2])
				assert.False(t, IsDue(s, now), "now: %s", now)
			}
		}
	}

	assert.True(t, IsDue(s, at(2025, time.March, 31, 12, 0, 0)))
	assert.True(t, IsDue(s, at(2025, time.December, 31, 12, 0, 0)))
}

func TestIsDue_YearlyLeapGuard(t *testing.T) {
	s := sched(RepeatYearly, at(2024, time.February, 29, 6, 0, 0))

	assert.True(t, IsDue(s, at(2028, time.February, 29, 6, 0, 0)))
	assert.True(t, IsDue(s, at(2000, time.February, 29, 6, 0, 0)))
	assert.False(t, IsDue(s, at(2028, time.February, 29, 6, 0, 1)))

	// No day of a non-leap year fires, including the days Feb 29 would roll into.
	for _, year := range []int{2025, 2026, 2027, 2100} {
		day := at(year, time.January, 1, 6, 0, 0)
		for day.Year() == year {
			assert.False(t, IsDue(s, day), "now: %s", day)
			day = day.AddDate(0, 0, 1)
		}
	}
}

func TestIsDue_YearlyMatchesMonthAndDay(t *testing.T) {
	s := sched(RepeatYearly, at(2020, time.July, 4, 18, 0, 0))

	assert.True(t, IsDue(s, at(2026, time.July, 4, 18, 0, 0)))
	assert.False(t, IsDue(s, at(2026, time.August, 4, 18, 0, 0)))
	assert.False(t, IsDue(s, at(2026, time.July, 5, 18, 0, 0)))
}

func TestIsDue_ConvertsAnchorIntoNowLocation(t *testing.T) {
	plus8 := time.FixedZone("UTC+8", 8*60*60)
	// 01:30 UTC is 09:30 in UTC+8.
	s := sched(RepeatDaily, at(2024, time.January, 1, 1, 30, 0))

	assert.True(t, IsDue(s, time.Date(2026, time.May, 3, 9, 30, 0, 0, plus8)))
	assert.False(t, IsDue(s, time.Date(2026, time.May, 3, 1, 30, 0, 0, plus8)))
}

func TestIsDue_MonthlyDayComesFromLocalCalendar(t *testing.T) {
	plus8 := time.FixedZone("UTC+8", 8*60*60)
	// 2024-01-30 20:00 UTC is Jan 31 04:00 in UTC+8, so the local day is 31.
	s := sched(RepeatMonthly, at(2024, time.January, 30, 20, 0, 0))

	assert.True(t, IsDue(s, time.Date(2026, time.March, 31, 4, 0, 0, 0, plus8)))
	assert.False(t, IsDue(s, time.Date(2026, time.April, 30, 4, 0, 0, 0, plus8)))
}

func TestIsDue_UnknownRepeatIsNeverDue(t *testing.T) {
	anchor := at(2025, time.March, 10, 8, 15, 0)
	s := sched(Repeat("HOURLY"), anchor)

	assert.False(t, IsDue(s, anchor))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 28, DaysInMonth(1900, time.February))
	assert.Equal(t, 29, DaysInMonth(2000, time.February))
	assert.Equal(t, 30, DaysInMonth(2025, time.April))
	assert.Equal(t, 31, DaysInMonth(2025, time.December))

	for year := 1896; year <= 2404; year++ {
		for month := time.January; month <= time.December; month++ {
			want := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
			assert.Equal(t, want, DaysInMonth(year, month), "%d-%02d", year, month)
		}
	}
}

func TestParseRepeat(t *testing.T) {
	r, err := ParseRepeat("weekly")
	assert.NoError(t, err)
	assert.Equal(t, RepeatWeekly, r)

	r, err = ParseRepeat(" Yearly ")
	assert.NoError(t, err)
	assert.Equal(t, RepeatYearly, r)

	_, err = ParseRepeat("fortnightly")
	assert.ErrorIs(t, err, ErrInvalidRepeat)
}

func TestInputValidate(t *testing.T) {
	assert.ErrorIs(t, Input{Repeat: RepeatDaily}.Validate(), ErrMissingAnchor)
	assert.ErrorIs(t, Input{Anchor: at(2025, time.May, 1, 0, 0, 0), Repeat: "NEVER"}.Validate(), ErrInvalidRepeat)
	assert.NoError(t, Input{Anchor: at(2025, time.May, 1, 0, 0, 0), Repeat: RepeatOnce}.Validate())
}

func TestPayload(t *testing.T) {
	s := Schedule{ID: 7, Anchor: at(2025, time.May, 1, 10, 0, 0), Remind: true, Repeat: RepeatDaily}
	p := s.Payload()
	assert.Equal(t, int64(7), p.ID)
	assert.Nil(t, p.Content)
	assert.Equal(t, s.Anchor.Unix(), p.Date)
	assert.Equal(t, RepeatDaily, p.Repeat)

	s.Content.String, s.Content.Valid = "stand-up", true
	p = s.Payload()
	if assert.NotNil(t, p.Content) {
		assert.Equal(t, "stand-up", *p.Content)
	}
}
